package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/openagora/agora/internal/notification"
	"github.com/openagora/agora/internal/place"
	"github.com/openagora/agora/internal/shop"
	"github.com/openagora/agora/internal/user"
	"github.com/openagora/agora/internal/validate"
)

// MaxHandleLength bounds user handles.
const MaxHandleLength = 64

// handleConstraints validates user handles: short, URL-safe identifiers.
var handleConstraints = validate.StringConstraints{
	MinLength:      2,
	MaxLength:      MaxHandleLength,
	AllowedPattern: validate.HandlePattern,
	TrimSpace:      true,
}

// CreateUserRequest represents the request body for creating a user.
type CreateUserRequest struct {
	Handle string `json:"handle"`
	Name   string `json:"name"`
	Bio    string `json:"bio,omitempty"`
}

// FollowRequest identifies the user performing a follow or unfollow.
type FollowRequest struct {
	UserID string `json:"user_id"`
}

// UserProfileResponse is the public projection of a user.
type UserProfileResponse struct {
	ID             string `json:"id"`
	Handle         string `json:"handle"`
	Name           string `json:"name"`
	Bio            string `json:"bio,omitempty"`
	FollowerCount  int    `json:"follower_count"`
	FollowingCount int    `json:"following_count"`
	IsFollowed     bool   `json:"is_followed"`
}

// UserHandlers holds dependencies for user and follow-graph HTTP handlers.
type UserHandlers struct {
	users         user.UserRepository
	places        place.PlaceRepository
	shops         shop.ShopRepository
	notifications notification.NotificationRepository
}

// NewUserHandlers creates a new UserHandlers instance.
// The notification repository may be nil to disable follow notifications.
func NewUserHandlers(users user.UserRepository, places place.PlaceRepository, shops shop.ShopRepository, notifications notification.NotificationRepository) *UserHandlers {
	return &UserHandlers{
		users:         users,
		places:        places,
		shops:         shops,
		notifications: notifications,
	}
}

// CreateUser handles POST /users - creates a new user.
func (h *UserHandlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	handle, err := validate.String(req.Handle, handleConstraints)
	if err != nil {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "invalid handle: "+err.Error())
		return
	}

	u := &user.User{
		Handle: handle,
		Name:   validate.SanitizeHTML(strings.TrimSpace(req.Name)),
		Bio:    validate.SanitizeHTML(strings.TrimSpace(req.Bio)),
	}
	if err := h.users.Create(u); err != nil {
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to create user")
		return
	}

	WriteJSON(w, ctx, http.StatusCreated, u)
}

// GetUser handles GET /users/{id} - returns the public profile projection.
// When currentUserId is set, is_followed reflects whether the viewer follows
// this user.
func (h *UserHandlers) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.PathValue("id")
	u, err := h.users.GetByID(id)
	if err != nil {
		writeUserRepoError(w, r, err)
		return
	}

	resp := UserProfileResponse{
		ID:             u.ID,
		Handle:         u.Handle,
		Name:           u.Name,
		Bio:            u.Bio,
		FollowerCount:  len(u.Followers),
		FollowingCount: len(u.Following),
	}
	if viewerID := r.URL.Query().Get("currentUserId"); viewerID != "" {
		resp.IsFollowed = u.HasFollower(viewerID)
	}

	WriteJSON(w, ctx, http.StatusOK, resp)
}

// followerFromRequest reads the acting user from the body, falling back to
// the currentUserId query parameter.
func followerFromRequest(r *http.Request) string {
	var req FollowRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if id := strings.TrimSpace(req.UserID); id != "" {
		return id
	}
	return r.URL.Query().Get("currentUserId")
}

// FollowUser handles POST /users/{id}/follow.
func (h *UserHandlers) FollowUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	targetID := r.PathValue("id")
	followerID := followerFromRequest(r)
	if followerID == "" {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "user_id is required")
		return
	}

	if err := h.users.Follow(followerID, targetID); err != nil {
		writeUserRepoError(w, r, err)
		return
	}

	h.notifyFollow(targetID, followerID, "started following you")

	w.WriteHeader(http.StatusNoContent)
}

// UnfollowUser handles DELETE /users/{id}/follow.
func (h *UserHandlers) UnfollowUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	targetID := r.PathValue("id")
	followerID := followerFromRequest(r)
	if followerID == "" {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "user_id is required")
		return
	}

	if err := h.users.Unfollow(followerID, targetID); err != nil {
		writeUserRepoError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// FollowPlace handles POST /places/{id}/follow.
func (h *UserHandlers) FollowPlace(w http.ResponseWriter, r *http.Request) {
	h.followEntity(w, r, func(entityID, userID string) error {
		return h.places.Follow(entityID, userID)
	})
}

// UnfollowPlace handles DELETE /places/{id}/follow.
func (h *UserHandlers) UnfollowPlace(w http.ResponseWriter, r *http.Request) {
	h.followEntity(w, r, func(entityID, userID string) error {
		return h.places.Unfollow(entityID, userID)
	})
}

// FollowShop handles POST /shops/{id}/follow.
func (h *UserHandlers) FollowShop(w http.ResponseWriter, r *http.Request) {
	h.followEntity(w, r, func(entityID, userID string) error {
		return h.shops.Follow(entityID, userID)
	})
}

// UnfollowShop handles DELETE /shops/{id}/follow.
func (h *UserHandlers) UnfollowShop(w http.ResponseWriter, r *http.Request) {
	h.followEntity(w, r, func(entityID, userID string) error {
		return h.shops.Unfollow(entityID, userID)
	})
}

// followEntity runs one place/shop follow mutation with shared parsing and
// error mapping.
func (h *UserHandlers) followEntity(w http.ResponseWriter, r *http.Request, op func(entityID, userID string) error) {
	ctx := r.Context()

	entityID := r.PathValue("id")
	userID := followerFromRequest(r)
	if userID == "" {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "user_id is required")
		return
	}

	if err := op(entityID, userID); err != nil {
		writeUserRepoError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// notifyFollow records a follow notification for the target user.
// Notification failures are silent; the follow itself already succeeded.
func (h *UserHandlers) notifyFollow(targetID, actorID, body string) {
	if h.notifications == nil {
		return
	}
	_ = h.notifications.Create(&notification.Notification{
		UserID:  targetID,
		Type:    notification.TypeFollow,
		ActorID: actorID,
		Body:    body,
	})
}

// writeUserRepoError maps follow-graph repository errors onto API error responses.
func writeUserRepoError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, user.ErrSelfFollow):
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeSelfFollow, "Cannot follow yourself")
	case errors.Is(err, user.ErrUserNotFound):
		WriteError(w, ctx, http.StatusNotFound, ErrCodeUserNotFound, "User not found")
	case errors.Is(err, place.ErrPlaceNotFound):
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Place not found")
	case errors.Is(err, shop.ErrShopNotFound):
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Shop not found")
	default:
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Follow operation failed")
	}
}
