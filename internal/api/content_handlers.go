package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openagora/agora/internal/content"
	"github.com/openagora/agora/internal/validate"
)

// CreateItemRequest represents the request body for creating a content item.
type CreateItemRequest struct {
	Kind          string     `json:"kind"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	OrganizerType string     `json:"organizer_type"`
	OrganizerID   string     `json:"organizer_id"`
	PlaceID       *string    `json:"place_id,omitempty"`
	ShopID        *string    `json:"shop_id,omitempty"`
	PriceCents    *int64     `json:"price_cents,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
}

// UpdateItemRequest represents the request body for updating a content item.
// Only the provided fields are changed.
type UpdateItemRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	PriceCents  *int64     `json:"price_cents,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
}

// RecordViewRequest represents the request body for recording an item view.
type RecordViewRequest struct {
	UserID string `json:"user_id"`
}

// ContentHandlers holds dependencies for content item HTTP handlers.
type ContentHandlers struct {
	repo content.ContentRepository
}

// NewContentHandlers creates a new ContentHandlers instance.
func NewContentHandlers(repo content.ContentRepository) *ContentHandlers {
	return &ContentHandlers{
		repo: repo,
	}
}

// CreateItem handles POST /items - creates a new content item.
func (h *ContentHandlers) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	kind := content.Kind(req.Kind)
	if !content.ValidKind(kind) {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidKind, "Unknown content kind: "+req.Kind)
		return
	}

	name, err := validate.ItemName(req.Name)
	if err != nil {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "name: "+err.Error())
		return
	}
	description, err := validate.Description(req.Description)
	if err != nil {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "description: "+err.Error())
		return
	}

	orgType := content.OrganizerType(req.OrganizerType)
	if orgType != content.OrganizerUser && orgType != content.OrganizerPlace && orgType != content.OrganizerShop {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "organizer_type must be one of user, place, shop")
		return
	}
	if strings.TrimSpace(req.OrganizerID) == "" {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "organizer_id is required")
		return
	}

	item := &content.Item{
		Kind:        kind,
		Name:        name,
		Description: description,
		Organizer: content.OrganizerRef{
			Type: orgType,
			ID:   req.OrganizerID,
		},
		PlaceID:    req.PlaceID,
		ShopID:     req.ShopID,
		PriceCents: req.PriceCents,
		StartDate:  req.StartDate,
	}

	if err := h.repo.Create(item); err != nil {
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to create item")
		return
	}

	WriteJSON(w, ctx, http.StatusCreated, item)
}

// UpdateItem handles PATCH /items/{id} - updates mutable fields of an item.
func (h *ContentHandlers) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Item ID is required")
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	item, err := h.repo.GetByID(id)
	if err != nil {
		writeItemRepoError(w, r, err)
		return
	}

	if req.Name != nil {
		name, err := validate.ItemName(*req.Name)
		if err != nil {
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "name: "+err.Error())
			return
		}
		item.Name = name
	}
	if req.Description != nil {
		description, err := validate.Description(*req.Description)
		if err != nil {
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "description: "+err.Error())
			return
		}
		item.Description = description
	}
	if req.PriceCents != nil {
		item.PriceCents = req.PriceCents
	}
	if req.StartDate != nil {
		item.StartDate = req.StartDate
	}

	if err := h.repo.Update(item); err != nil {
		writeItemRepoError(w, r, err)
		return
	}

	WriteJSON(w, ctx, http.StatusOK, item)
}

// DeleteItem handles DELETE /items/{id} - soft-deletes an item.
func (h *ContentHandlers) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Item ID is required")
		return
	}

	if err := h.repo.SoftDelete(id); err != nil {
		writeItemRepoError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RecordView handles POST /items/{id}/view - increments the viewer's view
// counter for the item. The user is taken from the body, falling back to
// the currentUserId query parameter.
func (h *ContentHandlers) RecordView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Item ID is required")
		return
	}

	var req RecordViewRequest
	// Body is optional; ignore decode errors from an empty body.
	_ = json.NewDecoder(r.Body).Decode(&req)

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = r.URL.Query().Get("currentUserId")
	}
	if userID == "" {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "user_id is required")
		return
	}

	if err := h.repo.RecordView(id, userID); err != nil {
		writeItemRepoError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeItemRepoError maps content repository errors onto API error responses.
func writeItemRepoError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, content.ErrItemNotFound):
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Item not found")
	case errors.Is(err, content.ErrItemDeleted):
		WriteError(w, ctx, http.StatusGone, ErrCodeItemDeleted, "Item has been deleted")
	default:
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Content operation failed")
	}
}
