package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/openagora/agora/internal/message"
	"github.com/openagora/agora/internal/notification"
	"github.com/openagora/agora/internal/validate"
)

// MaxMessageLength bounds direct message bodies.
const MaxMessageLength = 2000

// SendMessageRequest represents the request body for sending a message.
type SendMessageRequest struct {
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	Body        string `json:"body"`
}

// MessageHandlers holds dependencies for direct message HTTP handlers.
type MessageHandlers struct {
	repo          message.MessageRepository
	notifications notification.NotificationRepository
}

// NewMessageHandlers creates a new MessageHandlers instance.
// The notification repository may be nil to disable message notifications.
func NewMessageHandlers(repo message.MessageRepository, notifications notification.NotificationRepository) *MessageHandlers {
	return &MessageHandlers{
		repo:          repo,
		notifications: notifications,
	}
}

// SendMessage handles POST /messages - persists a direct message.
func (h *MessageHandlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	if len(req.Body) > MaxMessageLength {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "message body must not exceed 2000 characters")
		return
	}

	m := &message.Message{
		SenderID:    req.SenderID,
		RecipientID: req.RecipientID,
		Body:        validate.SanitizeHTML(strings.TrimSpace(req.Body)),
	}
	if err := h.repo.Create(m); err != nil {
		switch {
		case errors.Is(err, message.ErrEmptyBody),
			errors.Is(err, message.ErrSelfMessage),
			errors.Is(err, message.ErrMissingParty):
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, err.Error())
		default:
			WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to send message")
		}
		return
	}

	if h.notifications != nil {
		_ = h.notifications.Create(&notification.Notification{
			UserID:    m.RecipientID,
			Type:      notification.TypeMessage,
			ActorID:   m.SenderID,
			SubjectID: m.ID,
			Body:      "sent you a message",
		})
	}

	WriteJSON(w, ctx, http.StatusCreated, m)
}

// GetConversation handles GET /messages/{userId} - lists the conversation
// between the viewer (currentUserId) and the other user, oldest first.
func (h *MessageHandlers) GetConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	otherID := r.PathValue("id")
	viewerID := r.URL.Query().Get("currentUserId")
	if viewerID == "" {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "currentUserId is required")
		return
	}

	messages, err := h.repo.Conversation(viewerID, otherID)
	if err != nil {
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load conversation")
		return
	}
	if messages == nil {
		messages = []*message.Message{}
	}

	WriteJSON(w, ctx, http.StatusOK, map[string]any{
		"messages": messages,
	})
}
