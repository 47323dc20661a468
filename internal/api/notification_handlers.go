package api

import (
	"errors"
	"net/http"

	"github.com/openagora/agora/internal/notification"
)

// NotificationHandlers holds dependencies for notification HTTP handlers.
type NotificationHandlers struct {
	repo notification.NotificationRepository
}

// NewNotificationHandlers creates a new NotificationHandlers instance.
func NewNotificationHandlers(repo notification.NotificationRepository) *NotificationHandlers {
	return &NotificationHandlers{
		repo: repo,
	}
}

// ListNotifications handles GET /notifications - lists the viewer's
// notifications, unread first, newest first within each group.
func (h *NotificationHandlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.URL.Query().Get("currentUserId")
	if userID == "" {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "currentUserId is required")
		return
	}

	notifications, err := h.repo.ListForUser(userID)
	if err != nil {
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []*notification.Notification{}
	}

	WriteJSON(w, ctx, http.StatusOK, map[string]any{
		"notifications": notifications,
	})
}

// MarkNotificationRead handles POST /notifications/{id}/read.
func (h *NotificationHandlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.PathValue("id")
	if err := h.repo.MarkRead(id); err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Notification not found")
			return
		}
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to mark notification read")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
