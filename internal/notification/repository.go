// Package notification provides models and repositories for user notifications.
package notification

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotificationNotFound is returned when a notification does not exist.
var ErrNotificationNotFound = errors.New("notification not found")

// Type categorizes a notification.
type Type string

// Supported notification types.
const (
	TypeFollow  Type = "follow"
	TypeMessage Type = "message"
	TypeContent Type = "content"
)

// Notification represents a single notification delivered to one user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      Type      `json:"type"`
	ActorID   string    `json:"actor_id,omitempty"`
	SubjectID string    `json:"subject_id,omitempty"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationRepository defines the interface for notification data operations.
type NotificationRepository interface {
	// Create inserts a new notification with a generated UUID.
	Create(n *Notification) error

	// ListForUser returns the user's notifications, unread first, newest
	// first within each group.
	ListForUser(userID string) ([]*Notification, error)

	// MarkRead marks a notification read. Idempotent.
	MarkRead(id string) error
}

// InMemoryNotificationRepository is an in-memory implementation of
// NotificationRepository. Thread-safe via RWMutex.
type InMemoryNotificationRepository struct {
	mu            sync.RWMutex
	notifications map[string]*Notification // UUID -> Notification
}

// NewInMemoryNotificationRepository creates a new in-memory notification repository.
func NewInMemoryNotificationRepository() *InMemoryNotificationRepository {
	return &InMemoryNotificationRepository{
		notifications: make(map[string]*Notification),
	}
}

// Create inserts a new notification with a generated UUID.
func (r *InMemoryNotificationRepository) Create(n *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	nCopy := *n
	r.notifications[n.ID] = &nCopy

	return nil
}

// ListForUser returns the user's notifications, unread first, newest first
// within each group, ties broken by ID for determinism.
func (r *InMemoryNotificationRepository) ListForUser(userID string) ([]*Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Notification
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		nCopy := *n
		result = append(result, &nCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Read != result[j].Read {
			return !result[i].Read
		}
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// MarkRead marks a notification read. Idempotent.
func (r *InMemoryNotificationRepository) MarkRead(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok {
		return ErrNotificationNotFound
	}
	n.Read = true

	return nil
}
