// Package message provides models and repositories for direct messages
// between users. Only persistence and retrieval live here; real-time
// delivery is out of scope.
package message

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Common errors for message operations.
var (
	ErrEmptyBody    = errors.New("message body must not be empty")
	ErrSelfMessage  = errors.New("cannot message yourself")
	ErrMissingParty = errors.New("sender and recipient are required")
)

// Message represents one direct message between two users.
type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

// MessageRepository defines the interface for message data operations.
type MessageRepository interface {
	// Create inserts a new message with a generated UUID.
	Create(m *Message) error

	// Conversation returns all messages between two users in both
	// directions, oldest first.
	Conversation(userA, userB string) ([]*Message, error)
}

// InMemoryMessageRepository is an in-memory implementation of
// MessageRepository. Thread-safe via RWMutex.
type InMemoryMessageRepository struct {
	mu       sync.RWMutex
	messages map[string]*Message // UUID -> Message
}

// NewInMemoryMessageRepository creates a new in-memory message repository.
func NewInMemoryMessageRepository() *InMemoryMessageRepository {
	return &InMemoryMessageRepository{
		messages: make(map[string]*Message),
	}
}

// Create inserts a new message with a generated UUID.
func (r *InMemoryMessageRepository) Create(m *Message) error {
	if m.SenderID == "" || m.RecipientID == "" {
		return ErrMissingParty
	}
	if m.SenderID == m.RecipientID {
		return ErrSelfMessage
	}
	if strings.TrimSpace(m.Body) == "" {
		return ErrEmptyBody
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	mCopy := *m
	r.messages[m.ID] = &mCopy

	return nil
}

// Conversation returns all messages between two users in both directions,
// oldest first, ties broken by ID for determinism.
func (r *InMemoryMessageRepository) Conversation(userA, userB string) ([]*Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Message
	for _, m := range r.messages {
		if (m.SenderID == userA && m.RecipientID == userB) ||
			(m.SenderID == userB && m.RecipientID == userA) {
			mCopy := *m
			result = append(result, &mCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}
