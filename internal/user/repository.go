// Package user provides models and repository for user profiles and the
// directional follow graph between users.
package user

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Common errors for user operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrSelfFollow   = errors.New("cannot follow yourself")
)

// User represents a registered account. Followers holds the ids of users
// who follow this user; Following holds the ids this user follows.
type User struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Name   string `json:"name"`
	Bio    string `json:"bio,omitempty"`

	Followers []string `json:"followers,omitempty"`
	Following []string `json:"following,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// HasFollower reports whether id appears in the user's follower list.
func (u *User) HasFollower(id string) bool {
	return containsID(u.Followers, id)
}

// IsFollowing reports whether the user follows id.
func (u *User) IsFollowing(id string) bool {
	return containsID(u.Following, id)
}

func containsID(ids []string, id string) bool {
	if id == "" {
		return false
	}
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// Create inserts a new user with a generated UUID.
	Create(u *User) error

	// GetByID retrieves a user by UUID, excluding soft-deleted users.
	GetByID(id string) (*User, error)

	// Follow makes followerID follow targetID, updating both sides of the
	// graph. Idempotent: following twice is a no-op.
	Follow(followerID, targetID string) error

	// Unfollow removes the follow edge from followerID to targetID.
	// Idempotent: unfollowing a non-followed user is a no-op.
	Unfollow(followerID, targetID string) error
}

// InMemoryUserRepository is an in-memory implementation of UserRepository.
// Thread-safe via RWMutex.
type InMemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*User // UUID -> User
}

// NewInMemoryUserRepository creates a new in-memory user repository.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users: make(map[string]*User),
	}
}

// Create inserts a new user with a generated UUID.
func (r *InMemoryUserRepository) Create(u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	userCopy := copyUser(u)
	r.users[u.ID] = userCopy

	return nil
}

// GetByID retrieves a user by UUID, excluding soft-deleted users.
func (r *InMemoryUserRepository) GetByID(id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, ErrUserNotFound
	}

	return copyUser(u), nil
}

// Follow makes followerID follow targetID.
func (r *InMemoryUserRepository) Follow(followerID, targetID string) error {
	if followerID == targetID {
		return ErrSelfFollow
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	follower, ok := r.users[followerID]
	if !ok || follower.DeletedAt != nil {
		return ErrUserNotFound
	}
	target, ok := r.users[targetID]
	if !ok || target.DeletedAt != nil {
		return ErrUserNotFound
	}

	if !containsID(follower.Following, targetID) {
		follower.Following = append(follower.Following, targetID)
		follower.UpdatedAt = time.Now()
	}
	if !containsID(target.Followers, followerID) {
		target.Followers = append(target.Followers, followerID)
		target.UpdatedAt = time.Now()
	}

	return nil
}

// Unfollow removes the follow edge from followerID to targetID.
func (r *InMemoryUserRepository) Unfollow(followerID, targetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	follower, ok := r.users[followerID]
	if !ok || follower.DeletedAt != nil {
		return ErrUserNotFound
	}
	target, ok := r.users[targetID]
	if !ok || target.DeletedAt != nil {
		return ErrUserNotFound
	}

	follower.Following = removeID(follower.Following, targetID)
	target.Followers = removeID(target.Followers, followerID)

	return nil
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// copyUser returns a deep copy of a user, including relationship slices.
func copyUser(u *User) *User {
	userCopy := *u
	if u.Followers != nil {
		userCopy.Followers = append([]string(nil), u.Followers...)
	}
	if u.Following != nil {
		userCopy.Following = append([]string(nil), u.Following...)
	}
	return &userCopy
}
