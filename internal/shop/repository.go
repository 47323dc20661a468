// Package shop provides models and repository for shops: storefronts owned
// by a user, optionally attached to a place, followable in their own right.
package shop

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Common errors for shop operations.
var (
	ErrShopNotFound = errors.New("shop not found")
)

// Shop represents a storefront. OwnerID is the user who manages the shop;
// Followers holds the ids of users following the shop itself.
type Shop struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	OwnerID string  `json:"owner_id"`
	PlaceID *string `json:"place_id,omitempty"`

	Followers []string `json:"followers,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// HasFollower reports whether id appears in the shop's follower list.
func (s *Shop) HasFollower(id string) bool {
	if id == "" {
		return false
	}
	for _, v := range s.Followers {
		if v == id {
			return true
		}
	}
	return false
}

// ShopRepository defines the interface for shop data operations.
type ShopRepository interface {
	// Create inserts a new shop with a generated UUID.
	Create(s *Shop) error

	// GetByID retrieves a shop by UUID, excluding soft-deleted shops.
	GetByID(id string) (*Shop, error)

	// Follow adds userID to the shop's follower list. Idempotent.
	Follow(shopID, userID string) error

	// Unfollow removes userID from the shop's follower list. Idempotent.
	Unfollow(shopID, userID string) error
}

// InMemoryShopRepository is an in-memory implementation of ShopRepository.
// Thread-safe via RWMutex.
type InMemoryShopRepository struct {
	mu    sync.RWMutex
	shops map[string]*Shop // UUID -> Shop
}

// NewInMemoryShopRepository creates a new in-memory shop repository.
func NewInMemoryShopRepository() *InMemoryShopRepository {
	return &InMemoryShopRepository{
		shops: make(map[string]*Shop),
	}
}

// Create inserts a new shop with a generated UUID.
func (r *InMemoryShopRepository) Create(s *Shop) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.CreatedAt = now
	s.UpdatedAt = now

	shopCopy := copyShop(s)
	r.shops[s.ID] = shopCopy

	return nil
}

// GetByID retrieves a shop by UUID, excluding soft-deleted shops.
func (r *InMemoryShopRepository) GetByID(id string) (*Shop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.shops[id]
	if !ok || s.DeletedAt != nil {
		return nil, ErrShopNotFound
	}

	return copyShop(s), nil
}

// Follow adds userID to the shop's follower list.
func (r *InMemoryShopRepository) Follow(shopID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.shops[shopID]
	if !ok || s.DeletedAt != nil {
		return ErrShopNotFound
	}

	if !s.HasFollower(userID) {
		s.Followers = append(s.Followers, userID)
		s.UpdatedAt = time.Now()
	}

	return nil
}

// Unfollow removes userID from the shop's follower list.
func (r *InMemoryShopRepository) Unfollow(shopID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.shops[shopID]
	if !ok || s.DeletedAt != nil {
		return ErrShopNotFound
	}

	out := s.Followers[:0]
	for _, v := range s.Followers {
		if v != userID {
			out = append(out, v)
		}
	}
	s.Followers = out

	return nil
}

// copyShop returns a deep copy of a shop.
func copyShop(s *Shop) *Shop {
	shopCopy := *s
	if s.Followers != nil {
		shopCopy.Followers = append([]string(nil), s.Followers...)
	}
	return &shopCopy
}
