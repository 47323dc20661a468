// Package place provides models and repository for places: physical venues
// owned by a user, followable in their own right.
package place

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Common errors for place operations.
var (
	ErrPlaceNotFound = errors.New("place not found")
)

// Place represents a venue. OwnerID is the user who manages the place;
// Followers holds the ids of users following the place itself.
type Place struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`

	Followers []string `json:"followers,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// HasFollower reports whether id appears in the place's follower list.
func (p *Place) HasFollower(id string) bool {
	if id == "" {
		return false
	}
	for _, v := range p.Followers {
		if v == id {
			return true
		}
	}
	return false
}

// PlaceRepository defines the interface for place data operations.
type PlaceRepository interface {
	// Create inserts a new place with a generated UUID.
	Create(p *Place) error

	// GetByID retrieves a place by UUID, excluding soft-deleted places.
	GetByID(id string) (*Place, error)

	// Follow adds userID to the place's follower list. Idempotent.
	Follow(placeID, userID string) error

	// Unfollow removes userID from the place's follower list. Idempotent.
	Unfollow(placeID, userID string) error
}

// InMemoryPlaceRepository is an in-memory implementation of PlaceRepository.
// Thread-safe via RWMutex.
type InMemoryPlaceRepository struct {
	mu     sync.RWMutex
	places map[string]*Place // UUID -> Place
}

// NewInMemoryPlaceRepository creates a new in-memory place repository.
func NewInMemoryPlaceRepository() *InMemoryPlaceRepository {
	return &InMemoryPlaceRepository{
		places: make(map[string]*Place),
	}
}

// Create inserts a new place with a generated UUID.
func (r *InMemoryPlaceRepository) Create(p *Place) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	placeCopy := copyPlace(p)
	r.places[p.ID] = placeCopy

	return nil
}

// GetByID retrieves a place by UUID, excluding soft-deleted places.
func (r *InMemoryPlaceRepository) GetByID(id string) (*Place, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.places[id]
	if !ok || p.DeletedAt != nil {
		return nil, ErrPlaceNotFound
	}

	return copyPlace(p), nil
}

// Follow adds userID to the place's follower list.
func (r *InMemoryPlaceRepository) Follow(placeID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.places[placeID]
	if !ok || p.DeletedAt != nil {
		return ErrPlaceNotFound
	}

	if !p.HasFollower(userID) {
		p.Followers = append(p.Followers, userID)
		p.UpdatedAt = time.Now()
	}

	return nil
}

// Unfollow removes userID from the place's follower list.
func (r *InMemoryPlaceRepository) Unfollow(placeID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.places[placeID]
	if !ok || p.DeletedAt != nil {
		return ErrPlaceNotFound
	}

	out := p.Followers[:0]
	for _, v := range p.Followers {
		if v != userID {
			out = append(out, v)
		}
	}
	p.Followers = out

	return nil
}

// copyPlace returns a deep copy of a place.
func copyPlace(p *Place) *Place {
	placeCopy := *p
	if p.Followers != nil {
		placeCopy.Followers = append([]string(nil), p.Followers...)
	}
	return &placeCopy
}
