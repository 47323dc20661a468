package content

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Common errors for content operations.
var (
	ErrItemNotFound = errors.New("item not found")
	ErrItemDeleted  = errors.New("item has been deleted")
)

// Filter restricts a listing to one content kind and an optional parent
// scope. Query, when set, additionally matches name/description substrings.
type Filter struct {
	Kind    Kind
	PlaceID *string
	ShopID  *string
	Query   string
}

// ContentRepository defines the interface for content item data operations.
type ContentRepository interface {
	// Create inserts a new item with a generated UUID.
	Create(item *Item) error

	// Update updates the mutable fields of an existing item.
	Update(item *Item) error

	// SoftDelete marks an item deleted by setting its deleted_at timestamp.
	SoftDelete(id string) error

	// GetByID retrieves an item by UUID, excluding soft-deleted items.
	GetByID(id string) (*Item, error)

	// List retrieves all non-deleted items matching the filter, ordered by
	// rank date DESC, id ASC. The full collection is returned; pagination
	// happens after viewer-relative scoring.
	List(filter Filter) ([]*Item, error)

	// RecordView increments the view counter of userID for the item.
	RecordView(itemID, userID string) error
}

// InMemoryContentRepository is an in-memory implementation of
// ContentRepository. Thread-safe via RWMutex.
type InMemoryContentRepository struct {
	mu    sync.RWMutex
	items map[string]*Item // UUID -> Item
}

// NewInMemoryContentRepository creates a new in-memory content repository.
func NewInMemoryContentRepository() *InMemoryContentRepository {
	return &InMemoryContentRepository{
		items: make(map[string]*Item),
	}
}

// Create inserts a new item with a generated UUID.
func (r *InMemoryContentRepository) Create(item *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	itemCopy := copyItem(item)
	r.items[item.ID] = itemCopy

	return nil
}

// Update updates the mutable fields of an existing item.
func (r *InMemoryContentRepository) Update(item *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[item.ID]
	if !ok {
		return ErrItemNotFound
	}
	if existing.DeletedAt != nil {
		return ErrItemDeleted
	}

	existing.Name = item.Name
	existing.Description = item.Description
	existing.PriceCents = item.PriceCents
	existing.StartDate = item.StartDate
	existing.UpdatedAt = time.Now()

	return nil
}

// SoftDelete marks an item deleted by setting its deleted_at timestamp.
func (r *InMemoryContentRepository) SoftDelete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return ErrItemNotFound
	}

	// Already deleted - treat as not found for idempotency
	if item.DeletedAt != nil {
		return ErrItemNotFound
	}

	now := time.Now()
	item.DeletedAt = &now

	return nil
}

// GetByID retrieves an item by UUID, excluding soft-deleted items.
func (r *InMemoryContentRepository) GetByID(id string) (*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	if item.DeletedAt != nil {
		return nil, ErrItemNotFound
	}

	return copyItem(item), nil
}

// List retrieves all non-deleted items matching the filter.
func (r *InMemoryContentRepository) List(filter Filter) ([]*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var candidates []*Item
	for _, item := range r.items {
		if item.DeletedAt != nil {
			continue
		}
		if filter.Kind != "" && item.Kind != filter.Kind {
			continue
		}
		if filter.PlaceID != nil {
			if item.PlaceID == nil || *item.PlaceID != *filter.PlaceID {
				continue
			}
		}
		if filter.ShopID != nil {
			if item.ShopID == nil || *item.ShopID != *filter.ShopID {
				continue
			}
		}
		if filter.Query != "" && !matchesQuery(item, filter.Query) {
			continue
		}
		candidates = append(candidates, item)
	}

	// Sort by rank date DESC, then by ID ASC for a deterministic fetch order
	sortItemsByRankDateDesc(candidates)

	// Return deep copies to prevent external mutation
	copies := make([]*Item, len(candidates))
	for i, item := range candidates {
		copies[i] = copyItem(item)
	}

	return copies, nil
}

// RecordView increments the view counter of userID for the item.
func (r *InMemoryContentRepository) RecordView(itemID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[itemID]
	if !ok || item.DeletedAt != nil {
		return ErrItemNotFound
	}

	for i := range item.Views {
		if item.Views[i].UserID == userID {
			item.Views[i].Count++
			return nil
		}
	}
	item.Views = append(item.Views, View{UserID: userID, Count: 1})

	return nil
}

// matchesQuery reports whether the item's name or description contains the
// query, case-insensitively.
func matchesQuery(item *Item, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(item.Name), q) {
		return true
	}
	return strings.Contains(strings.ToLower(item.Description), q)
}

// sortItemsByRankDateDesc sorts items by rank date DESC, then by ID ASC.
// This gives the scorer a deterministic input order regardless of map
// iteration, mirroring the stable-pagination tie-break convention.
func sortItemsByRankDateDesc(items []*Item) {
	sort.Slice(items, func(i, j int) bool {
		di, dj := items[i].RankDate(), items[j].RankDate()
		if di.After(dj) {
			return true
		}
		if di.Before(dj) {
			return false
		}
		return items[i].ID < items[j].ID
	})
}

// copyItem returns a deep copy of an item, including its views slice.
func copyItem(item *Item) *Item {
	itemCopy := *item
	if item.Views != nil {
		itemCopy.Views = make([]View, len(item.Views))
		copy(itemCopy.Views, item.Views)
	}
	return &itemCopy
}
