// Package content provides models and repositories for rankable content
// items: ads, events, opportunities, places, shops, and products.
package content

import (
	"time"
)

// Kind identifies the content type of an item.
type Kind string

// Supported content kinds.
const (
	KindAd          Kind = "ad"
	KindEvent       Kind = "event"
	KindOpportunity Kind = "opportunity"
	KindPlace       Kind = "place"
	KindShop        Kind = "shop"
	KindProduct     Kind = "product"
)

// ValidKind reports whether k is a supported content kind.
func ValidKind(k Kind) bool {
	switch k {
	case KindAd, KindEvent, KindOpportunity, KindPlace, KindShop, KindProduct:
		return true
	}
	return false
}

// OrganizerType identifies the entity type that owns a content item.
type OrganizerType string

// Supported organizer types.
const (
	OrganizerUser  OrganizerType = "user"
	OrganizerPlace OrganizerType = "place"
	OrganizerShop  OrganizerType = "shop"
)

// OrganizerRef points at the entity that owns an item. The owner chain is
// at most two hops: a place or shop is itself owned by a user.
type OrganizerRef struct {
	Type OrganizerType `json:"type"`
	ID   string        `json:"id"`
}

// View records how many times a single user has seen an item.
type View struct {
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
}

// Item represents a single piece of rankable content.
type Item struct {
	ID          string       `json:"id"`
	Kind        Kind         `json:"kind"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Organizer   OrganizerRef `json:"organizer_ref"`

	// Parent-scope references for filtered listings.
	PlaceID *string `json:"place_id,omitempty"`
	ShopID  *string `json:"shop_id,omitempty"`

	// PriceCents is set for products and ads with a price tag.
	PriceCents *int64 `json:"price_cents,omitempty"`

	// StartDate is set for events and drives their recency scoring.
	StartDate *time.Time `json:"start_date,omitempty"`

	Views []View `json:"views,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// RankDate returns the date used for recency scoring and tie-breaking:
// the start date for events, the creation time for everything else.
func (i *Item) RankDate() time.Time {
	if i.Kind == KindEvent && i.StartDate != nil {
		return *i.StartDate
	}
	return i.CreatedAt
}

// ViewCountFor returns how many times the given user has viewed this item.
// Returns 0 for unknown users and for the empty (anonymous) user id.
func (i *Item) ViewCountFor(userID string) int {
	if userID == "" {
		return 0
	}
	for _, v := range i.Views {
		if v.UserID == userID {
			return v.Count
		}
	}
	return 0
}
