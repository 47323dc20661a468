package feed

import (
	"context"

	"github.com/openagora/agora/internal/content"
	"github.com/openagora/agora/internal/place"
	"github.com/openagora/agora/internal/shop"
	"github.com/openagora/agora/internal/user"
)

// OrganizerInfo is the shallow organizer projection injected into ranked
// items and single-item detail responses.
type OrganizerInfo struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Type          content.OrganizerType `json:"type"`
	FollowerCount int                   `json:"follower_count"`
	IsFollowed    bool                  `json:"is_followed"`
}

// Resolution is the outcome of resolving one item's organizer chain for a
// viewer. Resolved is false when any hop of the chain is missing; such
// items keep priority 0 and an absent organizer, but stay in the output.
type Resolution struct {
	Organizer *OrganizerInfo
	Rel       Relationship
	Resolved  bool
}

// OrganizerResolver resolves an item's organizer chain and the viewer's
// relationship to it. Implementations vary by organizer shape: a user
// owning the item directly, or a place/shop backed by an owning user.
type OrganizerResolver interface {
	ResolveOrganizer(ctx context.Context, ref content.OrganizerRef, viewerID string) (Resolution, error)
}

// GraphOrganizerResolver resolves organizers against the user, place, and
// shop follow graphs, dispatching on the organizer reference type.
type GraphOrganizerResolver struct {
	users  user.UserRepository
	places place.PlaceRepository
	shops  shop.ShopRepository
}

// NewGraphOrganizerResolver creates a resolver over the three entity graphs.
func NewGraphOrganizerResolver(users user.UserRepository, places place.PlaceRepository, shops shop.ShopRepository) *GraphOrganizerResolver {
	return &GraphOrganizerResolver{
		users:  users,
		places: places,
		shops:  shops,
	}
}

// ResolveOrganizer resolves the organizer chain for one item. A missing
// record at any hop yields Resolved == false with a nil error: per-item
// resolution failures are tolerated and must never abort a batch.
func (g *GraphOrganizerResolver) ResolveOrganizer(ctx context.Context, ref content.OrganizerRef, viewerID string) (Resolution, error) {
	if err := ctx.Err(); err != nil {
		return Resolution{}, err
	}

	switch ref.Type {
	case content.OrganizerUser:
		return g.resolveDirect(ref.ID, viewerID), nil
	case content.OrganizerPlace:
		return g.resolvePlace(ref.ID, viewerID), nil
	case content.OrganizerShop:
		return g.resolveShop(ref.ID, viewerID), nil
	default:
		return Resolution{}, nil
	}
}

// resolveDirect handles items organized by a user directly.
func (g *GraphOrganizerResolver) resolveDirect(userID, viewerID string) Resolution {
	u, err := g.users.GetByID(userID)
	if err != nil {
		return Resolution{}
	}

	// "Viewer follows organizer" means the viewer appears in the
	// organizer's follower list; "organizer follows viewer" means the
	// viewer appears in the organizer's following list.
	following := u.HasFollower(viewerID)
	follower := u.IsFollowing(viewerID)

	return Resolution{
		Organizer: &OrganizerInfo{
			ID:            u.ID,
			Name:          u.Name,
			Type:          content.OrganizerUser,
			FollowerCount: len(u.Followers),
			IsFollowed:    following,
		},
		Rel:      classifyDirect(following, follower),
		Resolved: true,
	}
}

// resolvePlace handles items organized by a place; the chain continues to
// the place's owning user.
func (g *GraphOrganizerResolver) resolvePlace(placeID, viewerID string) Resolution {
	p, err := g.places.GetByID(placeID)
	if err != nil {
		return Resolution{}
	}
	owner, err := g.users.GetByID(p.OwnerID)
	if err != nil {
		return Resolution{}
	}

	entityFollower := p.HasFollower(viewerID)
	ownerFollowing := owner.IsFollowing(viewerID)
	ownerFollower := owner.HasFollower(viewerID)

	return Resolution{
		Organizer: &OrganizerInfo{
			ID:            p.ID,
			Name:          p.Name,
			Type:          content.OrganizerPlace,
			FollowerCount: len(p.Followers),
			IsFollowed:    entityFollower,
		},
		Rel:      classifyChain(entityFollower, ownerFollowing, ownerFollower),
		Resolved: true,
	}
}

// resolveShop handles items organized by a shop; the chain continues to
// the shop's owning user.
func (g *GraphOrganizerResolver) resolveShop(shopID, viewerID string) Resolution {
	s, err := g.shops.GetByID(shopID)
	if err != nil {
		return Resolution{}
	}
	owner, err := g.users.GetByID(s.OwnerID)
	if err != nil {
		return Resolution{}
	}

	entityFollower := s.HasFollower(viewerID)
	ownerFollowing := owner.IsFollowing(viewerID)
	ownerFollower := owner.HasFollower(viewerID)

	return Resolution{
		Organizer: &OrganizerInfo{
			ID:            s.ID,
			Name:          s.Name,
			Type:          content.OrganizerShop,
			FollowerCount: len(s.Followers),
			IsFollowed:    entityFollower,
		},
		Rel:      classifyChain(entityFollower, ownerFollowing, ownerFollower),
		Resolved: true,
	}
}
