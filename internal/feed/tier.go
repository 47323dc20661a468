package feed

// Branch identifies which organizer shape produced a relationship: a user
// owning the item directly, or a place/shop entity backed by an owning user.
type Branch int

// Organizer branches.
const (
	// BranchDirect means the item is organized by a user directly.
	BranchDirect Branch = iota
	// BranchChain means the item is organized by a place or shop whose
	// owner chain ends at a user.
	BranchChain
)

// Tier is the viewer's relationship tier to an item's organizer, computed
// once per item and consumed by both the base-priority table and the
// view-decay weight table.
type Tier int

// Relationship tiers, weakest to strongest. Classification picks the first
// matching row top-down, so a stronger tier always wins.
const (
	// TierNone: no relationship signal in either direction.
	TierNone Tier = iota
	// TierFollower: the viewer follows the owning user (one direction).
	TierFollower
	// TierFollowing: the owning user follows the viewer (one direction).
	TierFollowing
	// TierMutual: both directions between viewer and owning user.
	TierMutual
	// TierEntityMutual: both directions plus the viewer follows the
	// place/shop entity itself. Only reachable on the chain branch.
	TierEntityMutual
)

// String returns the tier name for logging.
func (t Tier) String() string {
	switch t {
	case TierEntityMutual:
		return "entity_mutual"
	case TierMutual:
		return "mutual"
	case TierFollowing:
		return "following"
	case TierFollower:
		return "follower"
	default:
		return "none"
	}
}

// Relationship is the tagged pair of branch and tier for one item.
type Relationship struct {
	Branch Branch
	Tier   Tier
}

// classifyChain maps the three chain-branch booleans onto a tier. The rows
// are evaluated in fixed order; the first match wins.
//
//	entityFollower: viewer follows the place/shop
//	ownerFollowing: the owning user follows the viewer back
//	ownerFollower:  viewer follows the owning user
func classifyChain(entityFollower, ownerFollowing, ownerFollower bool) Relationship {
	rel := Relationship{Branch: BranchChain}
	switch {
	case entityFollower && ownerFollowing && ownerFollower:
		rel.Tier = TierEntityMutual
	case ownerFollowing && ownerFollower:
		rel.Tier = TierMutual
	case ownerFollowing:
		rel.Tier = TierFollowing
	case ownerFollower:
		rel.Tier = TierFollower
	default:
		rel.Tier = TierNone
	}
	return rel
}

// classifyDirect maps the two direct-branch booleans onto a tier.
//
//	following: viewer follows the organizer user
//	follower:  the organizer user follows the viewer back
func classifyDirect(following, follower bool) Relationship {
	rel := Relationship{Branch: BranchDirect}
	switch {
	case following && follower:
		rel.Tier = TierMutual
	case following:
		rel.Tier = TierFollowing
	case follower:
		rel.Tier = TierFollower
	default:
		rel.Tier = TierNone
	}
	return rel
}

// BasePriority returns the pre-recency, pre-decay priority for a
// relationship using the calibrated tables. The two branches use different
// tables: the chain branch has an extra 55-point row for the lone
// "viewer follows owner" signal.
func (c *Calibration) BasePriority(rel Relationship) float64 {
	p := c.Priorities
	if rel.Branch == BranchChain {
		switch rel.Tier {
		case TierEntityMutual:
			return p.ChainEntityMutual
		case TierMutual:
			return p.ChainMutual
		case TierFollowing:
			return p.ChainFollowing
		case TierFollower:
			return p.ChainFollower
		default:
			return p.ChainNone
		}
	}
	switch rel.Tier {
	case TierMutual:
		return p.DirectMutual
	case TierFollowing:
		return p.DirectFollowing
	case TierFollower:
		return p.DirectFollower
	default:
		return p.DirectNone
	}
}

// DecayWeight returns the per-view priority penalty for a relationship.
// Deeper engagement decays faster: repeat viewers of content from accounts
// they already interact with both ways are penalized more per view than
// viewers with no relationship, whose baseline priority was low anyway.
func (c *Calibration) DecayWeight(rel Relationship) float64 {
	d := c.Decay
	switch rel.Tier {
	case TierEntityMutual:
		return d.EntityMutual
	case TierMutual:
		// A direct-user mutual is the top tier of its branch and decays
		// at the top rate; the chain mutual lacks the entity-follow
		// signal and sits one step below.
		if rel.Branch == BranchDirect {
			return d.EntityMutual
		}
		return d.Mutual
	case TierFollowing:
		return d.Following
	case TierFollower:
		return d.Follower
	default:
		return d.None
	}
}
