package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/openagora/agora/internal/content"
	"github.com/openagora/agora/internal/tracing"
)

// Request describes one ranked listing request.
type Request struct {
	Kind    content.Kind
	PlaceID *string
	ShopID  *string
	Query   string

	// ViewerID personalizes the ranking. When empty, every relationship
	// predicate evaluates false and scoring falls back to the lowest
	// non-personalized tier.
	ViewerID string

	Page  int
	Limit int
}

// Pagination describes the page window of a ranked listing.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

// RankedItem is a content item augmented with its computed priority and
// the organizer projection. Organizer is nil when the chain failed to
// resolve; the item still appears in the output.
type RankedItem struct {
	*content.Item
	Priority  float64        `json:"priority"`
	Organizer *OrganizerInfo `json:"organizer,omitempty"`
}

// Page is a ranked, paginated listing.
type Page struct {
	Items      []*RankedItem `json:"items"`
	Pagination Pagination    `json:"pagination"`
}

// ItemDetail is the single-item projection: the raw item plus the shallow
// organizer info. Priority is a list-ranking concept and is not computed
// for detail views.
type ItemDetail struct {
	*content.Item
	Organizer *OrganizerInfo `json:"organizer,omitempty"`
}

// Default listing parameters.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Resolver produces priority-ordered, paginated pages of content items for
// a viewer. Scoring is a pure function of fetched state: nothing is
// persisted and identical inputs yield identical priorities.
type Resolver struct {
	contents   content.ContentRepository
	organizers OrganizerResolver
	cal        *Calibration
	metrics    *Metrics

	// now is injectable for deterministic recency tests.
	now func() time.Time
}

// NewResolver creates a feed resolver. Metrics may be nil.
func NewResolver(contents content.ContentRepository, organizers OrganizerResolver, cal *Calibration, metrics *Metrics) *Resolver {
	if cal == nil {
		cal = DefaultCalibration()
	}
	return &Resolver{
		contents:   contents,
		organizers: organizers,
		cal:        cal,
		metrics:    metrics,
		now:        time.Now,
	}
}

// scoredItem pairs an item with its resolution outcome during the fan-out.
type scoredItem struct {
	item      *content.Item
	priority  float64
	organizer *OrganizerInfo
	resolved  bool
}

// Resolve fetches the full matching collection, scores every item for the
// viewer, sorts by priority, and slices the requested page window.
//
// Organizer-resolution failures degrade per item (priority 0, organizer
// absent); any other failure aborts the whole request.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Page, error) {
	ctx, endSpan := tracing.StartSpan(ctx, "feed.resolve")
	var err error
	defer func() { endSpan(err) }()

	if req.Page < 1 {
		req.Page = DefaultPage
	}
	if req.Limit < 1 {
		req.Limit = DefaultLimit
	}

	start := r.now()

	items, listErr := r.contents.List(content.Filter{
		Kind:    req.Kind,
		PlaceID: req.PlaceID,
		ShopID:  req.ShopID,
		Query:   req.Query,
	})
	if listErr != nil {
		err = fmt.Errorf("list %s items: %w", req.Kind, listErr)
		return nil, err
	}

	scored, scoreErr := r.scoreAll(ctx, items, req)
	if scoreErr != nil {
		err = scoreErr
		return nil, err
	}

	sortScored(scored)

	page := paginate(scored, req.Page, req.Limit)

	if r.metrics != nil {
		r.metrics.ObserveResolve(string(req.Kind), time.Since(start).Seconds(), len(items))
	}

	return page, nil
}

// scoreAll resolves every item's organizer concurrently (bounded fan-out)
// and computes its priority. All resolutions complete before this returns:
// sorting requires the full join.
func (r *Resolver) scoreAll(ctx context.Context, items []*content.Item, req Request) ([]scoredItem, error) {
	scored := make([]scoredItem, len(items))

	fanOut := r.cal.FanOut
	if fanOut < 1 {
		fanOut = 1
	}

	sem := make(chan struct{}, fanOut)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, item *content.Item) {
			defer wg.Done()
			defer func() { <-sem }()

			scored[i] = r.scoreOne(ctx, item, req)
		}(i, item)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("feed resolve canceled: %w", err)
	}

	failures := 0
	for i := range scored {
		if !scored[i].resolved {
			failures++
		}
	}
	if failures > 0 {
		if r.metrics != nil {
			for i := 0; i < failures; i++ {
				r.metrics.IncResolutionFailure()
			}
		}
		slog.DebugContext(ctx, "organizer resolution failures in feed",
			"kind", req.Kind,
			"failed", failures,
			"total", len(items))
	}

	return scored, nil
}

// scoreOne computes one item's priority: base tier priority, plus the
// recency bonus for calibrated kinds, minus first-page view decay.
func (r *Resolver) scoreOne(ctx context.Context, item *content.Item, req Request) scoredItem {
	s := scoredItem{item: item}

	res, err := r.organizers.ResolveOrganizer(ctx, item.Organizer, req.ViewerID)
	if err != nil || !res.Resolved {
		// Priority stays 0 and no further adjustment applies.
		return s
	}

	s.resolved = true
	s.organizer = res.Organizer
	priority := r.cal.BasePriority(res.Rel)

	if r.cal.RecencyEnabled(item.Kind) {
		ageHours := r.now().Sub(item.RankDate()).Hours()
		if bonus := r.cal.RecencyWindowHours - ageHours; bonus > 0 {
			priority += bonus
		}
	}

	// View decay applies on the first page of personalized requests only:
	// deeper pages must reproduce the pre-decay ordering.
	if req.Page == 1 && req.ViewerID != "" {
		priority -= float64(item.ViewCountFor(req.ViewerID)) * r.cal.DecayWeight(res.Rel)
		if priority < 0 {
			priority = 0
		}
	}

	s.priority = priority
	return s
}

// ResolveItem is the single-item detail variant: the raw item plus the
// shallow organizer projection, without a priority.
func (r *Resolver) ResolveItem(ctx context.Context, id, viewerID string) (*ItemDetail, error) {
	item, err := r.contents.GetByID(id)
	if err != nil {
		return nil, err
	}

	detail := &ItemDetail{Item: item}

	res, err := r.organizers.ResolveOrganizer(ctx, item.Organizer, viewerID)
	if err != nil {
		return nil, err
	}
	if res.Resolved {
		detail.Organizer = res.Organizer
	}

	return detail, nil
}
