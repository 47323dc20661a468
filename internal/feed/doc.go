// Package feed computes viewer-relative priority scores for content items
// and produces ranked, paginated listings.
//
// Basic usage:
//
//	// Load calibration (typically at startup)
//	cal, err := feed.LoadCalibration("configs/feed.calibration.json")
//	if err != nil {
//		slog.Warn("using default calibration", "error", err)
//	}
//
//	organizers := feed.NewGraphOrganizerResolver(users, places, shops)
//	resolver := feed.NewResolver(contents, organizers, cal, metrics)
//
//	page, err := resolver.Resolve(ctx, feed.Request{
//		Kind:     content.KindEvent,
//		ViewerID: viewerID,
//		Page:     1,
//		Limit:    10,
//	})
//
// Scoring:
//
// Each item's priority starts from a base table keyed by the viewer's
// relationship tier to the item's organizer chain. Ads and events (by
// default) add a linear recency bonus that decays to zero over the
// calibrated window. On the first page of a personalized request, the
// viewer's own view count for the item is multiplied by a tier-dependent
// decay weight and subtracted, clamped at zero.
//
// The entire matching collection is fetched and scored before pagination,
// because the sort order depends on viewer-relative state. Per-item
// organizer resolution runs on a bounded fan-out and fully joins before
// the sort.
//
// Calibration:
//
// All tables and toggles live in a JSON calibration file loaded at
// startup, enabling deploy-time tuning without code changes. Partial
// files merge over the defaults; unreadable files degrade to defaults.
package feed
