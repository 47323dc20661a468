package feed

import (
	"math"
	"sort"
)

// sortScored orders items by priority DESC, then rank date DESC, then id
// ASC. The secondary keys make ties deterministic regardless of fetch
// order or scheduling of the scoring fan-out.
func sortScored(scored []scoredItem) {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].priority != scored[j].priority {
			return scored[i].priority > scored[j].priority
		}
		di, dj := scored[i].item.RankDate(), scored[j].item.RankDate()
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return scored[i].item.ID < scored[j].item.ID
	})
}

// paginate slices the page window out of the sorted collection.
// pages == ceil(total/limit); a page beyond the last yields an empty slice.
func paginate(scored []scoredItem, page, limit int) *Page {
	total := len(scored)
	pages := int(math.Ceil(float64(total) / float64(limit)))

	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	items := make([]*RankedItem, 0, end-start)
	for _, s := range scored[start:end] {
		items = append(items, &RankedItem{
			Item:      s.item,
			Priority:  s.priority,
			Organizer: s.organizer,
		})
	}

	return &Page{
		Items: items,
		Pagination: Pagination{
			Total: total,
			Page:  page,
			Pages: pages,
		},
	}
}
