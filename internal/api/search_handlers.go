package api

import (
	"net/http"
	"strings"

	"github.com/openagora/agora/internal/content"
	"github.com/openagora/agora/internal/feed"
)

// MaxSearchQueryLength bounds search query strings.
const MaxSearchQueryLength = 200

// SearchHandlers holds dependencies for search HTTP handlers.
type SearchHandlers struct {
	resolver *feed.Resolver
}

// NewSearchHandlers creates a new SearchHandlers instance.
func NewSearchHandlers(resolver *feed.Resolver) *SearchHandlers {
	return &SearchHandlers{
		resolver: resolver,
	}
}

// Search handles GET /search - a ranked listing restricted to items whose
// name or description matches q. The result page is ranked for the viewer
// exactly like the plain kind listings.
func (h *SearchHandlers) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "q is required")
		return
	}
	if len(q) > MaxSearchQueryLength {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "q must not exceed 200 characters")
		return
	}

	kind := content.Kind(r.URL.Query().Get("kind"))
	if kind == "" || !content.ValidKind(kind) {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidKind, "kind must be one of ad, event, opportunity, place, shop, product")
		return
	}

	page, err := parsePageParam(r, "page", feed.DefaultPage)
	if err != nil {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "page must be a positive integer")
		return
	}
	limit, err := parsePageParam(r, "limit", feed.DefaultLimit)
	if err != nil {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "limit must be a positive integer")
		return
	}

	result, resolveErr := h.resolver.Resolve(ctx, feed.Request{
		Kind:     kind,
		Query:    q,
		PlaceID:  optionalParam(r, "placeId"),
		ShopID:   optionalParam(r, "shopId"),
		ViewerID: r.URL.Query().Get("currentUserId"),
		Page:     page,
		Limit:    limit,
	})
	if resolveErr != nil {
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Search failed")
		return
	}

	WriteJSON(w, ctx, http.StatusOK, result)
}
