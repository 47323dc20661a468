package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/openagora/agora/internal/content"
	"github.com/openagora/agora/internal/feed"
)

// FeedHandlers holds dependencies for ranked listing HTTP handlers.
type FeedHandlers struct {
	resolver *feed.Resolver
}

// NewFeedHandlers creates a new FeedHandlers instance.
func NewFeedHandlers(resolver *feed.Resolver) *FeedHandlers {
	return &FeedHandlers{
		resolver: resolver,
	}
}

// parsePageParam parses an optional positive integer query parameter.
// Missing or empty values yield the fallback; non-numeric values error.
func parsePageParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return fallback, nil
	}
	return n, nil
}

// optionalParam returns a pointer to the query parameter value, or nil when absent.
func optionalParam(r *http.Request, name string) *string {
	if v := r.URL.Query().Get(name); v != "" {
		return &v
	}
	return nil
}

// ListKind returns a handler for GET /{kind}s listings.
//
// With an id parameter the response is the single-item detail projection.
// Otherwise the full collection is ranked for the viewer identified by
// currentUserId and the requested page window is returned.
func (h *FeedHandlers) ListKind(kind content.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if id := r.URL.Query().Get("id"); id != "" {
			h.writeItemDetail(w, r, id)
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

		result, err := h.resolver.Resolve(ctx, feed.Request{
			Kind:     kind,
			PlaceID:  optionalParam(r, "placeId"),
			ShopID:   optionalParam(r, "shopId"),
			ViewerID: r.URL.Query().Get("currentUserId"),
			Page:     page,
			Limit:    limit,
		})
		if err != nil {
			WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to resolve listing")
			return
		}

		WriteJSON(w, ctx, http.StatusOK, result)
	}
}

// GetItem handles GET /items/{id} - single-item detail.
func (h *FeedHandlers) GetItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeBadRequest, "Item ID is required")
		return
	}
	h.writeItemDetail(w, r, id)
}

// writeItemDetail fetches one item and writes its detail projection.
func (h *FeedHandlers) writeItemDetail(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()

	detail, err := h.resolver.ResolveItem(ctx, id, r.URL.Query().Get("currentUserId"))
	if err != nil {
		// Soft-deleted items surface as ErrItemNotFound from the repository,
		// so a 404 covers both missing and deleted items here.
		switch {
		case errors.Is(err, content.ErrItemNotFound):
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Item not found")
		default:
			WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load item")
		}
		return
	}

	WriteJSON(w, ctx, http.StatusOK, detail)
}
