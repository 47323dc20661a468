package middleware

import (
	"net/http"
)

// ViewerParam is the query parameter identifying the requesting user.
// There is no authentication layer; the client self-reports its identity.
const ViewerParam = "currentUserId"

// Viewer extracts the viewer user ID from the request and stores it in the
// context so downstream middleware (rate limiting, logging) can key on it.
func Viewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.URL.Query().Get(ViewerParam); id != "" {
			ctx := SetViewerID(r.Context(), id)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}
