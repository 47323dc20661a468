package api

import (
	"log/slog"
	"net/http"

	"github.com/openagora/agora/internal/content"
)

// RouterConfig collects the handler groups wired into the HTTP router.
type RouterConfig struct {
	Feed          *FeedHandlers
	Content       *ContentHandlers
	Users         *UserHandlers
	Search        *SearchHandlers
	Notifications *NotificationHandlers
	Messages      *MessageHandlers
	Health        *HealthHandlers

	// MetricsHandler serves GET /metrics (Prometheus). Optional.
	MetricsHandler http.Handler

	// SearchLimiter wraps the search endpoint with its own tighter rate
	// limit. Optional.
	SearchLimiter func(http.Handler) http.Handler
}

// kindRoutes maps listing route prefixes to content kinds.
var kindRoutes = map[string]content.Kind{
	"/ads":           content.KindAd,
	"/events":        content.KindEvent,
	"/opportunities": content.KindOpportunity,
	"/places":        content.KindPlace,
	"/shops":         content.KindShop,
	"/products":      content.KindProduct,
}

// NewRouter builds the ServeMux with all API routes registered.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	// Ranked listings, one route per content kind.
	for route, kind := range kindRoutes {
		mux.HandleFunc("GET "+route, cfg.Feed.ListKind(kind))
	}

	// Search
	search := http.Handler(http.HandlerFunc(cfg.Search.Search))
	if cfg.SearchLimiter != nil {
		search = cfg.SearchLimiter(search)
	}
	mux.Handle("GET /search", search)

	// Content items
	mux.HandleFunc("POST /items", cfg.Content.CreateItem)
	mux.HandleFunc("GET /items/{id}", cfg.Feed.GetItem)
	mux.HandleFunc("PATCH /items/{id}", cfg.Content.UpdateItem)
	mux.HandleFunc("DELETE /items/{id}", cfg.Content.DeleteItem)
	mux.HandleFunc("POST /items/{id}/view", cfg.Content.RecordView)

	// Users and follow graph
	mux.HandleFunc("POST /users", cfg.Users.CreateUser)
	mux.HandleFunc("GET /users/{id}", cfg.Users.GetUser)
	mux.HandleFunc("POST /users/{id}/follow", cfg.Users.FollowUser)
	mux.HandleFunc("DELETE /users/{id}/follow", cfg.Users.UnfollowUser)
	mux.HandleFunc("POST /places/{id}/follow", cfg.Users.FollowPlace)
	mux.HandleFunc("DELETE /places/{id}/follow", cfg.Users.UnfollowPlace)
	mux.HandleFunc("POST /shops/{id}/follow", cfg.Users.FollowShop)
	mux.HandleFunc("DELETE /shops/{id}/follow", cfg.Users.UnfollowShop)

	// Notifications
	mux.HandleFunc("GET /notifications", cfg.Notifications.ListNotifications)
	mux.HandleFunc("POST /notifications/{id}/read", cfg.Notifications.MarkNotificationRead)

	// Messages
	mux.HandleFunc("POST /messages", cfg.Messages.SendMessage)
	mux.HandleFunc("GET /messages/{id}", cfg.Messages.GetConversation)

	// Operational endpoints
	mux.HandleFunc("GET /health", cfg.Health.Health)
	mux.HandleFunc("GET /ready", cfg.Health.Ready)
	if cfg.MetricsHandler != nil {
		mux.Handle("GET /metrics", cfg.MetricsHandler)
	}

	// Root: service banner on "/", structured 404 everywhere else.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			WriteError(w, r.Context(), http.StatusNotFound, ErrCodeNotFound, "The requested resource was not found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"service":"agora-api","version":"0.0.1"}`)); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	return mux
}
