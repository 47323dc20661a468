package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsHandler(cfg CORSConfig) http.Handler {
	return CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
}

func appConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins:   []string{"https://app.agora.example", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           600,
	}
}

func TestCORS_OriginHandling(t *testing.T) {
	tests := []struct {
		name       string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{
			name:       "listed app origin",
			origin:     "https://app.agora.example",
			wantStatus: http.StatusOK,
			wantAllow:  "https://app.agora.example",
		},
		{
			name:       "dev server origin",
			origin:     "http://localhost:5173",
			wantStatus: http.StatusOK,
			wantAllow:  "http://localhost:5173",
		},
		{
			name:       "unlisted origin rejected",
			origin:     "https://evil.example",
			wantStatus: http.StatusForbidden,
			wantAllow:  "",
		},
		{
			name:       "same-origin request passes through",
			origin:     "",
			wantStatus: http.StatusOK,
			wantAllow:  "",
		},
	}

	handler := corsHandler(appConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/events", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantAllow)
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	handler := CORS(appConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("wrapped handler must not run for preflight requests")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/items", nil)
	req.Header.Set("Origin", "https://app.agora.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, PATCH, DELETE, OPTIONS" {
		t.Errorf("Allow-Methods = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, X-Request-ID" {
		t.Errorf("Allow-Headers = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q, want true", got)
	}
	if got := rr.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Errorf("Max-Age = %q, want 600", got)
	}
}

func TestCORS_ActualRequestOmitsPreflightHeaders(t *testing.T) {
	handler := corsHandler(appConfig())

	req := httptest.NewRequest(http.MethodGet, "/shops", nil)
	req.Header.Set("Origin", "https://app.agora.example")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "" {
		t.Errorf("Allow-Methods on actual request = %q, want empty", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Headers"); got != "" {
		t.Errorf("Allow-Headers on actual request = %q, want empty", got)
	}
}

func TestCORS_DisabledWithoutOrigins(t *testing.T) {
	handler := corsHandler(CORSConfig{})

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (CORS disabled)", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want empty when disabled", got)
	}
}

func TestCORS_OriginListNormalization(t *testing.T) {
	// Whitespace and empty entries in the configured list are discarded.
	handler := corsHandler(CORSConfig{
		AllowedOrigins: []string{"  https://app.agora.example  ", ""},
		AllowedMethods: []string{"GET"},
		AllowedHeaders: []string{"Content-Type"},
	})

	req := httptest.NewRequest(http.MethodGet, "/ads", nil)
	req.Header.Set("Origin", "https://app.agora.example")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.agora.example" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestCORS_WithRequestID(t *testing.T) {
	// Request IDs are assigned before CORS runs, so even rejected requests
	// carry one.
	handler := RequestID(corsHandler(appConfig()))

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID on rejected request")
	}
}
