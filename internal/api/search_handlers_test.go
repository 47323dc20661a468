package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/openagora/agora/internal/content"
)

func TestSearch_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		target   string
		wantCode string
	}{
		{
			name:     "missing q",
			target:   "/search?kind=event",
			wantCode: ErrCodeValidation,
		},
		{
			name:     "blank q",
			target:   "/search?q=%20%20&kind=event",
			wantCode: ErrCodeValidation,
		},
		{
			name:     "q too long",
			target:   "/search?kind=event&q=" + url.QueryEscape(strings.Repeat("a", 201)),
			wantCode: ErrCodeValidation,
		},
		{
			name:     "missing kind",
			target:   "/search?q=guitar",
			wantCode: ErrCodeInvalidKind,
		},
		{
			name:     "unknown kind",
			target:   "/search?q=guitar&kind=post",
			wantCode: ErrCodeInvalidKind,
		},
		{
			name:     "bad page",
			target:   "/search?q=guitar&kind=product&page=zero",
			wantCode: ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.target, "")
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if resp := decodeError(t, rec); resp.Error.Code != tt.wantCode {
				t.Errorf("error code = %s, want %s", resp.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestSearch_FiltersAndRanks(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "owner")
	env.seedItem(t, "prod-1", content.KindProduct, "owner")
	env.seedItem(t, "prod-2", content.KindProduct, "owner")
	env.seedItem(t, "prod-3", content.KindProduct, "owner")

	item, err := env.contents.GetByID("prod-2")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	item.Name = "Vintage Guitar"
	if err := env.contents.Update(item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/search?q=guitar&kind=product", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var resp listingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Pagination.Total != 1 {
		t.Fatalf("Total = %d, want 1", resp.Pagination.Total)
	}
	if resp.Items[0].ID != "prod-2" {
		t.Errorf("item = %s, want prod-2", resp.Items[0].ID)
	}
	if resp.Items[0].Organizer == nil {
		t.Error("search results carry organizer projections like kind listings")
	}
}

func TestSearch_KindScoped(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "owner")
	env.seedItem(t, "ev-1", content.KindEvent, "owner")
	env.seedItem(t, "ad-1", content.KindAd, "owner")

	// Both items share the seeded "item " name prefix; only events match.
	rec := env.do(t, http.MethodGet, "/search?q=item&kind=event", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp listingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Pagination.Total != 1 || resp.Items[0].ID != "ev-1" {
		t.Errorf("expected only ev-1, got %+v", resp.Items)
	}
}
