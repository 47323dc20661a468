package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/openagora/agora/internal/notification"
	"github.com/openagora/agora/internal/place"
	"github.com/openagora/agora/internal/shop"
	"github.com/openagora/agora/internal/user"
)

func TestCreateUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/users", `{"handle": "night_owl", "name": "Night Owl", "bio": "always up"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}

	var u user.User
	if err := json.Unmarshal(rec.Body.Bytes(), &u); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if u.ID == "" {
		t.Error("expected generated id")
	}
	if u.Handle != "night_owl" {
		t.Errorf("handle = %s, want night_owl", u.Handle)
	}
}

func TestCreateUser_InvalidHandle(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "too short", body: `{"handle": "a", "name": "A"}`},
		{name: "forbidden characters", body: `{"handle": "bad handle!", "name": "B"}`},
		{name: "empty", body: `{"handle": "", "name": "C"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/users", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if resp := decodeError(t, rec); resp.Error.Code != ErrCodeValidation {
				t.Errorf("error code = %s, want %s", resp.Error.Code, ErrCodeValidation)
			}
		})
	}
}

func TestGetUser_Profile(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice")
	env.seedUser(t, "bob")
	env.seedUser(t, "carol")
	if err := env.users.Follow("bob", "alice"); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := env.users.Follow("alice", "carol"); err != nil {
		t.Fatalf("follow: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/users/alice?currentUserId=bob", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp UserProfileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.FollowerCount != 1 {
		t.Errorf("follower_count = %d, want 1", resp.FollowerCount)
	}
	if resp.FollowingCount != 1 {
		t.Errorf("following_count = %d, want 1", resp.FollowingCount)
	}
	if !resp.IsFollowed {
		t.Error("expected is_followed true for a following viewer")
	}

	// Anonymous view never reports is_followed.
	rec = env.do(t, http.MethodGet, "/users/alice", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.IsFollowed {
		t.Error("anonymous viewer must see is_followed false")
	}
}

func TestGetUser_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/users/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error.Code != ErrCodeUserNotFound {
		t.Errorf("error code = %s, want %s", resp.Error.Code, ErrCodeUserNotFound)
	}
}

func TestFollowUser(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice")
	env.seedUser(t, "bob")

	rec := env.do(t, http.MethodPost, "/users/alice/follow", `{"user_id": "bob"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 (body: %s)", rec.Code, rec.Body.String())
	}

	alice, _ := env.users.GetByID("alice")
	if !alice.HasFollower("bob") {
		t.Error("bob should follow alice")
	}

	// The follow produces a notification for the target.
	notes, err := env.notifications.ListForUser("alice")
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("len(notifications) = %d, want 1", len(notes))
	}
	if notes[0].Type != notification.TypeFollow {
		t.Errorf("notification type = %s, want %s", notes[0].Type, notification.TypeFollow)
	}
	if notes[0].ActorID != "bob" {
		t.Errorf("actor = %s, want bob", notes[0].ActorID)
	}
}

func TestFollowUser_SelfFollow(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice")

	rec := env.do(t, http.MethodPost, "/users/alice/follow", `{"user_id": "alice"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error.Code != ErrCodeSelfFollow {
		t.Errorf("error code = %s, want %s", resp.Error.Code, ErrCodeSelfFollow)
	}
}

func TestFollowUser_MissingUserID(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice")

	rec := env.do(t, http.MethodPost, "/users/alice/follow", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestFollowUser_TargetNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "bob")

	rec := env.do(t, http.MethodPost, "/users/missing/follow", `{"user_id": "bob"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error.Code != ErrCodeUserNotFound {
		t.Errorf("error code = %s, want %s", resp.Error.Code, ErrCodeUserNotFound)
	}
}

func TestUnfollowUser(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice")
	env.seedUser(t, "bob")
	if err := env.users.Follow("bob", "alice"); err != nil {
		t.Fatalf("follow: %v", err)
	}

	rec := env.do(t, http.MethodDelete, "/users/alice/follow", `{"user_id": "bob"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	alice, _ := env.users.GetByID("alice")
	if alice.HasFollower("bob") {
		t.Error("bob should no longer follow alice")
	}
}

func TestFollowPlace(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "fan")
	if err := env.places.Create(&place.Place{ID: "place-1", Name: "The Forum", OwnerID: "owner"}); err != nil {
		t.Fatalf("create place: %v", err)
	}

	rec := env.do(t, http.MethodPost, "/places/place-1/follow?currentUserId=fan", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 (body: %s)", rec.Code, rec.Body.String())
	}

	p, _ := env.places.GetByID("place-1")
	if !p.HasFollower("fan") {
		t.Error("fan should follow place-1")
	}

	rec = env.do(t, http.MethodDelete, "/places/place-1/follow?currentUserId=fan", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("unfollow status = %d, want 204", rec.Code)
	}
	p, _ = env.places.GetByID("place-1")
	if p.HasFollower("fan") {
		t.Error("fan should be removed")
	}
}

func TestFollowShop(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "fan")
	if err := env.shops.Create(&shop.Shop{ID: "shop-1", Name: "Corner Store", OwnerID: "owner"}); err != nil {
		t.Fatalf("create shop: %v", err)
	}

	rec := env.do(t, http.MethodPost, "/shops/shop-1/follow", `{"user_id": "fan"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	s, _ := env.shops.GetByID("shop-1")
	if !s.HasFollower("fan") {
		t.Error("fan should follow shop-1")
	}
}

func TestFollowPlace_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/places/missing/follow", `{"user_id": "fan"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error.Code != ErrCodeNotFound {
		t.Errorf("error code = %s, want %s", resp.Error.Code, ErrCodeNotFound)
	}
}
