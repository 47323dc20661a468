package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/openagora/agora/internal/message"
	"github.com/openagora/agora/internal/notification"
)

func TestSendMessage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/messages", `{"sender_id": "alice", "recipient_id": "bob", "body": "see you there"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}

	var m message.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.ID == "" {
		t.Error("expected generated id")
	}
	if m.Body != "see you there" {
		t.Errorf("body = %s, want see you there", m.Body)
	}

	// The recipient gets a message notification referencing the message.
	notes, err := env.notifications.ListForUser("bob")
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("len(notifications) = %d, want 1", len(notes))
	}
	if notes[0].Type != notification.TypeMessage {
		t.Errorf("type = %s, want %s", notes[0].Type, notification.TypeMessage)
	}
	if notes[0].SubjectID != m.ID {
		t.Errorf("subject = %s, want %s", notes[0].SubjectID, m.ID)
	}
}

func TestSendMessage_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing sender", body: `{"recipient_id": "bob", "body": "hi"}`},
		{name: "missing recipient", body: `{"sender_id": "alice", "body": "hi"}`},
		{name: "self message", body: `{"sender_id": "alice", "recipient_id": "alice", "body": "hi"}`},
		{name: "empty body", body: `{"sender_id": "alice", "recipient_id": "bob", "body": "   "}`},
		{name: "body too long", body: `{"sender_id": "alice", "recipient_id": "bob", "body": "` + strings.Repeat("a", 2001) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/messages", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if resp := decodeError(t, rec); resp.Error.Code != ErrCodeValidation {
				t.Errorf("error code = %s, want %s", resp.Error.Code, ErrCodeValidation)
			}
		})
	}
}

func TestGetConversation(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{"first", "second"} {
		rec := env.do(t, http.MethodPost, "/messages", `{"sender_id": "alice", "recipient_id": "bob", "body": "`+body+`"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("send: status = %d", rec.Code)
		}
	}
	rec := env.do(t, http.MethodPost, "/messages", `{"sender_id": "bob", "recipient_id": "alice", "body": "reply"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("send: status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/messages/bob?currentUserId=alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Messages []*message.Message `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Messages) != 3 {
		t.Fatalf("len = %d, want 3 (both directions)", len(resp.Messages))
	}
	if resp.Messages[0].Body != "first" {
		t.Errorf("messages should be oldest first, got %s", resp.Messages[0].Body)
	}
}

func TestGetConversation_RequiresViewer(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/messages/bob", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetConversation_EmptyIsArray(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/messages/bob?currentUserId=alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(raw["messages"]) == "null" {
		t.Error("empty conversation must serialize as [] not null")
	}
}
