package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ayusman/mudra/internal/store"
)

func seedKeysSession(t *testing.T, s *store.Store) *store.Session {
	t.Helper()
	sess, err := s.Sessions().Start(store.AppKeys)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	for _, action := range []string{"jump", "attack", "jump"} {
		e := &store.Event{
			SessionID: sess.ID,
			Action:    action,
			State:     "01000",
			Keys:      json.RawMessage(`["press space"]`),
		}
		if err := s.Events().Create(e); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	return sess
}

func TestSessionHandler(t *testing.T) {
	s := newTestStore(t)
	keysSess := seedKeysSession(t, s)
	if _, err := s.Sessions().Start(store.AppDraw); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	h := NewSessionHandler(s)

	serve := func(method, target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("lists all sessions", func(t *testing.T) {
		rec := serve(http.MethodGet, "/api/sessions")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		resp := decode[listSessionsResponse](t, rec.Body.Bytes())
		if len(resp.Sessions) != 2 {
			t.Errorf("len(sessions) = %d, want 2", len(resp.Sessions))
		}
	})

	t.Run("filters by app", func(t *testing.T) {
		rec := serve(http.MethodGet, "/api/sessions?app=keys")
		resp := decode[listSessionsResponse](t, rec.Body.Bytes())
		if len(resp.Sessions) != 1 || resp.Sessions[0].ID != keysSess.ID {
			t.Errorf("sessions = %+v", resp.Sessions)
		}
	})

	t.Run("gets one session with action counts", func(t *testing.T) {
		rec := serve(http.MethodGet, "/api/sessions/"+keysSess.ID)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		resp := decode[sessionResponse](t, rec.Body.Bytes())
		if resp.App != "keys" {
			t.Errorf("app = %q", resp.App)
		}
		if resp.Actions["jump"] != 2 || resp.Actions["attack"] != 1 {
			t.Errorf("actions = %v", resp.Actions)
		}
		if resp.EndedAt != "" {
			t.Errorf("running session should have no ended_at, got %q", resp.EndedAt)
		}
	})

	t.Run("lists events in order", func(t *testing.T) {
		rec := serve(http.MethodGet, "/api/sessions/"+keysSess.ID+"/events")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		resp := decode[listEventsResponse](t, rec.Body.Bytes())
		if len(resp.Events) != 3 {
			t.Fatalf("len(events) = %d", len(resp.Events))
		}
		if resp.Events[1].Action != "attack" {
			t.Errorf("events[1].action = %q", resp.Events[1].Action)
		}
		if string(resp.Events[0].Keys) != `["press space"]` {
			t.Errorf("events[0].keys = %s", resp.Events[0].Keys)
		}
	})

	t.Run("limits events", func(t *testing.T) {
		rec := serve(http.MethodGet, "/api/sessions/"+keysSess.ID+"/events?limit=2")
		resp := decode[listEventsResponse](t, rec.Body.Bytes())
		if len(resp.Events) != 2 {
			t.Errorf("len(events) = %d, want 2", len(resp.Events))
		}
	})

	errorCases := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{"unknown session", http.MethodGet, "/api/sessions/missing", http.StatusNotFound},
		{"events of unknown session", http.MethodGet, "/api/sessions/missing/events", http.StatusNotFound},
		{"bad limit", http.MethodGet, "/api/sessions/" + keysSess.ID + "/events?limit=x", http.StatusBadRequest},
		{"negative limit", http.MethodGet, "/api/sessions/" + keysSess.ID + "/events?limit=-1", http.StatusBadRequest},
		{"unknown subresource", http.MethodGet, "/api/sessions/" + keysSess.ID + "/frames", http.StatusNotFound},
		{"post", http.MethodPost, "/api/sessions", http.StatusMethodNotAllowed},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(tt.method, tt.target)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestSessionHandler_EmptyList(t *testing.T) {
	h := NewSessionHandler(newTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if body := rec.Body.String(); body != "{\"sessions\":[]}\n" {
		t.Errorf("body = %q, want an empty array", body)
	}
}
