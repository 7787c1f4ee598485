package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/mudra/internal/store"
)

func TestAPI_SessionAndDrawingWorkflow(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	// A finished drawing session as the draw program leaves it.
	sess, err := s.Sessions().Start(store.AppDraw)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Sessions().End(sess.ID, 42, errors.New("camera unplugged")); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	png := []byte("\x89PNG fake")
	drawing := &store.Drawing{SessionID: sess.ID, Width: 640, Height: 480, Segments: 7, PNG: png}
	if err := s.Drawings().Create(drawing); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	ts := httptest.NewServer(New(Config{Store: s}))
	defer ts.Close()
	client := ts.Client()

	// 1. The session is listed with its outcome.
	resp, err := client.Get(ts.URL + "/api/sessions?app=draw")
	if err != nil {
		t.Fatalf("GET /api/sessions error = %v", err)
	}
	var sessions struct {
		Sessions []struct {
			ID     string `json:"id"`
			Frames int    `json:"frames"`
			Error  string `json:"error"`
		} `json:"sessions"`
	}
	json.NewDecoder(resp.Body).Decode(&sessions)
	resp.Body.Close()
	if len(sessions.Sessions) != 1 || sessions.Sessions[0].ID != sess.ID {
		t.Fatalf("sessions = %+v", sessions.Sessions)
	}
	if sessions.Sessions[0].Frames != 42 || sessions.Sessions[0].Error != "camera unplugged" {
		t.Errorf("session = %+v", sessions.Sessions[0])
	}

	// 2. The drawing image downloads byte for byte.
	resp, err = client.Get(ts.URL + "/api/drawings/" + drawing.ID + "/image")
	if err != nil {
		t.Fatalf("GET image error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != string(png) {
		t.Fatalf("image status = %d body = %q", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}

	// 3. Delete it and confirm it is gone.
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/drawings/"+drawing.ID, nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("DELETE error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d", resp.StatusCode)
	}

	resp, _ = client.Get(ts.URL + "/api/drawings/" + drawing.ID)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want 404", resp.StatusCode)
	}
}
