package api

import (
	"net/http"
)

// CanvasState summarizes the live drawing session.
type CanvasState struct {
	Width    int  `json:"width"`
	Height   int  `json:"height"`
	Segments int  `json:"segments"`
	History  int  `json:"history"`
	Finished bool `json:"finished"`
	Running  bool `json:"running"`
}

// CanvasController is the live drawing session behind /api/canvas.
// Commands fail once the session has stopped.
type CanvasController interface {
	// Snapshot returns the latest canvas PNG, or nil before the first frame.
	Snapshot() ([]byte, CanvasState)
	Clear() error
	Undo() (bool, error)
	Finish() error
}

// CanvasHandler serves /api/canvas.
type CanvasHandler struct {
	canvas CanvasController
}

// NewCanvasHandler creates a CanvasHandler for c.
func NewCanvasHandler(c CanvasController) *CanvasHandler {
	return &CanvasHandler{canvas: c}
}

type commandResponse struct {
	Command string      `json:"command"`
	Changed bool        `json:"changed"`
	State   CanvasState `json:"state"`
}

// ServeHTTP routes GET /api/canvas (PNG), GET /api/canvas/state and
// POST /api/canvas/{clear,undo,finish}.
func (h *CanvasHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/canvas")

	if len(parts) == 0 {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		png, _ := h.canvas.Snapshot()
		if png == nil {
			writeError(w, http.StatusServiceUnavailable, "Canvas not ready")
			return
		}
		writePNG(w, png)
		return
	}

	if len(parts) != 1 {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	if parts[0] == "state" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		_, state := h.canvas.Snapshot()
		writeJSON(w, http.StatusOK, state)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var (
		changed = true
		err     error
	)
	switch parts[0] {
	case "clear":
		err = h.canvas.Clear()
	case "undo":
		changed, err = h.canvas.Undo()
	case "finish":
		err = h.canvas.Finish()
	default:
		writeError(w, http.StatusNotFound, "Unknown command")
		return
	}
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	_, state := h.canvas.Snapshot()
	writeJSON(w, http.StatusOK, commandResponse{Command: parts[0], Changed: changed, State: state})
}
