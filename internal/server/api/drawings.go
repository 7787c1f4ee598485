package api

import (
	"errors"
	"net/http"

	"github.com/ayusman/mudra/internal/store"
)

// DrawingHandler serves /api/drawings.
type DrawingHandler struct {
	store *store.Store
}

// NewDrawingHandler creates a DrawingHandler backed by s.
func NewDrawingHandler(s *store.Store) *DrawingHandler {
	return &DrawingHandler{store: s}
}

type drawingResponse struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id,omitempty"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Segments  int    `json:"segments"`
	CreatedAt string `json:"created_at"`
	ImageURL  string `json:"image_url"`
}

type listDrawingsResponse struct {
	Drawings []drawingResponse `json:"drawings"`
}

func toDrawingResponse(d *store.Drawing) drawingResponse {
	return drawingResponse{
		ID:        d.ID,
		SessionID: d.SessionID,
		Width:     d.Width,
		Height:    d.Height,
		Segments:  d.Segments,
		CreatedAt: d.CreatedAt.Format(timeFormat),
		ImageURL:  "/api/drawings/" + d.ID + "/image",
	}
}

// ServeHTTP routes GET /api/drawings, GET and DELETE /api/drawings/{id},
// and GET /api/drawings/{id}/image.
func (h *DrawingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/drawings")

	switch {
	case len(parts) == 0:
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w)
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.get(w, parts[0])
		case http.MethodDelete:
			h.delete(w, parts[0])
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 2 && parts[1] == "image":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.image(w, parts[0])
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *DrawingHandler) list(w http.ResponseWriter) {
	drawings, err := h.store.Drawings().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list drawings")
		return
	}

	resp := listDrawingsResponse{Drawings: make([]drawingResponse, 0, len(drawings))}
	for _, d := range drawings {
		resp.Drawings = append(resp.Drawings, toDrawingResponse(d))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *DrawingHandler) get(w http.ResponseWriter, id string) {
	d, err := h.store.Drawings().GetByID(id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDrawingResponse(d))
}

func (h *DrawingHandler) image(w http.ResponseWriter, id string) {
	png, err := h.store.Drawings().Image(id)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.png"`)
	writePNG(w, png)
}

func (h *DrawingHandler) delete(w http.ResponseWriter, id string) {
	if err := h.store.Drawings().Delete(id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DrawingHandler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Drawing not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "Failed to load drawing")
}
