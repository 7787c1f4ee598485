package sketch

// History is a stack of canvas snapshots. With a positive limit the oldest
// snapshot is dropped once the stack is full.
type History struct {
	snaps []*Canvas
	limit int
}

// NewHistory creates a History. A limit of 0 means unbounded.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Push stores snap. The History owns snap from then on.
func (h *History) Push(snap *Canvas) {
	if h.limit > 0 && len(h.snaps) >= h.limit {
		h.snaps[0].Close()
		h.snaps = append(h.snaps[:0], h.snaps[1:]...)
	}
	h.snaps = append(h.snaps, snap)
}

// Pop removes and returns the newest snapshot. The caller owns it.
func (h *History) Pop() (*Canvas, bool) {
	if len(h.snaps) == 0 {
		return nil, false
	}
	last := len(h.snaps) - 1
	snap := h.snaps[last]
	h.snaps[last] = nil
	h.snaps = h.snaps[:last]
	return snap, true
}

// Clear drops every snapshot.
func (h *History) Clear() {
	for _, s := range h.snaps {
		s.Close()
	}
	h.snaps = nil
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	return len(h.snaps)
}
