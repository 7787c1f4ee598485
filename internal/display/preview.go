package display

import (
	"bytes"
	"sync"

	"gocv.io/x/gocv"
)

// Preview keeps the latest shown frame as JPEG for the HTTP stream.
// It is safe for concurrent use.
type Preview struct {
	mu      sync.RWMutex
	jpeg    []byte
	seq     uint64
	changed chan struct{}
}

// NewPreview returns an empty Preview.
func NewPreview() *Preview {
	return &Preview{changed: make(chan struct{})}
}

// Show encodes frame and wakes every waiter.
func (p *Preview) Show(frame *gocv.Mat) error {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return err
	}
	data := bytes.Clone(buf.GetBytes())
	buf.Close()

	p.Publish(data)
	return nil
}

// Publish stores an already encoded JPEG.
func (p *Preview) Publish(jpeg []byte) {
	p.mu.Lock()
	p.jpeg = jpeg
	p.seq++
	close(p.changed)
	p.changed = make(chan struct{})
	p.mu.Unlock()
}

// Latest returns the newest JPEG and its sequence number. The sequence is
// 0 until the first frame arrives.
func (p *Preview) Latest() ([]byte, uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.jpeg, p.seq
}

// Changed returns a channel closed by the next Publish.
func (p *Preview) Changed() <-chan struct{} {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.changed
}

// Key never reports a key.
func (p *Preview) Key() int { return NoKey }

// Close is a no-op.
func (p *Preview) Close() error { return nil }
