package display

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func blank(w, h int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), h, w, gocv.MatTypeCV8UC3)
}

func TestNull(t *testing.T) {
	n := NewNull()
	frame := blank(8, 8)
	defer frame.Close()

	n.Show(&frame)
	n.Show(&frame)
	if n.Shown() != 2 {
		t.Errorf("Shown() = %d, want 2", n.Shown())
	}

	if k := n.Key(); k != NoKey {
		t.Errorf("Key() with nothing queued = %d", k)
	}
	n.Press('u', 'q')
	if n.Key() != 'u' || n.Key() != 'q' || n.Key() != NoKey {
		t.Error("queued keys not returned in order")
	}

	n.Close()
	if !n.Closed() {
		t.Error("Closed() = false after Close")
	}
}

type failingSurface struct{ *Null }

func (f failingSurface) Show(*gocv.Mat) error { return errors.New("gone") }

func TestMulti(t *testing.T) {
	a, b := NewNull(), NewNull()
	m := Multi{a, failingSurface{b}}

	frame := blank(8, 8)
	defer frame.Close()

	if err := m.Show(&frame); err == nil {
		t.Error("expected joined error from failing surface")
	}
	if a.Shown() != 1 {
		t.Error("healthy surface should still receive the frame")
	}

	b.Press('f')
	if k := m.Key(); k != 'f' {
		t.Errorf("Key() = %d, want 'f'", k)
	}

	m.Close()
	if !a.Closed() || !b.Closed() {
		t.Error("Close() should reach every surface")
	}
}

func TestPreview(t *testing.T) {
	p := NewPreview()
	if data, seq := p.Latest(); data != nil || seq != 0 {
		t.Fatalf("empty preview returned %d bytes, seq %d", len(data), seq)
	}

	changed := p.Changed()
	frame := blank(64, 48)
	defer frame.Close()
	if err := p.Show(&frame); err != nil {
		t.Fatalf("Show() error = %v", err)
	}

	select {
	case <-changed:
	case <-time.After(time.Second):
		t.Fatal("Changed() not signalled")
	}

	data, seq := p.Latest()
	if seq != 1 {
		t.Errorf("seq = %d, want 1", seq)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("jpeg.Decode() error = %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("decoded size = %v", img.Bounds().Size())
	}

	p.Publish([]byte("x"))
	if _, seq := p.Latest(); seq != 2 {
		t.Errorf("seq after Publish = %d, want 2", seq)
	}
}

func TestComposite(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(10, 20, 30, 0), 20, 20, gocv.MatTypeCV8UC3)
	defer frame.Close()
	canvas := blank(20, 20)
	defer canvas.Close()

	gocv.Circle(&canvas, image.Pt(5, 5), 2, color.RGBA{R: 255, A: 255}, -1)
	Composite(&frame, canvas)

	px := frame.ToBytes()
	at := func(x, y int) []byte {
		i := (y*20 + x) * 3
		return px[i : i+3]
	}
	if got := at(5, 5); got[2] != 255 {
		t.Errorf("stroke pixel = %v, want red", got)
	}
	if got := at(15, 15); got[0] != 10 || got[1] != 20 || got[2] != 30 {
		t.Errorf("background pixel = %v, want camera colour", got)
	}
}

func TestDrawHand_SkipsPartial(t *testing.T) {
	frame := blank(16, 16)
	defer frame.Close()

	DrawHand(&frame, make([]image.Point, 5))
	for _, b := range frame.ToBytes() {
		if b != 0 {
			t.Fatal("partial landmarks were drawn")
		}
	}
}
