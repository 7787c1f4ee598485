// Package sketch draws pinch-controlled strokes onto a persistent canvas.
package sketch

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Canvas is a fixed-size BGR raster. A blank canvas is black.
type Canvas struct {
	mat    gocv.Mat
	width  int
	height int
}

// NewCanvas returns a blank canvas of the given size.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		mat:    blankMat(width, height),
		width:  width,
		height: height,
	}
}

func blankMat(width, height int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC3)
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() image.Point {
	return image.Pt(c.width, c.height)
}

// Line draws a segment from p to q.
func (c *Canvas) Line(p, q image.Point, col color.RGBA, thickness int) {
	gocv.Line(&c.mat, p, q, col, thickness)
}

// Clone returns an independent copy.
func (c *Canvas) Clone() *Canvas {
	return &Canvas{mat: c.mat.Clone(), width: c.width, height: c.height}
}

// Reset blanks the canvas.
func (c *Canvas) Reset() {
	c.mat.Close()
	c.mat = blankMat(c.width, c.height)
}

// replace swaps in other's pixels and takes ownership of other.
func (c *Canvas) replace(other *Canvas) {
	c.mat.Close()
	c.mat = other.mat
	c.width, c.height = other.width, other.height
}

// Bytes returns the raw BGR pixels, row-major.
func (c *Canvas) Bytes() []byte {
	return c.mat.ToBytes()
}

// Equal reports whether both canvases hold identical pixels.
func (c *Canvas) Equal(other *Canvas) bool {
	if other == nil || c.width != other.width || c.height != other.height {
		return false
	}
	return bytes.Equal(c.Bytes(), other.Bytes())
}

// Blank reports whether every pixel is black.
func (c *Canvas) Blank() bool {
	for _, b := range c.Bytes() {
		if b != 0 {
			return false
		}
	}
	return true
}

// At returns the colour at (x, y).
func (c *Canvas) At(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return color.RGBA{}
	}
	px := c.Bytes()
	i := (y*c.width + x) * 3
	return color.RGBA{B: px[i], G: px[i+1], R: px[i+2], A: 255}
}

// Mat exposes the underlying matrix for compositing. Callers must not
// modify or close it.
func (c *Canvas) Mat() gocv.Mat {
	return c.mat
}

// EncodePNG exports the canvas losslessly.
func (c *Canvas) EncodePNG() ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.PNGFileExt, c.mat)
	if err != nil {
		return nil, fmt.Errorf("encode canvas: %w", err)
	}
	defer buf.Close()
	return bytes.Clone(buf.GetBytes()), nil
}

// Close releases the matrix.
func (c *Canvas) Close() error {
	return c.mat.Close()
}
