package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Frame differencing parameters.
const (
	// GaussianBlurSize is the blur kernel applied before differencing.
	GaussianBlurSize = 21
	// DiffThreshold is the per-pixel grey level change that counts.
	DiffThreshold = 25
	// DefaultMotionThreshold is the percentage of changed pixels that
	// counts as motion.
	DefaultMotionThreshold = 0.5
	// DefaultMaxSkip is how many frames in a row a still scene may reuse
	// a detection before the detector runs anyway.
	DefaultMaxSkip = 5
)

// MotionDetector compares each frame with a baseline: the last frame that
// was reported as motion. Slow changes therefore add up until they cross
// the threshold. The frame loops use it as a gate: a still scene reuses
// the last landmark result instead of asking the detector again.
type MotionDetector struct {
	threshold float64
	prevGray  gocv.Mat
	hasPrev   bool
	mu        sync.Mutex
}

// NewMotionDetector creates a detector that reports motion when more than
// threshold percent of the pixels changed.
func NewMotionDetector(threshold float64) *MotionDetector {
	if threshold <= 0 {
		threshold = DefaultMotionThreshold
	}
	return &MotionDetector{
		threshold: threshold,
		prevGray:  gocv.NewMat(),
	}
}

// Detect reports whether frame differs from the baseline and by what
// percentage of pixels. The baseline moves to frame only when motion is
// reported. The first frame after construction or Reset has
// nothing to compare against and always counts as motion.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	grayBlur(frame, &blurred)

	if !m.hasPrev {
		blurred.CopyTo(&m.prevGray)
		m.hasPrev = true
		return true, 100
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prevGray, &diff)
	gocv.Threshold(diff, &diff, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100.0
	moved := changed > m.threshold
	if moved {
		blurred.CopyTo(&m.prevGray)
	}
	return moved, changed
}

// grayBlur writes the blurred greyscale version of src to dst.
func grayBlur(src, dst *gocv.Mat) {
	gray := gocv.NewMat()
	defer gray.Close()

	if src.Channels() > 1 {
		gocv.CvtColor(*src, &gray, gocv.ColorBGRToGray)
	} else {
		src.CopyTo(&gray)
	}
	gocv.GaussianBlur(gray, dst, image.Pt(GaussianBlurSize, GaussianBlurSize), 0, 0, gocv.BorderDefault)
}

// Reset drops the baseline so the next frame counts as motion.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropBaseline()
}

// Close releases the baseline frame. The detector stays usable.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropBaseline()
}

func (m *MotionDetector) dropBaseline() {
	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.hasPrev = false
}

// SetThreshold changes the motion threshold. Values <= 0 are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}

// Threshold returns the current motion threshold.
func (m *MotionDetector) Threshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threshold
}
