package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu       sync.Mutex
	hands    []HandLandmarks
	sequence [][]HandLandmarks
	err      error
	calls    int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetSequence queues per-call results. Each Detect call consumes one entry;
// once the queue is empty Detect falls back to the hands set by SetHands.
func (m *MockDetector) SetSequence(seq [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = seq
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) > 0 {
		next := m.sequence[0]
		m.sequence = m.sequence[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Finger layout used by PoseLandmarks: base X per finger and the Y values of
// each joint for extended and folded fingers.
var (
	fingerBaseX = [4]float64{0.45, 0.50, 0.55, 0.60}
	extendedY   = [4]float64{0.65, 0.55, 0.48, 0.40} // MCP, PIP, DIP, TIP
	foldedY     = [4]float64{0.65, 0.60, 0.66, 0.68}
)

// PoseLandmarks returns a complete right hand, as seen in a mirrored frame,
// whose fingers are extended or folded as requested. Thumb extension places
// the tip outward (larger X) of the IP joint; finger extension places the
// tip above (smaller Y) the PIP joint.
func PoseLandmarks(thumb, index, middle, ring, pinky bool) HandLandmarks {
	hand := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
		Points:     make([]Point3D, NumLandmarks),
	}

	hand.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}

	hand.Points[ThumbCMC] = Point3D{X: 0.45, Y: 0.75}
	hand.Points[ThumbMCP] = Point3D{X: 0.42, Y: 0.70}
	hand.Points[ThumbIP] = Point3D{X: 0.40, Y: 0.65}
	if thumb {
		hand.Points[ThumbTip] = Point3D{X: 0.46, Y: 0.60}
	} else {
		hand.Points[ThumbTip] = Point3D{X: 0.36, Y: 0.62}
	}

	extended := [4]bool{index, middle, ring, pinky}
	for f := 0; f < 4; f++ {
		ys := foldedY
		if extended[f] {
			ys = extendedY
		}
		base := IndexMCP + f*4
		for j := 0; j < 4; j++ {
			hand.Points[base+j] = Point3D{X: fingerBaseX[f], Y: ys[j]}
		}
	}

	return hand
}

// PinchLandmarks returns a complete hand whose index fingertip sits at
// (tipX, tipY). When closed, the thumb tip touches the index MCP joint;
// otherwise the two are held well apart.
func PinchLandmarks(tipX, tipY float64, closed bool) HandLandmarks {
	hand := PoseLandmarks(false, true, false, false, false)

	mcp := Point3D{X: tipX, Y: tipY + 0.15}
	hand.Points[IndexMCP] = mcp
	hand.Points[IndexPIP] = Point3D{X: tipX, Y: tipY + 0.10}
	hand.Points[IndexDIP] = Point3D{X: tipX, Y: tipY + 0.05}
	hand.Points[IndexTip] = Point3D{X: tipX, Y: tipY}

	if closed {
		hand.Points[ThumbTip] = Point3D{X: mcp.X + 0.01, Y: mcp.Y + 0.01}
	} else {
		hand.Points[ThumbTip] = Point3D{X: mcp.X + 0.15, Y: mcp.Y}
	}

	return hand
}

// PartialLandmarks returns a hand with only the first n landmarks.
func PartialLandmarks(n int) HandLandmarks {
	hand := PoseLandmarks(false, false, false, false, false)
	if n < len(hand.Points) {
		hand.Points = hand.Points[:n]
	}
	return hand
}
