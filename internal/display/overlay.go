package display

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var (
	boneColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	jointColor = color.RGBA{R: 0, G: 200, B: 255, A: 255}
	textColor  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	alertColor = color.RGBA{R: 255, G: 64, B: 64, A: 255}
)

// handBones lists the landmark pairs drawn as the hand skeleton.
var handBones = [][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 4},
	{0, 5}, {5, 6}, {6, 7}, {7, 8},
	{5, 9}, {9, 10}, {10, 11}, {11, 12},
	{9, 13}, {13, 14}, {14, 15}, {15, 16},
	{13, 17}, {0, 17}, {17, 18}, {18, 19}, {19, 20},
}

// DrawHand draws the skeleton for a complete set of pixel landmarks.
// Incomplete sets are skipped.
func DrawHand(frame *gocv.Mat, points []image.Point) {
	if len(points) != 21 {
		return
	}
	for _, b := range handBones {
		gocv.Line(frame, points[b[0]], points[b[1]], boneColor, 2)
	}
	for _, p := range points {
		gocv.Circle(frame, p, 4, jointColor, -1)
	}
}

// DrawText writes lines top-left, one per row.
func DrawText(frame *gocv.Mat, lines ...string) {
	for i, line := range lines {
		pt := image.Pt(10, 30+i*30)
		gocv.PutText(frame, line, pt, gocv.FontHersheySimplex, 0.8, textColor, 2)
	}
}

// DrawAlert writes a single line in the alert colour at the bottom.
func DrawAlert(frame *gocv.Mat, text string) {
	pt := image.Pt(10, frame.Rows()-20)
	gocv.PutText(frame, text, pt, gocv.FontHersheySimplex, 0.8, alertColor, 2)
}

// DrawCursor marks the draw point, filled while the pinch is closed.
func DrawCursor(frame *gocv.Mat, p image.Point, touching bool, c color.RGBA) {
	thickness := 2
	if touching {
		thickness = -1
	}
	gocv.Circle(frame, p, 8, c, thickness)
}

// Composite copies every non-black canvas pixel onto frame. Both must have
// the same size and type.
func Composite(frame *gocv.Mat, canvas gocv.Mat) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(canvas, &gray, gocv.ColorBGRToGray)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(gray, &mask, 0, 255, gocv.ThresholdBinary)

	canvas.CopyToWithMask(frame, mask)
}
