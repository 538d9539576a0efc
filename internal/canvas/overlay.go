package canvas

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/skywrite/internal/detector"
)

// handConnections are the bone pairs of the MediaPipe hand model.
var handConnections = [][2]int{
	{detector.Wrist, detector.ThumbCMC}, {detector.ThumbCMC, detector.ThumbMCP},
	{detector.ThumbMCP, detector.ThumbIP}, {detector.ThumbIP, detector.ThumbTip},
	{detector.Wrist, detector.IndexMCP}, {detector.IndexMCP, detector.IndexPIP},
	{detector.IndexPIP, detector.IndexDIP}, {detector.IndexDIP, detector.IndexTip},
	{detector.IndexMCP, detector.MiddleMCP}, {detector.MiddleMCP, detector.MiddlePIP},
	{detector.MiddlePIP, detector.MiddleDIP}, {detector.MiddleDIP, detector.MiddleTip},
	{detector.MiddleMCP, detector.RingMCP}, {detector.RingMCP, detector.RingPIP},
	{detector.RingPIP, detector.RingDIP}, {detector.RingDIP, detector.RingTip},
	{detector.RingMCP, detector.PinkyMCP}, {detector.Wrist, detector.PinkyMCP},
	{detector.PinkyMCP, detector.PinkyPIP}, {detector.PinkyPIP, detector.PinkyDIP},
	{detector.PinkyDIP, detector.PinkyTip},
}

var (
	boneColor  = color.RGBA{R: 0, G: 200, B: 0, A: 255}
	jointColor = color.RGBA{R: 220, G: 0, B: 0, A: 255}
	labelColor = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// DrawSkeleton draws the hand's bones and joints onto a display frame.
func DrawSkeleton(frame *gocv.Mat, hand *detector.HandLandmarks) {
	if frame == nil || frame.Empty() || hand == nil {
		return
	}
	w, h := frame.Cols(), frame.Rows()
	px := func(i int) image.Point {
		p := hand.Points[i]
		return image.Point{X: int(p.X * float64(w)), Y: int(p.Y * float64(h))}
	}

	for _, bone := range handConnections {
		gocv.Line(frame, px(bone[0]), px(bone[1]), boneColor, 2)
	}
	for i := 0; i < detector.NumLandmarks; i++ {
		gocv.Circle(frame, px(i), 3, jointColor, -1)
	}
}

// DrawLabel writes a status line near the bottom-left corner of a display frame.
func DrawLabel(frame *gocv.Mat, text string) {
	if frame == nil || frame.Empty() || text == "" {
		return
	}
	origin := image.Point{X: 20, Y: frame.Rows() - 30}
	gocv.PutText(frame, text, origin, gocv.FontHersheySimplex, 0.7, labelColor, 2)
}
