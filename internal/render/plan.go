package render

import (
	"math"

	"github.com/ZacxDev/video-editor/internal/session"
)

// Fallback frame size when the source dimensions are unknown.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

// Size is a frame size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Size) Swapped() Size { return Size{Width: s.Height, Height: s.Width} }

// Even rounds both sides down to even numbers, as yuv420p requires.
func (s Size) Even() Size {
	return Size{Width: s.Width - s.Width%2, Height: s.Height - s.Height%2}
}

// Matrix is a 2D affine transform in y-down canvas coordinates:
//
//	x' = A*x + C*y + E
//	y' = B*x + D*y + F
type Matrix struct {
	A, B, C, D, E, F float64
}

func Identity() Matrix { return Matrix{A: 1, D: 1} }

func Translate(tx, ty float64) Matrix { return Matrix{A: 1, D: 1, E: tx, F: ty} }

func Scale(sx, sy float64) Matrix { return Matrix{A: sx, D: sy} }

// Rotate turns clockwise on screen by deg degrees. Quarter turns are exact.
func Rotate(deg float64) Matrix {
	var sin, cos float64
	switch math.Mod(math.Mod(deg, 360)+360, 360) {
	case 0:
		sin, cos = 0, 1
	case 90:
		sin, cos = 1, 0
	case 180:
		sin, cos = 0, -1
	case 270:
		sin, cos = -1, 0
	default:
		rad := deg * math.Pi / 180
		sin, cos = math.Sin(rad), math.Cos(rad)
	}
	return Matrix{A: cos, B: sin, C: -sin, D: cos}
}

// Mul returns m·n, the transform that applies n first and then m.
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

// Linear drops the translation.
func (m Matrix) Linear() Matrix {
	return Matrix{A: m.A, B: m.B, C: m.C, D: m.D}
}

func (m Matrix) approxEqual(n Matrix) bool {
	const eps = 1e-9
	return math.Abs(m.A-n.A) < eps && math.Abs(m.B-n.B) < eps &&
		math.Abs(m.C-n.C) < eps && math.Abs(m.D-n.D) < eps &&
		math.Abs(m.E-n.E) < eps && math.Abs(m.F-n.F) < eps
}

// Op is one lossless frame operation, named after its ffmpeg filter.
type Op string

const (
	OpHFlip     Op = "hflip"
	OpVFlip     Op = "vflip"
	OpClockwise Op = "transpose=1"
	OpCounter   Op = "transpose=2"
)

// Plan is the render recipe computed once from the session state at the start
// of an export.
type Plan struct {
	Source       Size
	Canvas       Size
	Draw         Size
	Matrix       Matrix
	Transform    session.Transform
	Filter       string
	Adjustments  []session.Adjustment
	PlaybackRate float64
	Volume       int
	Duration     float64

	// SourceBitrate is the probed input bitrate in bits per second, 0 if unknown.
	SourceBitrate int64
}

// NewPlan builds the plan for state. The canvas is the post-rotation bounding
// box; on odd quarter turns the source is also drawn with swapped sides. The
// matrix is translate(center)·rotate·scale, so rotation comes before the flips
// just like the live transform string.
func NewPlan(state session.RenderState) Plan {
	src := Size{Width: DefaultWidth, Height: DefaultHeight}
	var duration float64
	var bitrate int64
	if state.Media != nil {
		meta := state.Media.Meta
		if meta.Width > 0 && meta.Height > 0 {
			src = Size{Width: meta.Width, Height: meta.Height}
		}
		duration = meta.Duration
		bitrate = meta.Bitrate
	}

	canvas, draw := src, src
	if state.Transform.QuarterTurns()%2 == 1 {
		canvas, draw = src.Swapped(), src.Swapped()
	}

	sx, sy := 1.0, 1.0
	if state.Transform.FlipHorizontal {
		sx = -1
	}
	if state.Transform.FlipVertical {
		sy = -1
	}
	m := Translate(float64(canvas.Width)/2, float64(canvas.Height)/2).
		Mul(Rotate(float64(state.Transform.Rotation))).
		Mul(Scale(sx, sy))

	rate := state.PlaybackRate
	if rate <= 0 {
		rate = 1
	}

	return Plan{
		Source:        src,
		Canvas:        canvas,
		Draw:          draw,
		Matrix:        m,
		Transform:     state.Transform,
		Filter:        state.FilterCSS,
		Adjustments:   state.Adjustments,
		PlaybackRate:  rate,
		Volume:        state.Volume,
		Duration:      duration,
		SourceBitrate: bitrate,
	}
}

// Geometry decomposes the plan's linear part into a horizontal flip followed
// by a quarter turn and returns the equivalent lossless operations, in the
// order they apply to the frame.
func (p Plan) Geometry() []Op {
	turns, flip := decompose(p.Matrix.Linear())
	var ops []Op
	switch {
	case turns == 2 && flip:
		return []Op{OpVFlip}
	case flip:
		ops = append(ops, OpHFlip)
	}
	switch turns {
	case 1:
		ops = append(ops, OpClockwise)
	case 2:
		ops = append(ops, OpHFlip, OpVFlip)
	case 3:
		ops = append(ops, OpCounter)
	}
	return ops
}

// Drawn is the frame size after the draw scale and the geometry ops, before it
// is centered on the canvas.
func (p Plan) Drawn() Size {
	if p.Transform.QuarterTurns()%2 == 1 {
		return p.Draw.Swapped()
	}
	return p.Draw
}

// decompose finds k and f with linear = R(90k)·(f ? Sx : I), where Sx mirrors
// the x axis. Every product of quarter turns and axis flips has exactly one
// such form.
func decompose(linear Matrix) (turns int, flip bool) {
	for k := 0; k < 4; k++ {
		r := Rotate(float64(k * 90))
		if r.approxEqual(linear) {
			return k, false
		}
		if r.Mul(Scale(-1, 1)).approxEqual(linear) {
			return k, true
		}
	}
	return 0, false
}
