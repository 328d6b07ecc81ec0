package render

import (
	"testing"

	"github.com/ZacxDev/video-editor/internal/media"
	"github.com/ZacxDev/video-editor/internal/session"
	"github.com/stretchr/testify/assert"
)

func stateFor(w, h int, tr session.Transform) session.RenderState {
	return session.RenderState{
		Media:        media.NewHandle("/tmp/clip.mp4", media.Metadata{Width: w, Height: h, Duration: 10}),
		Transform:    tr,
		PlaybackRate: 1,
		Volume:       100,
	}
}

func TestRotateThenFlipDiffersFromFlipThenRotate(t *testing.T) {
	rotateThenFlip := Rotate(90).Mul(Scale(-1, 1))
	flipThenRotate := Scale(-1, 1).Mul(Rotate(90))
	assert.False(t, rotateThenFlip.approxEqual(flipThenRotate))
}

func TestNewPlan_ComposesRotationBeforeFlip(t *testing.T) {
	p := NewPlan(stateFor(1280, 720, session.Transform{Rotation: 90, FlipHorizontal: true}))

	want := Translate(360, 640).Mul(Rotate(90)).Mul(Scale(-1, 1))
	assert.True(t, p.Matrix.approxEqual(want))
	assert.False(t, p.Matrix.approxEqual(Translate(360, 640).Mul(Scale(-1, 1)).Mul(Rotate(90))))

	// Top-left of the draw rect: mirrored to (360,-640), turned to (640,360),
	// then moved to the canvas center.
	x, y := p.Matrix.Apply(-float64(p.Draw.Width)/2, -float64(p.Draw.Height)/2)
	assert.InDelta(t, 1000, x, 1e-9)
	assert.InDelta(t, 1000, y, 1e-9)
}

func TestNewPlan_Sizes(t *testing.T) {
	tests := []struct {
		name       string
		rotation   int
		wantCanvas Size
		wantDraw   Size
	}{
		{"none", 0, Size{1280, 720}, Size{1280, 720}},
		{"quarter", 90, Size{720, 1280}, Size{720, 1280}},
		{"half", 180, Size{1280, 720}, Size{1280, 720}},
		{"three quarters", 270, Size{720, 1280}, Size{720, 1280}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlan(stateFor(1280, 720, session.Transform{Rotation: tt.rotation}))
			assert.Equal(t, tt.wantCanvas, p.Canvas)
			assert.Equal(t, tt.wantDraw, p.Draw)
		})
	}
}

func TestNewPlan_UnknownSizeDefaults(t *testing.T) {
	p := NewPlan(stateFor(0, 0, session.Transform{}))
	assert.Equal(t, Size{DefaultWidth, DefaultHeight}, p.Source)
	assert.Equal(t, 1.0, p.PlaybackRate)
}

func TestGeometry(t *testing.T) {
	tests := []struct {
		name string
		tr   session.Transform
		want []Op
	}{
		{"identity", session.Transform{}, nil},
		{"flip h", session.Transform{FlipHorizontal: true}, []Op{OpHFlip}},
		{"flip v", session.Transform{FlipVertical: true}, []Op{OpVFlip}},
		{"both flips", session.Transform{FlipHorizontal: true, FlipVertical: true}, []Op{OpHFlip, OpVFlip}},
		{"rotate 90", session.Transform{Rotation: 90}, []Op{OpClockwise}},
		{"rotate 180", session.Transform{Rotation: 180}, []Op{OpHFlip, OpVFlip}},
		{"rotate 270", session.Transform{Rotation: 270}, []Op{OpCounter}},
		{"rotate 90 flip h", session.Transform{Rotation: 90, FlipHorizontal: true}, []Op{OpHFlip, OpClockwise}},
		{"rotate 90 flip v", session.Transform{Rotation: 90, FlipVertical: true}, []Op{OpHFlip, OpCounter}},
		{"rotate 180 flip h", session.Transform{Rotation: 180, FlipHorizontal: true}, []Op{OpVFlip}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlan(stateFor(640, 480, tt.tr))
			assert.Equal(t, tt.want, p.Geometry())
		})
	}
}

func TestDrawn(t *testing.T) {
	p := NewPlan(stateFor(1280, 720, session.Transform{Rotation: 90}))
	assert.Equal(t, Size{1280, 720}, p.Drawn())
	assert.Equal(t, Size{720, 1280}, p.Canvas)
}
