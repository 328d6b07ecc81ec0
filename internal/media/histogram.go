package media

import (
	"context"

	"github.com/pkg/errors"
)

// Frames are sampled at this size before counting, which keeps the cost
// independent of the clip resolution.
const (
	HistogramWidth  = 160
	HistogramHeight = 90
)

// FrameSource extracts one frame as packed rgb24 pixels scaled to
// width x height.
type FrameSource interface {
	Frame(ctx context.Context, path string, at float64, width, height int) ([]byte, error)
}

// Histogram counts how many sampled pixels fall in each of the 256 levels of
// every RGB channel.
type Histogram struct {
	Position float64  `json:"position"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Red      [256]int `json:"red"`
	Green    [256]int `json:"green"`
	Blue     [256]int `json:"blue"`
}

// NewHistogram counts rgb24 pixels. rgb must hold exactly width*height pixels.
func NewHistogram(rgb []byte, width, height int) (*Histogram, error) {
	if want := width * height * 3; len(rgb) != want {
		return nil, errors.Errorf("frame has %d bytes, want %d for %dx%d rgb24", len(rgb), want, width, height)
	}
	h := &Histogram{Width: width, Height: height}
	for i := 0; i < len(rgb); i += 3 {
		h.Red[rgb[i]]++
		h.Green[rgb[i+1]]++
		h.Blue[rgb[i+2]]++
	}
	return h, nil
}

// Peak returns the highest bin across the three channels.
func (h *Histogram) Peak() int {
	peak := 0
	for i := 0; i < 256; i++ {
		peak = max(peak, h.Red[i], h.Green[i], h.Blue[i])
	}
	return peak
}

// Mean returns the average level of each channel.
func (h *Histogram) Mean() (r, g, b float64) {
	var sr, sg, sb, n int
	for i := 0; i < 256; i++ {
		sr += i * h.Red[i]
		sg += i * h.Green[i]
		sb += i * h.Blue[i]
		n += h.Red[i]
	}
	if n == 0 {
		return 0, 0, 0
	}
	return float64(sr) / float64(n), float64(sg) / float64(n), float64(sb) / float64(n)
}
