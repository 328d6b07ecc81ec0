package session

import (
	"math"

	"github.com/ZacxDev/video-editor/internal/config"
	"github.com/ZacxDev/video-editor/internal/media"
)

// Impact grades how much the current edits grow the output.
type Impact string

const (
	ImpactNormal      Impact = "normal"
	ImpactModerate    Impact = "moderate"
	ImpactSignificant Impact = "significant"
)

// Analysis is the clip's metadata plus estimates for the edited output.
type Analysis struct {
	Metadata         media.Metadata `json:"metadata"`
	Filters          int            `json:"filters"`
	Transformed      bool           `json:"transformed"`
	PlaybackRate     float64        `json:"playbackRate"`
	EffectiveFPS     int            `json:"effectiveFps"`
	SizeMultiplier   float64        `json:"sizeMultiplier"`
	EstimatedSize    int64          `json:"estimatedSize"`
	EstimatedBitrate int64          `json:"estimatedBitrateKbps"`
	Impact           Impact         `json:"impact"`
}

// Analyze estimates the effect of the current edits on the exported file.
func (s *Session) Analyze() (Analysis, error) {
	if err := s.requireMedia(); err != nil {
		return Analysis{}, err
	}

	meta := s.media.Meta
	a := Analysis{
		Metadata:     meta,
		Filters:      len(s.adjustments),
		Transformed:  !s.transform.IsIdentity(),
		PlaybackRate: s.rate,
		EffectiveFPS: int(math.Round(config.BaseFrameRate * s.rate)),
	}

	m := 1.0
	m += float64(a.Filters) * config.FilterSizeFactor
	if a.Transformed {
		m += config.TransformSizeFactor
	}
	if s.rate != 1 {
		m += math.Abs(s.rate-1) * config.SpeedSizeFactor
	}
	a.SizeMultiplier = math.Round(m*1000) / 1000
	a.EstimatedSize = int64(math.Round(float64(meta.Size) * m))
	if meta.Duration > 0 {
		a.EstimatedBitrate = int64(math.Round(float64(a.EstimatedSize) * 8 / (meta.Duration * 1000)))
	}

	switch {
	case m > 1.1:
		a.Impact = ImpactSignificant
	case m > 1.05:
		a.Impact = ImpactModerate
	default:
		a.Impact = ImpactNormal
	}
	return a, nil
}
