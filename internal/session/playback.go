package session

import (
	"math"
	"sort"

	"github.com/ZacxDev/video-editor/internal/config"
	"github.com/ZacxDev/video-editor/internal/media"
)

// Playback is the transport state of the loaded clip. Positions are seconds.
type Playback struct {
	Playing    bool    `json:"playing"`
	Position   float64 `json:"position"`
	Duration   float64 `json:"duration"`
	Fullscreen bool    `json:"fullscreen"`
}

func (s *Session) Playback() Playback { return s.playback }

// Exporting reports whether an export holds the session.
func (s *Session) Exporting() bool { return s.exporting }

func (s *Session) requireTransport() error {
	if err := s.requireMedia(); err != nil {
		return err
	}
	if s.exporting {
		return NewError(KindExportInProgress, "Playback is locked while the export runs")
	}
	return nil
}

// TogglePlay starts or pauses playback and reports whether it is now playing.
func (s *Session) TogglePlay() (bool, error) {
	if err := s.requireTransport(); err != nil {
		return false, err
	}
	s.playback.Playing = !s.playback.Playing
	return s.playback.Playing, nil
}

// Stop pauses and rewinds to the start.
func (s *Session) Stop() error {
	if err := s.requireTransport(); err != nil {
		return err
	}
	s.playback.Playing = false
	s.playback.Position = 0
	return nil
}

// Seek moves the position by delta seconds, clamped to the clip.
func (s *Session) Seek(delta float64) (float64, error) {
	if err := s.requireTransport(); err != nil {
		return 0, err
	}
	s.playback.Position = clamp(s.playback.Position+delta, 0, s.playback.Duration)
	return s.playback.Position, nil
}

// SeekTo moves to an absolute position, clamped to the clip.
func (s *Session) SeekTo(t float64) (float64, error) {
	if err := s.requireTransport(); err != nil {
		return 0, err
	}
	s.playback.Position = clamp(t, 0, s.playback.Duration)
	return s.playback.Position, nil
}

func (s *Session) ToggleFullscreen() (bool, error) {
	if err := s.requireTransport(); err != nil {
		return false, err
	}
	s.playback.Fullscreen = !s.playback.Fullscreen
	return s.playback.Fullscreen, nil
}

// SeekStepSeconds is the arrow-key seek distance.
var SeekStepSeconds = config.SeekStep.Seconds()

// RenderState is everything an export reads from the session, captured once.
type RenderState struct {
	Media        *media.Handle
	Adjustments  []Adjustment
	FilterCSS    string
	Transform    Transform
	PlaybackRate float64
	Volume       int
	SplitPoints  []float64
}

// BeginExport locks playback, remembers the position, rewinds and returns the
// state to render.
func (s *Session) BeginExport() (RenderState, error) {
	if err := s.requireMedia(); err != nil {
		return RenderState{}, err
	}
	if s.exporting {
		return RenderState{}, NewError(KindExportInProgress, "An export is already running")
	}
	s.exporting = true
	s.savedPosition = s.playback.Position
	s.playback.Position = 0
	s.playback.Playing = false
	return RenderState{
		Media:        s.media,
		Adjustments:  s.Adjustments(),
		FilterCSS:    s.FilterCSS(),
		Transform:    s.transform,
		PlaybackRate: s.rate,
		Volume:       s.volume,
		SplitPoints:  s.SplitPoints(),
	}, nil
}

// EndExport unlocks playback and restores the remembered position.
func (s *Session) EndExport() {
	if !s.exporting {
		return
	}
	s.exporting = false
	s.playback.Position = s.savedPosition
}

// SplitInfo summarizes the split points.
type SplitInfo struct {
	Segments    int       `json:"segments"`
	SplitPoints []float64 `json:"splitPoints"`
}

func (s *Session) SplitPoints() []float64 {
	out := make([]float64, len(s.splits))
	copy(out, s.splits)
	return out
}

// SplitAt adds a split point strictly inside the clip.
func (s *Session) SplitAt(t float64) error {
	if err := s.requireMedia(); err != nil {
		return err
	}
	if t <= 0 || t >= s.playback.Duration {
		return NewError(KindOutOfRange, "Cannot split at the start or end of the video")
	}
	t = math.Round(t*1000) / 1000
	i := sort.SearchFloat64s(s.splits, t)
	if i < len(s.splits) && s.splits[i] == t {
		return NewError(KindDuplicateSplit, "A split already exists at this position")
	}
	s.splits = append(s.splits, 0)
	copy(s.splits[i+1:], s.splits[i:])
	s.splits[i] = t
	return nil
}

// SplitAtCurrent adds a split point at the playback position.
func (s *Session) SplitAtCurrent() (float64, error) {
	t := s.playback.Position
	if err := s.SplitAt(t); err != nil {
		return t, err
	}
	return t, nil
}

// SplitInfo reports the resulting segment count and the sorted points.
func (s *Session) SplitInfo() (SplitInfo, error) {
	if err := s.requireMedia(); err != nil {
		return SplitInfo{}, err
	}
	return SplitInfo{Segments: len(s.splits) + 1, SplitPoints: s.SplitPoints()}, nil
}

// ClearSplits removes every split point.
func (s *Session) ClearSplits() {
	s.splits = nil
}
