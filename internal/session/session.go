package session

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/ZacxDev/video-editor/internal/config"
	"github.com/ZacxDev/video-editor/internal/media"
	"github.com/ZacxDev/video-editor/pkg/types"
)

// Options configures a Session. Zero values select the defaults.
type Options struct {
	Tuning          *config.Tuning
	HistoryCapacity int
	Rand            *rand.Rand
	Now             func() time.Time
}

// Session is the editing state of one clip. It is not safe for concurrent
// use; the editor facade serializes access.
type Session struct {
	tuning  *config.Tuning
	rng     *rand.Rand
	now     func() time.Time
	history *History

	media       *media.Handle
	adjustments []Adjustment
	transform   Transform
	rate        float64
	volume      int
	playback    Playback
	splits      []float64

	previewing  bool
	previewBase []Adjustment

	exporting     bool
	savedPosition float64
}

// New creates a session with no clip loaded.
func New(opts Options) *Session {
	if opts.Tuning == nil {
		opts.Tuning = config.DefaultTuning()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		tuning:  opts.Tuning,
		rng:     opts.Rand,
		now:     opts.Now,
		history: NewHistory(opts.HistoryCapacity),
		rate:    1,
		volume:  config.DefaultVolume,
	}
}

// Load replaces the active clip wholesale and resets every edit. The history
// restarts with the clean state as its only entry. The previous handle is
// returned so the caller can release it.
func (s *Session) Load(h *media.Handle) *media.Handle {
	previous := s.media
	s.media = h
	s.adjustments = nil
	s.transform = Transform{}
	s.rate = 1
	s.volume = config.DefaultVolume
	s.playback = Playback{Duration: h.Meta.Duration}
	s.splits = nil
	s.previewing = false
	s.previewBase = nil
	s.history.Reset()
	s.commit()
	return previous
}

// Unload drops the active clip and returns it for release.
func (s *Session) Unload() *media.Handle {
	previous := s.media
	s.media = nil
	s.adjustments = nil
	s.transform = Transform{}
	s.splits = nil
	s.playback = Playback{}
	s.previewing = false
	s.previewBase = nil
	s.history.Reset()
	return previous
}

func (s *Session) Media() *media.Handle      { return s.media }
func (s *Session) HasMedia() bool            { return s.media != nil }
func (s *Session) Tuning() *config.Tuning    { return s.tuning }
func (s *Session) Transform() Transform      { return s.transform }
func (s *Session) PlaybackRate() float64     { return s.rate }
func (s *Session) Volume() int               { return s.volume }
func (s *Session) Adjustments() []Adjustment { return copyAdjustments(s.adjustments) }
func (s *Session) CanUndo() bool             { return s.history.CanUndo() }
func (s *Session) CanRedo() bool             { return s.history.CanRedo() }
func (s *Session) HistoryLen() int           { return s.history.Len() }
func (s *Session) Previewing() bool          { return s.previewing }

// Adjustment returns the active adjustment of kind k.
func (s *Session) Adjustment(k types.AdjustmentKind) (Adjustment, bool) {
	if i := s.indexOf(k); i >= 0 {
		return s.adjustments[i], true
	}
	return Adjustment{}, false
}

// FilterCSS is the live filter string: active effects in insertion order.
func (s *Session) FilterCSS() string {
	effects := make([]string, len(s.adjustments))
	for i, a := range s.adjustments {
		effects[i] = a.Effect
	}
	return strings.Join(effects, " ")
}

// TransformCSS is the live transform string.
func (s *Session) TransformCSS() string {
	return s.transform.CSS()
}

func (s *Session) requireMedia() error {
	if s.media == nil {
		return NewError(KindNoMediaLoaded, "No video loaded")
	}
	return nil
}

func (s *Session) commit() {
	s.previewing = false
	s.previewBase = nil
	s.history.Push(Entry{
		Adjustments: s.adjustments,
		Transform:   s.transform,
		Timestamp:   s.now(),
	})
}

func (s *Session) restore(e Entry) {
	s.previewing = false
	s.previewBase = nil
	s.adjustments = e.Adjustments
	s.transform = e.Transform
}

func (s *Session) indexOf(k types.AdjustmentKind) int {
	for i, a := range s.adjustments {
		if a.Kind == k {
			return i
		}
	}
	return -1
}

func (s *Session) resolve(name string) (config.KindSpec, error) {
	k, ok := ResolveKind(name)
	if !ok {
		return config.KindSpec{}, NewError(KindAdjustmentUnknown, "Unknown filter: %s", name)
	}
	spec, ok := s.tuning.Kind(k)
	if !ok {
		return config.KindSpec{}, NewError(KindAdjustmentUnknown, "Unknown filter: %s", name)
	}
	return spec, nil
}

// set inserts or updates an adjustment in place without committing.
func (s *Session) set(spec config.KindSpec, value float64) Adjustment {
	a := Adjustment{Kind: spec.Kind, Value: value, Effect: FormatEffect(spec, value)}
	if i := s.indexOf(spec.Kind); i >= 0 {
		s.adjustments[i] = a
	} else {
		s.adjustments = append(s.adjustments, a)
	}
	return a
}

func (s *Session) validated(name string, value float64) (config.KindSpec, error) {
	spec, err := s.resolve(name)
	if err != nil {
		return spec, err
	}
	if value < spec.Min || value > spec.Max {
		return spec, NewError(KindOutOfRange, "%s must be between %s and %s",
			spec.Label, FormatNumber(spec.Min), FormatNumber(spec.Max))
	}
	return spec, nil
}

// ApplyAdjustment sets kind name (or one of its aliases) to value and commits.
func (s *Session) ApplyAdjustment(name string, value float64) (Adjustment, error) {
	if err := s.requireMedia(); err != nil {
		return Adjustment{}, err
	}
	spec, err := s.validated(name, value)
	if err != nil {
		return Adjustment{}, err
	}
	a := s.set(spec, value)
	s.commit()
	return a, nil
}

// ApplyDefaultAdjustment applies kind name at its default value.
func (s *Session) ApplyDefaultAdjustment(name string) (Adjustment, error) {
	if err := s.requireMedia(); err != nil {
		return Adjustment{}, err
	}
	spec, err := s.resolve(name)
	if err != nil {
		return Adjustment{}, err
	}
	a := s.set(spec, spec.Default)
	s.commit()
	return a, nil
}

// RemoveAdjustment deletes an active adjustment and commits.
func (s *Session) RemoveAdjustment(name string) (Adjustment, error) {
	if err := s.requireMedia(); err != nil {
		return Adjustment{}, err
	}
	spec, err := s.resolve(name)
	if err != nil {
		return Adjustment{}, err
	}
	i := s.indexOf(spec.Kind)
	if i < 0 {
		return Adjustment{}, NewError(KindAdjustmentNotApplied, "The %s filter is not applied", strings.ToLower(spec.Label))
	}
	removed := s.adjustments[i]
	s.adjustments = append(s.adjustments[:i:i], s.adjustments[i+1:]...)
	s.commit()
	return removed, nil
}

// ClearAdjustments removes every adjustment and commits.
func (s *Session) ClearAdjustments() error {
	if err := s.requireMedia(); err != nil {
		return err
	}
	s.adjustments = nil
	s.commit()
	return nil
}

// ApplyPreset replaces the active adjustments with a preset's values in one
// commit.
func (s *Session) ApplyPreset(name string) (config.PresetSpec, error) {
	if err := s.requireMedia(); err != nil {
		return config.PresetSpec{}, err
	}
	preset, ok := s.tuning.Preset(name)
	if !ok {
		return config.PresetSpec{}, NewError(KindPresetNotFound, "Unknown preset: %s. Available: %s",
			name, strings.Join(s.tuning.PresetNames(), ", "))
	}
	s.adjustments = nil
	for _, step := range preset.Steps {
		spec, ok := s.tuning.Kind(step.Kind)
		if !ok {
			continue
		}
		s.set(spec, step.Value)
	}
	s.commit()
	return preset, nil
}

// ApplyAdjustments replaces the active set with the given values in one
// commit. Values are validated before anything changes.
func (s *Session) ApplyAdjustments(values []config.PresetStep) ([]Adjustment, error) {
	if err := s.requireMedia(); err != nil {
		return nil, err
	}
	specs := make([]config.KindSpec, len(values))
	for i, v := range values {
		spec, err := s.validated(string(v.Kind), v.Value)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
	}
	s.adjustments = nil
	for i, v := range values {
		s.set(specs[i], v.Value)
	}
	s.commit()
	return s.Adjustments(), nil
}

// SetRotation sets an absolute rotation of 90, 180, 270 or 360 (stored as 0).
func (s *Session) SetRotation(deg int) error {
	if err := s.requireMedia(); err != nil {
		return err
	}
	switch deg {
	case 90, 180, 270, 360:
	default:
		return NewError(KindInvalidRotation, "Rotation must be 90, 180, 270 or 360 degrees")
	}
	s.transform.Rotation = normalizeRotation(deg)
	s.commit()
	return nil
}

// RotateBy adds delta degrees to the current rotation. delta must be a
// multiple of 90.
func (s *Session) RotateBy(delta int) (int, error) {
	if err := s.requireMedia(); err != nil {
		return 0, err
	}
	if delta%90 != 0 {
		return s.transform.Rotation, NewError(KindInvalidRotation, "Rotation must be a multiple of 90 degrees")
	}
	s.transform.Rotation = normalizeRotation(s.transform.Rotation + delta)
	s.commit()
	return s.transform.Rotation, nil
}

// ParseAxis accepts horizontal, vertical and their h/v shorthands.
func ParseAxis(axis string) (types.Axis, error) {
	switch strings.ToLower(strings.TrimSpace(axis)) {
	case "horizontal", "h":
		return types.AxisHorizontal, nil
	case "vertical", "v":
		return types.AxisVertical, nil
	default:
		return "", NewError(KindInvalidAxis, "Invalid axis %q: use horizontal or vertical", axis)
	}
}

// ToggleFlip flips the frame along axis and reports the new flip state.
func (s *Session) ToggleFlip(axis string) (bool, error) {
	if err := s.requireMedia(); err != nil {
		return false, err
	}
	a, err := ParseAxis(axis)
	if err != nil {
		return false, err
	}
	var state bool
	if a == types.AxisHorizontal {
		s.transform.FlipHorizontal = !s.transform.FlipHorizontal
		state = s.transform.FlipHorizontal
	} else {
		s.transform.FlipVertical = !s.transform.FlipVertical
		state = s.transform.FlipVertical
	}
	s.commit()
	return state, nil
}

// SetPlaybackRate sets the speed factor, rounded to the nearest 0.25.
func (s *Session) SetPlaybackRate(rate float64) (float64, error) {
	if err := s.requireMedia(); err != nil {
		return 0, err
	}
	if rate < config.MinPlaybackRate || rate > config.MaxPlaybackRate {
		return s.rate, NewError(KindOutOfRange, "Speed must be between %sx and %sx",
			FormatNumber(config.MinPlaybackRate), FormatNumber(config.MaxPlaybackRate))
	}
	s.rate = clamp(roundToStep(rate, config.PlaybackRateStep), config.MinPlaybackRate, config.MaxPlaybackRate)
	return s.rate, nil
}

// SetVolume sets the output volume in percent.
func (s *Session) SetVolume(percent int) error {
	if err := s.requireMedia(); err != nil {
		return err
	}
	if percent < config.MinVolume || percent > config.MaxVolume {
		return NewError(KindOutOfRange, "Volume must be between %d and %d", config.MinVolume, config.MaxVolume)
	}
	s.volume = percent
	return nil
}

// AdjustVolume moves the volume by delta percent, clamped to the valid range.
func (s *Session) AdjustVolume(delta int) (int, error) {
	if err := s.requireMedia(); err != nil {
		return 0, err
	}
	s.volume = clamp(s.volume+delta, config.MinVolume, config.MaxVolume)
	return s.volume, nil
}

// Undo restores the previous snapshot. It reports false at the oldest entry.
func (s *Session) Undo() (bool, error) {
	if err := s.requireMedia(); err != nil {
		return false, err
	}
	e, ok := s.history.Undo()
	if ok {
		s.restore(e)
	}
	return ok, nil
}

// Redo re-applies the next snapshot. It reports false at the newest entry.
func (s *Session) Redo() (bool, error) {
	if err := s.requireMedia(); err != nil {
		return false, err
	}
	e, ok := s.history.Redo()
	if ok {
		s.restore(e)
	}
	return ok, nil
}

// PreviewAdjustment updates the live state without touching history, as a
// slider does while it is being dragged.
func (s *Session) PreviewAdjustment(name string, value float64) (Adjustment, error) {
	if err := s.requireMedia(); err != nil {
		return Adjustment{}, err
	}
	spec, err := s.validated(name, value)
	if err != nil {
		return Adjustment{}, err
	}
	if !s.previewing {
		s.previewing = true
		s.previewBase = copyAdjustments(s.adjustments)
	}
	return s.set(spec, value), nil
}

// CommitPreview records the previewed state as one history entry. It reports
// false when no preview is active.
func (s *Session) CommitPreview() (bool, error) {
	if err := s.requireMedia(); err != nil {
		return false, err
	}
	if !s.previewing {
		return false, nil
	}
	s.commit()
	return true, nil
}

// CancelPreview restores the adjustments from before the preview began.
func (s *Session) CancelPreview() error {
	if err := s.requireMedia(); err != nil {
		return err
	}
	if !s.previewing {
		return nil
	}
	s.adjustments = s.previewBase
	s.previewing = false
	s.previewBase = nil
	return nil
}
