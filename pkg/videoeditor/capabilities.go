package videoeditor

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ZacxDev/video-editor/internal/assistant"
	"github.com/ZacxDev/video-editor/internal/config"
	"github.com/ZacxDev/video-editor/internal/media"
	"github.com/ZacxDev/video-editor/internal/session"
	"github.com/ZacxDev/video-editor/pkg/types"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// The methods in this file form the capability surface shared by the chat
// assistant, the shortcut keys and the HTTP API. They never return errors:
// failures come back as unsuccessful Results.

func (e *Editor) HasVideo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.HasMedia()
}

// ApplyFilter applies kind name at value, or at the kind's default when
// value is nil.
func (e *Editor) ApplyFilter(name string, value *float64) assistant.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	var (
		a   session.Adjustment
		err error
	)
	if value == nil {
		a, err = e.session.ApplyDefaultAdjustment(name)
	} else {
		a, err = e.session.ApplyAdjustment(name, *value)
	}
	if err != nil {
		return assistant.Fail(err)
	}
	return assistant.OK(
		fmt.Sprintf("%s filter applied with value %s", e.label(a.Kind), session.FormatNumber(a.Value)),
		map[string]interface{}{"kind": a.Kind, "value": a.Value, "effect": a.Effect, "filter": e.session.FilterCSS()},
	)
}

func (e *Editor) RemoveFilter(name string) assistant.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, err := e.session.RemoveAdjustment(name)
	if err != nil {
		return assistant.Fail(err)
	}
	return assistant.OK(
		fmt.Sprintf("%s filter removed", e.label(a.Kind)),
		map[string]interface{}{"kind": a.Kind, "filter": e.session.FilterCSS()},
	)
}

func (e *Editor) ClearAllFilters() assistant.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.session.ClearAdjustments(); err != nil {
		return assistant.Fail(err)
	}
	return assistant.OK("All filters removed", nil)
}

// ApplyRandomFilters replaces the filters with count random ones; count <= 0
// picks 1 to 3.
func (e *Editor) ApplyRandomFilters(count int) assistant.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	applied, err := e.session.ApplyRandomAdjustments(count)
	if err != nil {
		return assistant.Fail(err)
	}
	effects := effectsOf(applied)
	return assistant.OK(
		"Random filters applied: "+strings.Join(effects, ", "),
		map[string]interface{}{"count": len(applied), "filters": effects, "filter": e.session.FilterCSS()},
	)
}

func (e *Editor) ApplyFilterCombination(name string) assistant.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.applyPreset(name)
}

func (e *Editor) applyPreset(name string) assistant.Result {
	preset, err := e.session.ApplyPreset(name)
	if err != nil {
		return assistant.Fail(err)
	}
	effects := effectsOf(e.session.Adjustments())
	return assistant.OK(
		fmt.Sprintf("Combination %q applied: %s", preset.Name, strings.Join(effects, ", ")),
		map[string]interface{}{"preset": preset.Name, "filters": effects, "filter": e.session.FilterCSS()},
	)
}

// ApplyRecommendedFilters applies a preset picked at random.
func (e *Editor) ApplyRecommendedFilters() assistant.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.session.HasMedia() {
		return assistant.Fail(session.NewError(session.KindNoMediaLoaded, "No video loaded"))
	}
	names := e.tuning.PresetNames()
	if len(names) == 0 {
		return assistant.Fail(session.NewError(session.KindPresetNotFound, "No presets are configured"))
	}
	return e.applyPreset(names[e.rng.IntN(len(names))])
}

func (e *Editor) ChangeVideoSpeed(rate float64) assistant.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	applied, err := e.session.SetPlaybackRate(rate)
	if err != nil {
		return assistant.Fail(err)
	}
	return assistant.OK(
		fmt.Sprintf("Speed changed to %sx", session.FormatNumber(applied)),
		map[string]interface{}{"rate": applied},
	)
}

func (e *Editor) ChangeVideoVolume(percent int) assistant.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.session.SetVolume(percent); err != nil {
		return assistant.Fail(err)
	}
	return assistant.OK(fmt.Sprintf("Volume set to %d%%", percent), map[string]interface{}{"volume": percent})
}

// RotateVideo sets an absolute rotation of 90, 180, 270 or 360 degrees.
func (e *Editor) RotateVideo(degrees int) assistant.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.session.SetRotation(degrees); err != nil {
		return assistant.Fail(err)
	}
	return assistant.OK(
		fmt.Sprintf("Video rotated %d°", degrees),
		map[string]interface{}{"rotation": e.session.Transform().Rotation, "transform": e.session.TransformCSS()},
	)
}

func (e *Editor) FlipVideo(axis string) assistant.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	on, err := e.session.ToggleFlip(axis)
	if err != nil {
		return assistant.Fail(err)
	}
	a, _ := session.ParseAxis(axis)
	msg := fmt.Sprintf("Video flipped %sly", a)
	if !on {
		msg = fmt.Sprintf("%s flip removed", capitalize(string(a)))
	}
	return assistant.OK(msg, map[string]interface{}{"axis": a, "flipped": on, "transform": e.session.TransformCSS()})
}

// GetAvailableFilters lists the adjustment kinds and presets. It works
// without a loaded video.
func (e *Editor) GetAvailableFilters() assistant.Result {
	kinds := make([]string, 0, len(types.AdjustmentKinds))
	labels := make([]string, 0, len(types.AdjustmentKinds))
	for _, k := range types.AdjustmentKinds {
		if spec, ok := e.tuning.Kind(k); ok {
			kinds = append(kinds, string(k))
			labels = append(labels, strings.ToLower(spec.Label))
		}
	}
	return assistant.OK(
		"Available filters: "+strings.Join(labels, ", "),
		map[string]interface{}{"filters": kinds, "presets": e.tuning.PresetNames()},
	)
}

// SplitVideo adds a split point at the playback position.
func (e *Editor) SplitVideo() assistant.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	at, err := e.session.SplitAtCurrent()
	if err != nil {
		return assistant.Fail(err)
	}
	info, _ := e.session.SplitInfo()
	return assistant.OK(
		fmt.Sprintf("Video split at %s", seconds(at)),
		map[string]interface{}{"position": at, "segments": info.Segments, "splitPoints": info.SplitPoints},
	)
}

func (e *Editor) GetSplitInfo() assistant.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	info, err := e.session.SplitInfo()
	if err != nil {
		return assistant.Fail(err)
	}
	return assistant.OK(
		fmt.Sprintf("%d segments, %d split points", info.Segments, len(info.SplitPoints)),
		map[string]interface{}{"segments": info.Segments, "splitPoints": info.SplitPoints},
	)
}

func (e *Editor) AnalyzeVideo() assistant.Result {
	e.mu.Lock()
	a, err := e.session.Analyze()
	var path string
	var at float64
	if err == nil {
		path, at = e.session.Media().Path, e.session.Playback().Position
	}
	e.mu.Unlock()
	if err != nil {
		return assistant.Fail(err)
	}

	m := a.Metadata
	msg := fmt.Sprintf("%dx%d, %s at %s fps. Estimated output %s at %d kbps (%s impact)",
		m.Width, m.Height, seconds(m.Duration), session.FormatNumber(m.FrameRate),
		humanize.Bytes(uint64(max(a.EstimatedSize, 0))), a.EstimatedBitrate, a.Impact)
	extra := map[string]interface{}{"analysis": a}

	// The histogram is best effort: the estimates stand without it.
	if hist, err := e.histogram(path, at); err != nil {
		e.logger.Warn("color histogram unavailable", zap.Error(err))
	} else if hist != nil {
		r, g, b := hist.Mean()
		msg += fmt.Sprintf(". Mean color at %s: R%.0f G%.0f B%.0f", seconds(at), r, g, b)
		extra["histogram"] = hist
	}
	return assistant.OK(msg, extra)
}

// histogram samples the source frame at position at. It returns nil without
// an error when no frame source is configured.
func (e *Editor) histogram(path string, at float64) (*media.Histogram, error) {
	if e.opts.Frames == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), config.FrameGrabTimeout)
	defer cancel()

	rgb, err := e.opts.Frames.Frame(ctx, path, at, media.HistogramWidth, media.HistogramHeight)
	if err != nil {
		return nil, err
	}
	hist, err := media.NewHistogram(rgb, media.HistogramWidth, media.HistogramHeight)
	if err != nil {
		return nil, err
	}
	hist.Position = at
	return hist, nil
}

func (e *Editor) Undo() assistant.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	moved, err := e.session.Undo()
	if err != nil {
		return assistant.Fail(err)
	}
	msg := "Change undone"
	if !moved {
		msg = "Nothing to undo"
	}
	return assistant.OK(msg, e.historyExtra())
}

func (e *Editor) Redo() assistant.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	moved, err := e.session.Redo()
	if err != nil {
		return assistant.Fail(err)
	}
	msg := "Change redone"
	if !moved {
		msg = "Nothing to redo"
	}
	return assistant.OK(msg, e.historyExtra())
}

func (e *Editor) historyExtra() map[string]interface{} {
	return map[string]interface{}{
		"canUndo":   e.session.CanUndo(),
		"canRedo":   e.session.CanRedo(),
		"filter":    e.session.FilterCSS(),
		"transform": e.session.TransformCSS(),
	}
}

func (e *Editor) label(k types.AdjustmentKind) string {
	if spec, ok := e.tuning.Kind(k); ok {
		return spec.Label
	}
	return string(k)
}

func effectsOf(adjs []session.Adjustment) []string {
	effects := make([]string, len(adjs))
	for i, a := range adjs {
		effects[i] = a.Effect
	}
	return effects
}

func seconds(t float64) string {
	return session.FormatNumber(math.Round(t*10)/10) + "s"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
