package videoeditor

import (
	"context"
	"strconv"
	"strings"

	"github.com/ZacxDev/video-editor/internal/config"
	"github.com/ZacxDev/video-editor/internal/render"
	"github.com/ZacxDev/video-editor/internal/session"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ParseFilter reads a filter flag of the form "kind" or "kind=value".
// A missing value means the kind's default.
func ParseFilter(s string) (string, *float64, error) {
	name, raw, hasValue := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, errors.Errorf("invalid filter %q", s)
	}
	if !hasValue {
		return name, nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", nil, errors.Wrapf(err, "invalid value for filter %q", name)
	}
	return name, &v, nil
}

// ApplyEdits applies the edits described by opts to the loaded clip. Filters
// and the preset land in one history entry; the preset is applied first and
// the explicit filters override its values.
func (e *Editor) ApplyEdits(opts *config.ExportOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if opts.Preset != "" {
		if _, err := e.session.ApplyPreset(opts.Preset); err != nil {
			return err
		}
	}
	if len(opts.Filters) > 0 {
		steps := make([]config.PresetStep, 0, len(opts.Filters)+len(e.session.Adjustments()))
		for _, a := range e.session.Adjustments() {
			steps = append(steps, config.PresetStep{Kind: a.Kind, Value: a.Value})
		}
		for _, f := range opts.Filters {
			name, value, err := ParseFilter(f)
			if err != nil {
				return err
			}
			kind, ok := session.ResolveKind(name)
			if !ok {
				return session.NewError(session.KindAdjustmentUnknown, "Unknown filter: %s", name)
			}
			v := 0.0
			if value != nil {
				v = *value
			} else if spec, ok := e.tuning.Kind(kind); ok {
				v = spec.Default
			}
			steps = upsertStep(steps, config.PresetStep{Kind: kind, Value: v})
		}
		if _, err := e.session.ApplyAdjustments(steps); err != nil {
			return err
		}
	}

	if opts.Rotation != 0 {
		if err := e.session.SetRotation(opts.Rotation); err != nil {
			return err
		}
	}
	for _, axis := range opts.Flips {
		if _, err := e.session.ToggleFlip(axis); err != nil {
			return err
		}
	}
	if opts.Speed != 0 && opts.Speed != 1 {
		if _, err := e.session.SetPlaybackRate(opts.Speed); err != nil {
			return err
		}
	}
	if opts.Volume != config.DefaultVolume {
		if err := e.session.SetVolume(opts.Volume); err != nil {
			return err
		}
	}
	for _, d := range opts.SplitPoints {
		if err := e.session.SplitAt(d.Seconds()); err != nil {
			return err
		}
	}
	return nil
}

func upsertStep(steps []config.PresetStep, step config.PresetStep) []config.PresetStep {
	for i := range steps {
		if steps[i].Kind == step.Kind {
			steps[i] = step
			return steps
		}
	}
	return append(steps, step)
}

// ExportVideo loads opts.InputPath, applies the requested edits and exports
// the result in one go.
func ExportVideo(ctx context.Context, opts *config.ExportOptions, logger *zap.Logger) (*render.Artifact, error) {
	tuning, err := config.LoadTuning(opts.TuningPath)
	if err != nil {
		return nil, err
	}

	e, err := New(Options{
		OutputDir:    opts.OutputDir,
		OutputFormat: opts.OutputFormat,
		Segments:     opts.SplitSegments,
		Tuning:       tuning,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	defer e.Close()

	if err := e.Load(opts.InputPath); err != nil {
		return nil, err
	}
	if err := e.ApplyEdits(opts); err != nil {
		return nil, err
	}
	return e.Export(ctx)
}
