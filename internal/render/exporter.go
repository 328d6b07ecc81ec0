package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ZacxDev/video-editor/internal/config"
	"github.com/ZacxDev/video-editor/internal/logging"
	"github.com/ZacxDev/video-editor/internal/profile"
	"github.com/ZacxDev/video-editor/internal/session"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// State is the export pipeline state.
type State int

const (
	Idle State = iota
	Recording
	Finalizing
)

func (s State) String() string {
	switch s {
	case Recording:
		return "recording"
	case Finalizing:
		return "finalizing"
	default:
		return "idle"
	}
}

// ErrRecorderUnavailable is returned by Recorder.Available when the host
// cannot record.
var ErrRecorderUnavailable = errors.New("recorder unavailable")

// Job is one recording: replay Input through Plan into Output.
type Job struct {
	Plan    Plan
	Input   string
	Output  string
	Profile profile.Profile
}

// Recorder renders a plan into a file. Record returns once the end of the
// media is reached or on the first error.
type Recorder interface {
	Available() error
	Record(ctx context.Context, job Job) error
}

// Segment is one cut of the finalized artifact.
type Segment struct {
	Path  string  `json:"path"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Cutter splits a finalized artifact at the given points.
type Cutter interface {
	Cut(ctx context.Context, input string, points []float64, duration float64, outputDir, base string, prof profile.Profile) ([]Segment, error)
}

// Request asks for one export of the captured state.
type Request struct {
	State     session.RenderState
	OutputDir string
	Profile   profile.Profile
	Segments  bool
}

// Artifact is the result of an export. Fallback marks a copy of the
// unedited original.
type Artifact struct {
	Path     string        `json:"path"`
	Name     string        `json:"name"`
	MIME     string        `json:"mime"`
	Size     int64         `json:"size"`
	Fallback bool          `json:"fallback"`
	Segments []Segment     `json:"segments,omitempty"`
	Warning  string        `json:"warning,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
	Plan     Plan          `json:"-"`
}

// Exporter drives the Idle → Recording → Finalizing → Idle state machine.
type Exporter struct {
	recorder Recorder
	cutter   Cutter
	logger   *zap.Logger
	tempRoot string
	onState  func(State)

	mu    sync.Mutex
	state State
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithCutter enables segment export.
func WithCutter(c Cutter) Option {
	return func(e *Exporter) { e.cutter = c }
}

// WithTempRoot places the scoped temporary directories under dir.
func WithTempRoot(dir string) Option {
	return func(e *Exporter) { e.tempRoot = dir }
}

// WithStateHook is called on every state change.
func WithStateHook(fn func(State)) Option {
	return func(e *Exporter) { e.onState = fn }
}

func NewExporter(recorder Recorder, logger *zap.Logger, opts ...Option) *Exporter {
	e := &Exporter{
		recorder: recorder,
		logger:   logging.WithComponent(logger, "exporter"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Exporter) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Exporter) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
	if e.onState != nil {
		e.onState(s)
	}
}

func (e *Exporter) begin() error {
	e.mu.Lock()
	if e.state != Idle {
		e.mu.Unlock()
		return session.NewError(session.KindExportInProgress, "An export is already running")
	}
	e.state = Recording
	e.mu.Unlock()
	if e.onState != nil {
		e.onState(Recording)
	}
	return nil
}

// Export renders req.State into <base>_edited.<ext> in req.OutputDir. When the
// recorder is unavailable or fails, the original is copied as
// <base>_original.<ext> and returned with Fallback set, together with an
// ExportFailure error.
func (e *Exporter) Export(ctx context.Context, req Request) (*Artifact, error) {
	src := req.State.Media
	if src == nil {
		return nil, session.NewError(session.KindNoMediaLoaded, "No video loaded")
	}
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.setState(Idle)

	started := time.Now()
	prof := req.Profile
	if prof == nil {
		p, err := profile.Get(profile.Default)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		prof = p
	}
	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create output directory")
	}

	plan := NewPlan(req.State)
	logger := e.logger.With(
		zap.String("input", src.Path),
		zap.String("format", prof.GetName()),
	)
	logger.Info("export started",
		zap.Int("canvas_width", plan.Canvas.Width),
		zap.Int("canvas_height", plan.Canvas.Height),
		zap.String("filter", plan.Filter),
		zap.String("transform", plan.Transform.CSS()),
		zap.Float64("rate", plan.PlaybackRate),
	)

	tmp, err := os.MkdirTemp(e.tempRoot, config.TempDirPrefix)
	if err != nil {
		return e.fallback(logger, req, outputDir, errors.Wrap(err, "failed to create temp dir"))
	}
	defer os.RemoveAll(tmp)

	if err := e.recorder.Available(); err != nil {
		return e.fallback(logger, req, outputDir, err)
	}

	job := Job{
		Plan:    plan,
		Input:   src.Path,
		Output:  filepath.Join(tmp, "render"+prof.GetExtension()),
		Profile: prof,
	}
	if err := e.recorder.Record(ctx, job); err != nil {
		return e.fallback(logger, req, outputDir, err)
	}

	e.setState(Finalizing)
	name := src.BaseName() + config.EditedSuffix + prof.GetExtension()
	dst := filepath.Join(outputDir, name)
	if err := moveFile(job.Output, dst); err != nil {
		return e.fallback(logger, req, outputDir, errors.Wrap(err, "failed to finalize export"))
	}

	art := &Artifact{
		Path: dst,
		Name: name,
		MIME: prof.GetMIMEType(),
		Plan: plan,
	}
	if info, err := os.Stat(dst); err == nil {
		art.Size = info.Size()
	}

	if req.Segments && len(req.State.SplitPoints) > 0 && e.cutter != nil {
		// Split points are in source time; the artifact runs at the export rate.
		points := make([]float64, len(req.State.SplitPoints))
		for i, p := range req.State.SplitPoints {
			points[i] = p / plan.PlaybackRate
		}
		segments, err := e.cutter.Cut(ctx, dst, points, plan.Duration/plan.PlaybackRate,
			outputDir, src.BaseName(), prof)
		if err != nil {
			logger.Warn("segment export failed", zap.Error(err))
			art.Warning = fmt.Sprintf("Segments could not be written: %v", err)
		}
		art.Segments = segments
	}

	art.Elapsed = time.Since(started)
	logger.Info("export complete",
		zap.String("output", dst),
		zap.Int64("size", art.Size),
		zap.Int("segments", len(art.Segments)),
		zap.Duration("elapsed", art.Elapsed),
	)
	return art, nil
}

// fallback copies the unedited source next to where the export would have
// gone. The edits are lost, so the returned error always reports the
// failure even when the copy succeeds.
func (e *Exporter) fallback(logger *zap.Logger, req Request, outputDir string, cause error) (*Artifact, error) {
	src := req.State.Media
	logger.Error("export failed, falling back to the original", zap.Error(cause))

	name := src.BaseName() + config.OriginalSuffix + src.Ext()
	dst := filepath.Join(outputDir, name)
	if err := copyFile(src.Path, dst); err != nil {
		logger.Error("fallback copy failed", zap.Error(err))
		return nil, session.NewError(session.KindExportFailure,
			"Export failed (%v) and the original could not be copied: %v", errors.Cause(cause), err)
	}

	art := &Artifact{
		Path:     dst,
		Name:     name,
		MIME:     src.MIME,
		Fallback: true,
		Warning:  "Edits were not applied: this is the original video",
	}
	if info, err := os.Stat(dst); err == nil {
		art.Size = info.Size()
	}
	return art, session.NewError(session.KindExportFailure,
		"Export failed (%v). The original video was saved as %s without your edits", errors.Cause(cause), name)
}

func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.WithStack(err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.WithStack(err)
	}
	return errors.WithStack(out.Close())
}
