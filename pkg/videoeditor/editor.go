package videoeditor

import (
	"context"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ZacxDev/video-editor/internal/assistant"
	"github.com/ZacxDev/video-editor/internal/config"
	"github.com/ZacxDev/video-editor/internal/ffmpeg"
	"github.com/ZacxDev/video-editor/internal/logging"
	"github.com/ZacxDev/video-editor/internal/media"
	"github.com/ZacxDev/video-editor/internal/processor"
	"github.com/ZacxDev/video-editor/internal/profile"
	"github.com/ZacxDev/video-editor/internal/render"
	"github.com/ZacxDev/video-editor/internal/session"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Options configures an Editor. Zero values select the defaults: ffprobe and
// ffmpeg from PATH, the built-in tuning and the webm profile.
type Options struct {
	OutputDir       string
	UploadDir       string
	OutputFormat    string
	Segments        bool // cut the export at the split points as well
	Tuning          *config.Tuning
	HistoryCapacity int
	ReplyStagger    time.Duration
	TempRoot        string

	Logger   *zap.Logger
	Prober   media.Prober
	Recorder render.Recorder
	Cutter   render.Cutter
	Frames   media.FrameSource
	Rand     *rand.Rand
	Now      func() time.Time
}

// Editor owns one editing session for its lifetime and serializes every
// operation on it. It implements assistant.Capabilities.
type Editor struct {
	mu      sync.Mutex
	session *session.Session
	tuning  *config.Tuning
	rng     *rand.Rand

	chatMu    sync.Mutex
	assistant *assistant.Assistant

	exporter *render.Exporter
	closed   bool // release the clip once the running export ends
	prober   media.Prober
	profile  profile.Profile
	opts     Options
	logger   *zap.Logger
}

var _ assistant.Capabilities = (*Editor)(nil)

// New creates an editor with no clip loaded.
func New(opts Options) (*Editor, error) {
	prof, err := profile.Get(opts.OutputFormat)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if opts.Tuning == nil {
		opts.Tuning = config.DefaultTuning()
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0xda942042e4dd58b5))
	}
	logger := logging.WithComponent(opts.Logger, "editor")

	if opts.Prober == nil {
		opts.Prober = ffmpeg.NewProber()
	}
	if opts.Recorder == nil {
		opts.Recorder = ffmpeg.NewRecorder(opts.Logger)
	}
	if opts.Cutter == nil {
		if runner, ok := opts.Recorder.(processor.Runner); ok {
			opts.Cutter = processor.NewSplitter(runner, opts.Logger)
		}
	}

	if opts.Frames == nil {
		if frames, ok := opts.Recorder.(media.FrameSource); ok {
			opts.Frames = frames
		}
	}

	exporterOpts := []render.Option{render.WithTempRoot(opts.TempRoot)}
	if opts.Cutter != nil {
		exporterOpts = append(exporterOpts, render.WithCutter(opts.Cutter))
	}

	e := &Editor{
		session: session.New(session.Options{
			Tuning:          opts.Tuning,
			HistoryCapacity: opts.HistoryCapacity,
			Rand:            opts.Rand,
			Now:             opts.Now,
		}),
		tuning:   opts.Tuning,
		rng:      opts.Rand,
		exporter: render.NewExporter(opts.Recorder, opts.Logger, exporterOpts...),
		prober:   opts.Prober,
		profile:  prof,
		opts:     opts,
		logger:   logger,
	}
	e.assistant = assistant.New(e, assistant.Config{
		Stagger: opts.ReplyStagger,
		Now:     opts.Now,
		Logger:  opts.Logger,
	}, assistant.WithTuning(opts.Tuning),
		assistant.WithRand(rand.New(rand.NewPCG(opts.Rand.Uint64(), opts.Rand.Uint64()))))
	return e, nil
}

// Load opens the video at path and makes it the active clip, replacing and
// releasing the previous one.
func (e *Editor) Load(path string) error {
	h, err := media.Open(path, e.prober)
	if err != nil {
		return invalidMedia(err)
	}
	return e.adopt(h)
}

// LoadUpload stores r in the upload directory and loads it. The stored copy
// belongs to the editor and is removed when the clip is replaced or the
// editor closes.
func (e *Editor) LoadUpload(r io.Reader, name string) error {
	ext := filepath.Ext(name)
	f, err := os.CreateTemp(e.opts.UploadDir, config.UploadPrefix+"*"+ext)
	if err != nil {
		return errors.Wrap(err, "failed to create upload file")
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return errors.Wrap(err, "failed to store upload")
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return errors.Wrap(err, "failed to store upload")
	}

	h, err := media.Adopt(f.Name(), filepath.Base(name), e.prober)
	if err != nil {
		return invalidMedia(err)
	}
	return e.adopt(h)
}

func (e *Editor) adopt(h *media.Handle) error {
	e.mu.Lock()
	if e.session.Exporting() {
		e.mu.Unlock()
		h.Release()
		return session.NewError(session.KindExportInProgress, "Wait for the export to finish before loading another video")
	}
	previous := e.session.Load(h)
	e.mu.Unlock()

	if err := previous.Release(); err != nil {
		e.logger.Warn("failed to release previous video", zap.Error(err))
	}
	e.logger.Info("video loaded",
		zap.String("name", h.Name),
		zap.Float64("duration", h.Meta.Duration),
		zap.Int("width", h.Meta.Width),
		zap.Int("height", h.Meta.Height),
	)
	e.assistant.Notify(assistant.EventVideoLoaded, h.Name)
	return nil
}

func invalidMedia(err error) error {
	if errors.Is(err, media.ErrNotVideo) {
		return session.NewError(session.KindInvalidMedia, "Unsupported file: %v", errors.Cause(err))
	}
	return session.NewError(session.KindInvalidMedia, "Could not open video: %v", err)
}

// Close releases the active clip. While an export is running the clip is
// still the recorder's input, so the release happens when the export ends.
func (e *Editor) Close() error {
	e.mu.Lock()
	if e.session.Exporting() {
		e.closed = true
		e.mu.Unlock()
		e.logger.Info("close deferred until export finishes")
		return nil
	}
	h := e.session.Unload()
	e.mu.Unlock()
	return h.Release()
}

// Export renders the current edits. The session is locked for playback for
// the duration, but other edits are accepted and apply to the next export.
func (e *Editor) Export(ctx context.Context) (*render.Artifact, error) {
	e.mu.Lock()
	state, err := e.session.BeginExport()
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	defer func() {
		e.mu.Lock()
		e.session.EndExport()
		var h *media.Handle
		if e.closed {
			h = e.session.Unload()
			e.closed = false
		}
		e.mu.Unlock()
		if err := h.Release(); err != nil {
			e.logger.Warn("failed to release closed video", zap.Error(err))
		}
	}()

	e.assistant.Notify(assistant.EventExportStarted, "")
	art, err := e.exporter.Export(ctx, render.Request{
		State:     state,
		OutputDir: e.opts.OutputDir,
		Profile:   e.profile,
		Segments:  e.opts.Segments,
	})
	if err != nil {
		e.assistant.Notify(assistant.EventExportFailed, session.MessageOf(err))
		return art, err
	}
	e.assistant.Notify(assistant.EventExportComplete, art.Name)
	return art, nil
}

// ExportState reports the export pipeline state.
func (e *Editor) ExportState() render.State {
	return e.exporter.State()
}

// Chat routes one message through the assistant.
func (e *Editor) Chat(text string) assistant.Reply {
	e.chatMu.Lock()
	defer e.chatMu.Unlock()
	return e.assistant.Respond(text)
}

func (e *Editor) Assistant() *assistant.Assistant { return e.assistant }

func (e *Editor) Transcript() []assistant.ChatTurn {
	return e.assistant.Transcript().Turns()
}

func (e *Editor) Profile() profile.Profile { return e.profile }

// MediaInfo describes the loaded clip.
type MediaInfo struct {
	Name     string         `json:"name"`
	MIME     string         `json:"mime"`
	Metadata media.Metadata `json:"metadata"`
}

// Snapshot is a read-only view of the editor state.
type Snapshot struct {
	Media        *MediaInfo           `json:"media,omitempty"`
	Adjustments  []session.Adjustment `json:"adjustments"`
	FilterCSS    string               `json:"filter"`
	TransformCSS string               `json:"transform"`
	Transform    session.Transform    `json:"spatialTransform"`
	PlaybackRate float64              `json:"playbackRate"`
	Volume       int                  `json:"volume"`
	Playback     session.Playback     `json:"playback"`
	SplitPoints  []float64            `json:"splitPoints"`
	CanUndo      bool                 `json:"canUndo"`
	CanRedo      bool                 `json:"canRedo"`
	HistoryLen   int                  `json:"historyLength"`
	Previewing   bool                 `json:"previewing"`
	Export       string               `json:"export"`
}

func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		Adjustments:  e.session.Adjustments(),
		FilterCSS:    e.session.FilterCSS(),
		TransformCSS: e.session.TransformCSS(),
		Transform:    e.session.Transform(),
		PlaybackRate: e.session.PlaybackRate(),
		Volume:       e.session.Volume(),
		Playback:     e.session.Playback(),
		SplitPoints:  e.session.SplitPoints(),
		CanUndo:      e.session.CanUndo(),
		CanRedo:      e.session.CanRedo(),
		HistoryLen:   e.session.HistoryLen(),
		Previewing:   e.session.Previewing(),
		Export:       e.exporter.State().String(),
	}
	if h := e.session.Media(); h != nil {
		s.Media = &MediaInfo{Name: h.Name, MIME: h.MIME, Metadata: h.Meta}
	}
	return s
}
