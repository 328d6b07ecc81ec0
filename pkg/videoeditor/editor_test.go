package videoeditor

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ZacxDev/video-editor/internal/config"
	"github.com/ZacxDev/video-editor/internal/keys"
	"github.com/ZacxDev/video-editor/internal/media"
	"github.com/ZacxDev/video-editor/internal/render"
	"github.com/ZacxDev/video-editor/internal/session"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProber struct{}

func (fakeProber) Probe(string) (*media.Metadata, error) {
	return &media.Metadata{Duration: 30, Width: 1280, Height: 720, FrameRate: 30, Bitrate: 2_000_000}, nil
}

type fakeRecorder struct {
	unavailable error
	started     chan struct{}
	block       chan struct{}

	mu   sync.Mutex
	jobs []render.Job
}

func (f *fakeRecorder) Available() error { return f.unavailable }

func (f *fakeRecorder) Record(_ context.Context, job render.Job) error {
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	return os.WriteFile(job.Output, []byte("rendered"), 0644)
}

func writeClip(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("not sniffable as video"), 0644))
	return path
}

func newEditor(t *testing.T, rec *fakeRecorder) *Editor {
	t.Helper()
	if rec == nil {
		rec = &fakeRecorder{}
	}
	e, err := New(Options{
		OutputDir: t.TempDir(),
		UploadDir: t.TempDir(),
		TempRoot:  t.TempDir(),
		Logger:    zap.NewNop(),
		Prober:    fakeProber{},
		Recorder:  rec,
		Rand:      rand.New(rand.NewPCG(7, 11)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func newLoadedEditor(t *testing.T, rec *fakeRecorder) *Editor {
	t.Helper()
	e := newEditor(t, rec)
	require.NoError(t, e.Load(writeClip(t, "clip.mp4")))
	return e
}

func TestNew_UnsupportedFormat(t *testing.T) {
	_, err := New(Options{OutputFormat: "gif", Prober: fakeProber{}, Recorder: &fakeRecorder{}})
	assert.Error(t, err)
}

func TestLoad_NotAVideo(t *testing.T) {
	e := newEditor(t, nil)
	err := e.Load(writeClip(t, "notes.txt"))
	assert.Equal(t, session.KindInvalidMedia, session.KindOf(err))
	assert.False(t, e.HasVideo())
}

func TestLoad_AnnouncesVideo(t *testing.T) {
	e := newLoadedEditor(t, nil)

	turns := e.Transcript()
	require.Len(t, turns, 1)
	assert.Contains(t, turns[0].Text, "clip.mp4")

	snap := e.Snapshot()
	require.NotNil(t, snap.Media)
	assert.Equal(t, "clip.mp4", snap.Media.Name)
	assert.Equal(t, 30.0, snap.Playback.Duration)
	assert.Equal(t, 100, snap.Volume)
	assert.Equal(t, "Idle", snap.Export)
}

func TestLoadUpload_ReleasesPrevious(t *testing.T) {
	e := newEditor(t, nil)

	require.NoError(t, e.LoadUpload(strings.NewReader("first"), "first.mp4"))
	first := e.session.Media().Path
	assert.FileExists(t, first)

	require.NoError(t, e.LoadUpload(strings.NewReader("second"), "second.mp4"))
	assert.NoFileExists(t, first)
	assert.Equal(t, "second.mp4", e.Snapshot().Media.Name)

	second := e.session.Media().Path
	require.NoError(t, e.Close())
	assert.NoFileExists(t, second)
}

func TestCapabilities_NoVideo(t *testing.T) {
	e := newEditor(t, nil)

	res := e.ApplyFilter("brightness", nil)
	assert.False(t, res.Success)
	assert.Equal(t, session.KindNoMediaLoaded, res.Kind)

	res = e.GetAvailableFilters()
	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "brightness")
}

func TestChatMatchesDirectCall(t *testing.T) {
	viaChat := newLoadedEditor(t, nil)
	direct := newLoadedEditor(t, nil)

	reply := viaChat.Chat("brillo 1.5")
	require.NotNil(t, reply.Result)
	assert.True(t, reply.Result.Success)

	v := 1.5
	res := direct.ApplyFilter("brightness", &v)
	require.True(t, res.Success)
	assert.Equal(t, "Brightness filter applied with value 1.5", res.Message)

	assert.Equal(t, direct.Snapshot().FilterCSS, viaChat.Snapshot().FilterCSS)
	assert.Equal(t, "brightness(1.5)", viaChat.Snapshot().FilterCSS)
}

func TestChangeVideoSpeed_OutOfRange(t *testing.T) {
	e := newLoadedEditor(t, nil)

	res := e.ChangeVideoSpeed(5)
	assert.False(t, res.Success)
	assert.Equal(t, session.KindOutOfRange, res.Kind)
	assert.Equal(t, 1.0, e.Snapshot().PlaybackRate)

	res = e.ChangeVideoSpeed(2)
	assert.True(t, res.Success)
	assert.Equal(t, "Speed changed to 2x", res.Message)
}

func TestApplyFilterCombination(t *testing.T) {
	e := newLoadedEditor(t, nil)
	before := e.Snapshot().HistoryLen

	res := e.ApplyFilterCombination("vintage")
	require.True(t, res.Success)
	assert.Equal(t, []string{"sepia(0.8)", "contrast(1.2)", "brightness(1.1)"}, res.Extra["filters"])
	assert.Equal(t, before+1, e.Snapshot().HistoryLen)

	res = e.ApplyFilterCombination("neon")
	assert.Equal(t, session.KindPresetNotFound, res.Kind)
}

func TestUndoRedo(t *testing.T) {
	e := newLoadedEditor(t, nil)
	require.True(t, e.RotateVideo(90).Success)

	res := e.Undo()
	require.True(t, res.Success)
	assert.Equal(t, "Change undone", res.Message)
	assert.Equal(t, 0, e.Snapshot().Transform.Rotation)

	assert.Equal(t, "Nothing to undo", e.Undo().Message)
	assert.Equal(t, "Change redone", e.Redo().Message)
	assert.Equal(t, 90, e.Snapshot().Transform.Rotation)
}

func TestPreview(t *testing.T) {
	e := newLoadedEditor(t, nil)
	before := e.Snapshot().HistoryLen

	require.True(t, e.PreviewFilter("contrast", 1.4).Success)
	require.True(t, e.PreviewFilter("contrast", 1.6).Success)
	assert.True(t, e.Snapshot().Previewing)
	assert.Equal(t, before, e.Snapshot().HistoryLen)

	require.True(t, e.CancelPreview().Success)
	assert.Empty(t, e.Snapshot().FilterCSS)

	require.True(t, e.PreviewFilter("contrast", 1.6).Success)
	res := e.CommitPreview()
	assert.Equal(t, "Preview saved", res.Message)
	assert.Equal(t, before+1, e.Snapshot().HistoryLen)
	assert.Equal(t, "Nothing to save", e.CommitPreview().Message)
}

func TestHandleKey(t *testing.T) {
	e := newLoadedEditor(t, nil)

	res := e.HandleKey(keys.Parse("space"), false)
	assert.Equal(t, "Playing", res.Message)
	assert.True(t, e.Snapshot().Playback.Playing)

	e.HandleKey(keys.Parse("ArrowRight"), false)
	assert.Equal(t, 10.0, e.Snapshot().Playback.Position)
	e.HandleKey(keys.Parse("ArrowLeft"), false)
	e.HandleKey(keys.Parse("ArrowLeft"), false)
	assert.Equal(t, 0.0, e.Snapshot().Playback.Position)

	e.HandleKey(keys.Parse("ArrowUp"), false)
	assert.Equal(t, 100, e.Snapshot().Volume)
	e.HandleKey(keys.Parse("ArrowDown"), false)
	assert.Equal(t, 90, e.Snapshot().Volume)

	res = e.HandleKey(keys.Parse("r"), false)
	require.True(t, res.Success)
	assert.NotEmpty(t, e.Snapshot().Adjustments)
	turns := e.Transcript()
	assert.True(t, strings.HasPrefix(turns[len(turns)-1].Text, "Filter "))

	e.HandleKey(keys.Parse("c"), false)
	assert.Empty(t, e.Snapshot().Adjustments)
	e.HandleKey(keys.Parse("ctrl+z"), false)
	assert.NotEmpty(t, e.Snapshot().Adjustments)

	res = e.HandleKey(keys.Parse("s"), false)
	assert.Equal(t, "Stopped", res.Message)
	assert.False(t, e.Snapshot().Playback.Playing)

	assert.Equal(t, session.KindUnrecognizedCommand, e.HandleKey(keys.Parse("x"), false).Kind)
	assert.Equal(t, session.KindUnrecognizedCommand, e.HandleKey(keys.Parse("space"), true).Kind)
}

func TestExport(t *testing.T) {
	rec := &fakeRecorder{}
	e := newLoadedEditor(t, rec)
	require.True(t, e.ApplyFilter("sepia", nil).Success)

	art, err := e.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "clip_edited.webm", art.Name)
	assert.FileExists(t, art.Path)
	assert.False(t, art.Fallback)

	require.Len(t, rec.jobs, 1)
	assert.Equal(t, "sepia(1)", rec.jobs[0].Plan.Filter)
	assert.Equal(t, render.Idle, e.ExportState())

	turns := e.Transcript()
	assert.Equal(t, "Video exported successfully! 🎉 clip_edited.webm", turns[len(turns)-1].Text)
}

func TestExport_FallsBackToOriginal(t *testing.T) {
	e := newLoadedEditor(t, &fakeRecorder{unavailable: errors.New("ffmpeg not found")})

	art, err := e.Export(context.Background())
	assert.Equal(t, session.KindExportFailure, session.KindOf(err))
	require.NotNil(t, art)
	assert.True(t, art.Fallback)
	assert.Equal(t, "clip_original.mp4", art.Name)

	turns := e.Transcript()
	assert.True(t, strings.HasPrefix(turns[len(turns)-1].Text, "Export failed: "))
}

func TestExport_LocksPlayback(t *testing.T) {
	rec := &fakeRecorder{started: make(chan struct{}), block: make(chan struct{})}
	e := newLoadedEditor(t, rec)

	done := make(chan error, 1)
	go func() {
		_, err := e.Export(context.Background())
		done <- err
	}()

	select {
	case <-rec.started:
	case <-time.After(5 * time.Second):
		t.Fatal("export never started")
	}

	res := e.HandleKey(keys.Parse("space"), false)
	assert.Equal(t, session.KindExportInProgress, res.Kind)
	err := e.Load(writeClip(t, "other.mp4"))
	assert.Equal(t, session.KindExportInProgress, session.KindOf(err))
	_, err = e.Export(context.Background())
	assert.Equal(t, session.KindExportInProgress, session.KindOf(err))

	// Edits are still accepted and apply to the next export.
	assert.True(t, e.ApplyFilter("blur", nil).Success)

	close(rec.block)
	require.NoError(t, <-done)
	assert.True(t, e.HandleKey(keys.Parse("space"), false).Success)
}

func TestClose_DuringExportKeepsSource(t *testing.T) {
	rec := &fakeRecorder{started: make(chan struct{}), block: make(chan struct{})}
	uploadDir := t.TempDir()
	e, err := New(Options{
		OutputDir: t.TempDir(),
		UploadDir: uploadDir,
		TempRoot:  t.TempDir(),
		Logger:    zap.NewNop(),
		Prober:    fakeProber{},
		Recorder:  rec,
		Rand:      rand.New(rand.NewPCG(7, 11)),
	})
	require.NoError(t, err)
	require.NoError(t, e.LoadUpload(strings.NewReader("upload"), "clip.mp4"))

	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	source := filepath.Join(uploadDir, entries[0].Name())

	done := make(chan error, 1)
	go func() {
		_, err := e.Export(context.Background())
		done <- err
	}()
	select {
	case <-rec.started:
	case <-time.After(5 * time.Second):
		t.Fatal("export never started")
	}

	require.NoError(t, e.Close())
	assert.FileExists(t, source)

	close(rec.block)
	require.NoError(t, <-done)
	assert.NoFileExists(t, source)
	assert.False(t, e.HasVideo())
	assert.NoError(t, e.Close())
}

type fakeFrames struct {
	err  error
	path string
	at   float64
}

func (f *fakeFrames) Frame(_ context.Context, path string, at float64, width, height int) ([]byte, error) {
	f.path, f.at = path, at
	if f.err != nil {
		return nil, f.err
	}
	rgb := make([]byte, 0, width*height*3)
	for i := 0; i < width*height; i++ {
		rgb = append(rgb, 200, 100, 50)
	}
	return rgb, nil
}

func newEditorWithFrames(t *testing.T, frames *fakeFrames) *Editor {
	t.Helper()
	e, err := New(Options{
		OutputDir: t.TempDir(),
		TempRoot:  t.TempDir(),
		Logger:    zap.NewNop(),
		Prober:    fakeProber{},
		Recorder:  &fakeRecorder{},
		Frames:    frames,
		Rand:      rand.New(rand.NewPCG(7, 11)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	require.NoError(t, e.Load(writeClip(t, "clip.mp4")))
	return e
}

func TestAnalyzeVideo_ColorHistogram(t *testing.T) {
	frames := &fakeFrames{}
	e := newEditorWithFrames(t, frames)
	require.True(t, e.Seek(12).Success)

	res := e.AnalyzeVideo()
	require.True(t, res.Success, res.Message)
	assert.Contains(t, res.Message, "R200 G100 B50")
	assert.Equal(t, 12.0, frames.at)
	assert.Equal(t, "clip.mp4", filepath.Base(frames.path))

	hist, ok := res.Extra["histogram"].(*media.Histogram)
	require.True(t, ok)
	pixels := media.HistogramWidth * media.HistogramHeight
	assert.Equal(t, pixels, hist.Red[200])
	assert.Equal(t, pixels, hist.Green[100])
	assert.Equal(t, pixels, hist.Blue[50])
	assert.Equal(t, 12.0, hist.Position)
}

func TestAnalyzeVideo_HistogramFailureKeepsEstimates(t *testing.T) {
	e := newEditorWithFrames(t, &fakeFrames{err: errors.New("ffmpeg missing")})

	res := e.AnalyzeVideo()
	require.True(t, res.Success)
	assert.NotContains(t, res.Extra, "histogram")
	assert.Contains(t, res.Extra, "analysis")
}

func TestParseFilter(t *testing.T) {
	name, v, err := ParseFilter("brightness=1.4")
	require.NoError(t, err)
	assert.Equal(t, "brightness", name)
	require.NotNil(t, v)
	assert.Equal(t, 1.4, *v)

	name, v, err = ParseFilter("sepia")
	require.NoError(t, err)
	assert.Equal(t, "sepia", name)
	assert.Nil(t, v)

	_, _, err = ParseFilter("blur=lots")
	assert.Error(t, err)
	_, _, err = ParseFilter("=1")
	assert.Error(t, err)
}

func TestApplyEdits(t *testing.T) {
	e := newLoadedEditor(t, nil)

	err := e.ApplyEdits(&config.ExportOptions{
		Preset:      "vintage",
		Filters:     []string{"brillo=2", "blur"},
		Rotation:    90,
		Flips:       []string{"horizontal"},
		Speed:       2,
		Volume:      50,
		SplitPoints: []time.Duration{5 * time.Second, 12 * time.Second},
	})
	require.NoError(t, err)

	snap := e.Snapshot()
	assert.Equal(t, "sepia(0.8) contrast(1.2) brightness(2) blur(2px)", snap.FilterCSS)
	assert.Equal(t, 90, snap.Transform.Rotation)
	assert.True(t, snap.Transform.FlipHorizontal)
	assert.Equal(t, 2.0, snap.PlaybackRate)
	assert.Equal(t, 50, snap.Volume)
	assert.Equal(t, []float64{5, 12}, snap.SplitPoints)
}

func TestApplyEdits_Errors(t *testing.T) {
	e := newLoadedEditor(t, nil)

	err := e.ApplyEdits(&config.ExportOptions{Filters: []string{"sparkle=1"}, Volume: config.DefaultVolume})
	assert.Equal(t, session.KindAdjustmentUnknown, session.KindOf(err))

	err = e.ApplyEdits(&config.ExportOptions{Rotation: 45, Volume: config.DefaultVolume})
	assert.Equal(t, session.KindInvalidRotation, session.KindOf(err))

	err = e.ApplyEdits(&config.ExportOptions{Volume: 150})
	assert.Equal(t, session.KindOutOfRange, session.KindOf(err))
}
