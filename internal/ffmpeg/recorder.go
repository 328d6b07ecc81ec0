package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ZacxDev/video-editor/internal/logging"
	"github.com/ZacxDev/video-editor/internal/profile"
	"github.com/ZacxDev/video-editor/internal/render"
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

// Recorder renders export plans with the ffmpeg binary.
type Recorder struct {
	logger   *zap.Logger
	binary   string
	lookPath func(string) (string, error)
}

// NewRecorder creates a recorder that runs the ffmpeg found in PATH
func NewRecorder(logger *zap.Logger) *Recorder {
	return &Recorder{
		logger:   logging.WithComponent(logger, "ffmpeg"),
		binary:   "ffmpeg",
		lookPath: exec.LookPath,
	}
}

// Available reports render.ErrRecorderUnavailable when ffmpeg is missing.
func (r *Recorder) Available() error {
	if _, err := r.lookPath(r.binary); err != nil {
		return errors.Wrapf(render.ErrRecorderUnavailable, "%s not found: %v", r.binary, err)
	}
	return nil
}

// OutputArgs builds the encoder arguments for job.
func OutputArgs(job render.Job) ffmpeg.KwArgs {
	prof := job.Profile
	kwargs := ffmpeg.KwArgs{
		"c:v":     prof.GetVideoCodec(),
		"c:a":     prof.GetAudioCodec(),
		"b:v":     targetBitrate(prof.GetVideoBitrate(), job.Plan.SourceBitrate),
		"b:a":     prof.GetAudioBitrate(),
		"vf":      strings.Join(VideoFilters(job.Plan), ","),
		"threads": GetOptimalThreadCount(),
	}
	if af := AudioFilters(job.Plan); len(af) > 0 {
		kwargs["af"] = strings.Join(af, ",")
	}

	// Apply format-specific encoder settings
	for k, v := range prof.GetEncoderOptions() {
		kwargs[k] = v
	}
	return kwargs
}

// Record replays job.Input through the plan into job.Output and returns when
// ffmpeg reaches the end of the media. Cancelling ctx kills ffmpeg.
func (r *Recorder) Record(ctx context.Context, job render.Job) error {
	if job.Profile == nil {
		p, err := profile.Get(profile.Default)
		if err != nil {
			return errors.WithStack(err)
		}
		job.Profile = p
	}

	args := ffmpeg.Input(job.Input).
		Output(job.Output, OutputArgs(job)).
		OverWriteOutput().
		GetArgs()
	return r.Run(ctx, args)
}

// Run executes ffmpeg with args. It is also the segment cutter's runner.
func (r *Recorder) Run(ctx context.Context, args []string) error {
	return r.run(ctx, args, nil)
}

func (r *Recorder) run(ctx context.Context, args []string, stdout io.Writer) error {
	binary, err := r.lookPath(r.binary)
	if err != nil {
		return errors.Wrapf(render.ErrRecorderUnavailable, "%s not found: %v", r.binary, err)
	}

	r.logger.Debug("running ffmpeg", zap.Strings("args", args))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stderr = &stderr
	cmd.Stdout = stdout
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), "ffmpeg cancelled")
		}
		return errors.Wrapf(err, "ffmpeg failed: %s", lastLines(stderr.String(), 3))
	}
	return nil
}

// lastLines keeps the tail of ffmpeg's log, where the error usually is.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}

// FrameArgs scales one frame to width x height and writes it as raw rgb24.
func FrameArgs(width, height int) ffmpeg.KwArgs {
	return ffmpeg.KwArgs{
		"frames:v": 1,
		"s":        fmt.Sprintf("%dx%d", width, height),
		"f":        "rawvideo",
		"pix_fmt":  "rgb24",
	}
}

// Frame grabs the frame at position at (seconds) from path. It implements
// media.FrameSource for the color histogram.
func (r *Recorder) Frame(ctx context.Context, path string, at float64, width, height int) ([]byte, error) {
	args := ffmpeg.Input(path, ffmpeg.KwArgs{"ss": strconv.FormatFloat(max(at, 0), 'f', 3, 64)}).
		Output("pipe:", FrameArgs(width, height)).
		GetArgs()

	var stdout bytes.Buffer
	if err := r.run(ctx, args, &stdout); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}
