package processor

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZacxDev/video-editor/internal/profile"
	"github.com/ZacxDev/video-editor/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRunner struct {
	calls    [][]string
	failCopy map[int]bool // segment index whose stream copy fails
	failAll  bool
}

func (f *fakeRunner) Run(_ context.Context, args []string) error {
	f.calls = append(f.calls, args)
	if f.failAll {
		return errors.New("ffmpeg exited with status 1")
	}
	joined := strings.Join(args, " ")
	for seg := range f.failCopy {
		if strings.Contains(joined, "copy") && strings.Contains(joined, segmentSuffixFor(seg)) {
			return errors.New("copy failed")
		}
	}
	return nil
}

func segmentSuffixFor(i int) string {
	return filepath.Base(segmentPath("", "clip", "_segment", i, ".webm"))
}

func TestCut(t *testing.T) {
	dir := t.TempDir()
	prof, err := profile.Get("webm")
	require.NoError(t, err)
	runner := &fakeRunner{failCopy: map[int]bool{1: true}}
	s := NewSplitter(runner, zap.NewNop())

	segs, err := s.Cut(context.Background(), "/tmp/in.webm", []float64{2.5, 6}, 10, dir, "clip", prof)
	require.NoError(t, err)

	assert.Equal(t, []render.Segment{
		{Path: filepath.Join(dir, "clip_segment_001.webm"), Start: 0, End: 2.5},
		{Path: filepath.Join(dir, "clip_segment_002.webm"), Start: 2.5, End: 6},
		{Path: filepath.Join(dir, "clip_segment_003.webm"), Start: 6, End: 10},
	}, segs)

	// Segment 2 was copied, failed and re-encoded.
	require.Len(t, runner.calls, 4)
	reencode := strings.Join(runner.calls[2], " ")
	assert.Contains(t, reencode, "libvpx-vp9")
	assert.Contains(t, reencode, "clip_segment_002.webm")
	assert.Contains(t, strings.Join(runner.calls[0], " "), "-ss 0")
}

func TestCut_IgnoresPointsOutsideClip(t *testing.T) {
	prof, err := profile.Get("mp4")
	require.NoError(t, err)
	s := NewSplitter(&fakeRunner{}, zap.NewNop())

	segs, err := s.Cut(context.Background(), "/tmp/in.mp4", []float64{0, 4, 4, 12}, 8, t.TempDir(), "clip", prof)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, 4.0, segs[0].End)
	assert.Equal(t, 8.0, segs[1].End)
}

func TestCut_Failure(t *testing.T) {
	prof, err := profile.Get("webm")
	require.NoError(t, err)
	s := NewSplitter(&fakeRunner{failAll: true}, zap.NewNop())

	segs, err := s.Cut(context.Background(), "/tmp/in.webm", []float64{3}, 6, t.TempDir(), "clip", prof)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "segment 1")
	assert.Empty(t, segs)
}
