package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProber struct {
	meta *Metadata
	err  error
}

func (f fakeProber) Probe(string) (*Metadata, error) {
	if f.err != nil {
		return nil, f.err
	}
	m := *f.meta
	return &m, nil
}

// mp4Header is the smallest prefix content sniffing recognizes as MP4.
var mp4Header = []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2")

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestOpen_Video(t *testing.T) {
	path := writeFile(t, "My Clip (1).mp4", mp4Header)
	h, err := Open(path, fakeProber{meta: &Metadata{Duration: 12, Width: 640, Height: 360}})
	require.NoError(t, err)

	assert.Equal(t, "My Clip (1).mp4", h.Name)
	assert.Equal(t, "My_Clip_1", h.BaseName())
	assert.Equal(t, int64(len(mp4Header)), h.Meta.Size)
	assert.Equal(t, "MP4", h.Meta.Format)

	require.NoError(t, h.Release())
	_, err = os.Stat(path)
	assert.NoError(t, err, "Open does not own the file")
}

func TestOpen_RejectsNonVideo(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("hello world"))
	_, err := Open(path, fakeProber{meta: &Metadata{}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotVideo))
}

func TestOpen_ProbeFailure(t *testing.T) {
	path := writeFile(t, "clip.mp4", mp4Header)
	_, err := Open(path, fakeProber{err: errors.New("ffprobe missing")})
	assert.Error(t, err)
}

func TestAdopt_ReleaseRemovesFile(t *testing.T) {
	path := writeFile(t, "upload-123", mp4Header)
	h, err := Adopt(path, "holiday.mp4", fakeProber{meta: &Metadata{Duration: 3}})
	require.NoError(t, err)
	assert.Equal(t, ".mp4", h.Ext())

	require.NoError(t, h.Release())
	require.NoError(t, h.Release())
	assert.True(t, h.Released())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAdopt_FailureRemovesFile(t *testing.T) {
	path := writeFile(t, "upload-456", []byte("plain text"))
	_, err := Adopt(path, "notes.txt", fakeProber{meta: &Metadata{}})
	require.Error(t, err)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"hello world":     "hello_world",
		"__a__b__":        "a_b",
		"clip-01.final":   "clip-01.final",
		"ñandú & friends": "and_friends",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}
