package media

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// ErrNotVideo is returned when a file does not look like a video container.
var ErrNotVideo = errors.New("not a video file")

// videoExtensions are accepted even when content sniffing is inconclusive.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".wmv":  true,
}

// Metadata contains what the editor needs to know about a clip
type Metadata struct {
	Duration  float64 `json:"duration"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Codec     string  `json:"codec"`
	FrameRate float64 `json:"frameRate"`
	Bitrate   int64   `json:"bitrate"`
	Size      int64   `json:"size"`
	Format    string  `json:"format"`
}

// Prober reads metadata from a media file.
type Prober interface {
	Probe(path string) (*Metadata, error)
}

// Handle is the editor's reference to the loaded clip. A handle created from
// an upload owns its file and removes it on Release.
type Handle struct {
	Path     string
	Name     string
	MIME     string
	Meta     Metadata
	owned    bool
	released bool
}

// NewHandle wraps an already-probed file without taking ownership.
func NewHandle(path string, meta Metadata) *Handle {
	return &Handle{
		Path: path,
		Name: filepath.Base(path),
		Meta: meta,
	}
}

// Open validates path as a video and probes it.
func Open(path string, prober Prober) (*Handle, error) {
	return open(path, filepath.Base(path), prober, false)
}

// Adopt is Open for a temporary file the handle takes ownership of; name is
// the user-facing file name (e.g. the uploaded file's original name).
func Adopt(path, name string, prober Prober) (*Handle, error) {
	h, err := open(path, name, prober, true)
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	return h, nil
}

func open(path, name string, prober Prober, owned bool) (*Handle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat media")
	}
	if info.IsDir() {
		return nil, errors.Wrapf(ErrNotVideo, "%s is a directory", path)
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to detect media type")
	}
	mime := mt.String()
	if !strings.HasPrefix(mime, "video/") {
		if !videoExtensions[strings.ToLower(filepath.Ext(name))] {
			return nil, errors.Wrapf(ErrNotVideo, "%s (%s)", name, mime)
		}
	}

	meta, err := prober.Probe(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to probe media")
	}
	if meta.Size == 0 {
		meta.Size = info.Size()
	}
	if meta.Format == "" {
		meta.Format = FormatFromName(name)
	}

	return &Handle{
		Path:  path,
		Name:  name,
		MIME:  mime,
		Meta:  *meta,
		owned: owned,
	}, nil
}

// Release gives the handle's resources back. It is safe to call more than
// once and on a nil handle.
func (h *Handle) Release() error {
	if h == nil || h.released {
		return nil
	}
	h.released = true
	if !h.owned {
		return nil
	}
	if err := os.Remove(h.Path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove media file")
	}
	return nil
}

// Released reports whether Release has run.
func (h *Handle) Released() bool {
	return h != nil && h.released
}

// BaseName is the handle's name without extension, safe for output files.
func (h *Handle) BaseName() string {
	base := strings.TrimSuffix(h.Name, filepath.Ext(h.Name))
	if s := SanitizeFilename(base); s != "" {
		return s
	}
	return "video"
}

// Ext is the source extension including the dot, ".mp4" when unknown.
func (h *Handle) Ext() string {
	if ext := strings.ToLower(filepath.Ext(h.Name)); ext != "" {
		return ext
	}
	return ".mp4"
}

// FormatFromName maps a file name to a display container name.
func FormatFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp4":
		return "MP4"
	case ".webm":
		return "WebM"
	case ".avi":
		return "AVI"
	case ".mov":
		return "MOV"
	case ".mkv":
		return "MKV"
	case ".wmv":
		return "WMV"
	default:
		return "Unknown"
	}
}

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9-_.]`)
	underscores = regexp.MustCompile(`_+`)
)

// SanitizeFilename replaces everything outside [a-zA-Z0-9-_.] with single
// underscores.
func SanitizeFilename(filename string) string {
	sanitized := unsafeChars.ReplaceAllString(filename, "_")
	sanitized = underscores.ReplaceAllString(sanitized, "_")
	return strings.Trim(sanitized, "_")
}
