package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// ExportOptions defines options for a one-shot edit-and-export run
type ExportOptions struct {
	InputPath     string
	OutputDir     string
	OutputFormat  string // "webm" or "mp4"
	Filters       []string
	Preset        string
	Rotation      int
	Flips         []string
	Speed         float64
	Volume        int
	SplitPoints   []time.Duration
	SplitSegments bool
	TuningPath    string
	Verbose       bool
}

// ChatOptions defines options for the interactive chat session
type ChatOptions struct {
	InputPath    string
	OutputDir    string
	OutputFormat string
	TuningPath   string
	Verbose      bool
}

// ServeOptions defines options for the local HTTP API
type ServeOptions struct {
	Port         int
	OutputDir    string
	UploadDir    string
	OutputFormat string
	TuningPath   string
	SessionTTL   time.Duration
	Verbose      bool
}

const (
	// History ring capacity
	DefaultHistoryCapacity = 20

	// Playback limits
	MinPlaybackRate  = 0.25
	MaxPlaybackRate  = 3.0
	PlaybackRateStep = 0.25
	MinVolume        = 0
	MaxVolume        = 100
	DefaultVolume    = 100
	SeekStep         = 10 * time.Second
	VolumeStep       = 10

	// Chat reply pacing
	DefaultReplyStagger = 1200 * time.Millisecond
	MaxRandomFromChat   = 5

	// Export naming
	EditedSuffix   = "_edited"
	OriginalSuffix = "_original"
	SegmentSuffix  = "_segment"
	TempDirPrefix  = "video_export_"
	UploadPrefix   = "video_upload_"

	// Analysis estimates
	BaseFrameRate         = 30
	FilterSizeFactor      = 0.15
	TransformSizeFactor   = 0.10
	SpeedSizeFactor       = 0.20
	FrameGrabTimeout      = 10 * time.Second
	DefaultPort           = 8788
	DefaultSessionTTL     = time.Hour
	DefaultOutputFormat   = "webm"
	DefaultLogFile        = "logs/video-editor.log"
	DefaultUploadDir      = ""
	DefaultSessionCleanup = 10 * time.Minute
)

// Environment variable names
const (
	EnvPort         = "VIDEO_EDITOR_PORT"
	EnvOutputDir    = "VIDEO_EDITOR_OUTPUT_DIR"
	EnvOutputFormat = "VIDEO_EDITOR_FORMAT"
	EnvTuningPath   = "VIDEO_EDITOR_TUNING"
	EnvLogFile      = "VIDEO_EDITOR_LOG_FILE"
	EnvSessionTTL   = "VIDEO_EDITOR_SESSION_TTL"
	EnvStagger      = "VIDEO_EDITOR_REPLY_STAGGER"
	EnvHistory      = "VIDEO_EDITOR_HISTORY"
)

// Env holds the settings that come from the process environment.
type Env struct {
	Port            int
	OutputDir       string
	OutputFormat    string
	TuningPath      string
	LogFile         string
	SessionTTL      time.Duration
	ReplyStagger    time.Duration
	HistoryCapacity int
}

// LoadEnv reads an optional .env file and then the process environment.
// A missing .env file is not an error.
func LoadEnv(files ...string) (*Env, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, errors.Wrapf(err, "failed to load %s", f)
		}
	}

	env := &Env{
		Port:            DefaultPort,
		OutputDir:       ".",
		OutputFormat:    DefaultOutputFormat,
		LogFile:         DefaultLogFile,
		SessionTTL:      DefaultSessionTTL,
		ReplyStagger:    DefaultReplyStagger,
		HistoryCapacity: DefaultHistoryCapacity,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s", EnvPort)
		}
		if port < 1 || port > 65535 {
			return nil, errors.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		env.Port = port
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		env.OutputDir = v
	}
	if v := os.Getenv(EnvOutputFormat); v != "" {
		env.OutputFormat = v
	}
	if v := os.Getenv(EnvTuningPath); v != "" {
		env.TuningPath = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		env.LogFile = v
	}
	if v := os.Getenv(EnvSessionTTL); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s", EnvSessionTTL)
		}
		env.SessionTTL = d
	}
	if v := os.Getenv(EnvStagger); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s", EnvStagger)
		}
		env.ReplyStagger = d
	}
	if v := os.Getenv(EnvHistory); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, errors.Errorf("invalid %s: must be a positive integer", EnvHistory)
		}
		env.HistoryCapacity = n
	}

	return env, nil
}
