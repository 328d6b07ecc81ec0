package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZacxDev/video-editor/internal/logging"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Runner executes one ffmpeg invocation.
type Runner interface {
	Run(ctx context.Context, args []string) error
}

// Splitter cuts exported videos into segments at the session's split points
type Splitter struct {
	runner Runner
	logger *zap.Logger
}

// NewSplitter creates a new video splitter
func NewSplitter(runner Runner, logger *zap.Logger) *Splitter {
	return &Splitter{
		runner: runner,
		logger: logging.WithComponent(logger, "splitter"),
	}
}

// segmentPath names segment i (zero based) of base.
func segmentPath(dir, base, suffix string, i int, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s%s_%03d%s", base, suffix, i+1, ext))
}

func ensureOutputDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "error creating output directory %s", dir)
	}
	return nil
}
