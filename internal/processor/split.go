package processor

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/ZacxDev/video-editor/internal/config"
	"github.com/ZacxDev/video-editor/internal/profile"
	"github.com/ZacxDev/video-editor/internal/render"
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

// Cut writes one file per segment between consecutive split points. Each
// segment is stream-copied first and re-encoded with the profile's codecs
// when the copy fails.
func (s *Splitter) Cut(ctx context.Context, input string, points []float64, duration float64, outputDir, base string, prof profile.Profile) ([]render.Segment, error) {
	if err := ensureOutputDir(outputDir); err != nil {
		return nil, err
	}

	bounds := make([]float64, 0, len(points)+2)
	bounds = append(bounds, 0)
	for _, p := range points {
		if p > bounds[len(bounds)-1] && p < duration {
			bounds = append(bounds, p)
		}
	}
	bounds = append(bounds, duration)

	res := make([]render.Segment, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		start, end := bounds[i], bounds[i+1]
		outputPath := segmentPath(outputDir, base, config.SegmentSuffix, i, prof.GetExtension())

		s.logger.Debug("cutting segment",
			zap.Int("segment", i+1),
			zap.Int("total", len(bounds)-1),
			zap.String("output", outputPath),
		)

		copyArgs := ffmpeg.Input(input, ffmpeg.KwArgs{"ss": seconds(start), "t": seconds(end - start)}).
			Output(outputPath, ffmpeg.KwArgs{"c": "copy", "avoid_negative_ts": "make_zero"}).
			OverWriteOutput().
			GetArgs()

		if err := s.runner.Run(ctx, copyArgs); err != nil {
			if ctx.Err() != nil {
				return res, errors.WithStack(ctx.Err())
			}
			s.logger.Info("stream copy failed, re-encoding segment", zap.Int("segment", i+1), zap.Error(err))

			encodeArgs := ffmpeg.Input(input, ffmpeg.KwArgs{"ss": seconds(start), "t": seconds(end - start)}).
				Output(outputPath, ffmpeg.KwArgs{
					"c:v":     prof.GetVideoCodec(),
					"c:a":     prof.GetAudioCodec(),
					"b:v":     prof.GetVideoBitrate(),
					"b:a":     prof.GetAudioBitrate(),
					"pix_fmt": "yuv420p",
				}).
				OverWriteOutput().
				GetArgs()
			if err := s.runner.Run(ctx, encodeArgs); err != nil {
				return res, fmt.Errorf("error processing segment %d: %w", i+1, err)
			}
		}

		res = append(res, render.Segment{Path: outputPath, Start: start, End: end})
	}

	return res, nil
}

// seconds renders t with millisecond precision for -ss and -t.
func seconds(t float64) string {
	return strconv.FormatFloat(math.Round(t*1000)/1000, 'f', -1, 64)
}
