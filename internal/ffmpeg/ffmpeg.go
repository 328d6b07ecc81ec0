package ffmpeg

import (
	"encoding/json"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"

	"github.com/ZacxDev/video-editor/internal/media"
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Prober reads clip metadata with ffprobe
type Prober struct{}

// NewProber creates a new ffprobe-backed prober
func NewProber() *Prober {
	return &Prober{}
}

// Probe retrieves metadata about a video file
func (p *Prober) Probe(inputPath string) (*media.Metadata, error) {
	probe, err := ffmpeg.Probe(inputPath)
	if err != nil {
		return nil, errors.Wrap(err, "error probing video")
	}
	return ParseProbe(probe)
}

// ParseProbe extracts metadata from ffprobe's JSON output
func ParseProbe(probe string) (*media.Metadata, error) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(probe), &data); err != nil {
		return nil, errors.WithStack(err)
	}

	streams, ok := data["streams"].([]interface{})
	if !ok || len(streams) == 0 {
		return nil, fmt.Errorf("no streams found in video")
	}

	var videoStream map[string]interface{}
	for _, stream := range streams {
		s, ok := stream.(map[string]interface{})
		if !ok {
			continue
		}
		if codecType, _ := s["codec_type"].(string); codecType == "video" {
			videoStream = s
			break
		}
	}

	if videoStream == nil {
		return nil, fmt.Errorf("no video stream found")
	}

	format, _ := data["format"].(map[string]interface{})
	frameRate := parseRate(stringField(videoStream, "r_frame_rate"))
	if frameRate == 0 {
		frameRate = parseRate(stringField(videoStream, "avg_frame_rate"))
	}

	var duration float64

	// First try video stream duration
	if d, err := strconv.ParseFloat(stringField(videoStream, "duration"), 64); err == nil {
		duration = d
	}

	// If stream duration is not available, try format duration
	if duration == 0 {
		if d, err := strconv.ParseFloat(stringField(format, "duration"), 64); err == nil {
			duration = d
		}
	}

	// If still no duration found, try calculating from frames and frame rate
	if duration == 0 && frameRate > 0 {
		if frames, err := strconv.ParseFloat(stringField(videoStream, "nb_frames"), 64); err == nil {
			duration = frames / frameRate
		}
	}

	if duration == 0 {
		return nil, fmt.Errorf("could not determine video duration")
	}

	width, _ := videoStream["width"].(float64)
	height, _ := videoStream["height"].(float64)

	meta := &media.Metadata{
		Duration:  duration,
		Width:     int(width),
		Height:    int(height),
		Codec:     stringField(videoStream, "codec_name"),
		FrameRate: math.Round(frameRate*100) / 100,
	}
	if size, err := strconv.ParseInt(stringField(format, "size"), 10, 64); err == nil {
		meta.Size = size
	}
	meta.Bitrate = bitrate(format, videoStream, meta)

	return meta, nil
}

// bitrate prefers the format bitrate, then the video stream's, then an
// estimate from size and duration.
func bitrate(format, videoStream map[string]interface{}, meta *media.Metadata) int64 {
	if b, err := strconv.ParseInt(stringField(format, "bit_rate"), 10, 64); err == nil {
		return b
	}
	if b, err := strconv.ParseInt(stringField(videoStream, "bit_rate"), 10, 64); err == nil {
		return b
	}
	if meta.Size > 0 && meta.Duration > 0 {
		return int64(float64(meta.Size*8) / meta.Duration)
	}
	return 0
}

func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

// parseRate reads ffprobe rationals such as "30000/1001".
func parseRate(rate string) float64 {
	nums := strings.Split(rate, "/")
	if len(nums) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(nums[0], 64)
	den, err2 := strconv.ParseFloat(nums[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}

func GetOptimalThreadCount() int {
	cpuCount := runtime.NumCPU()
	// Use 75% of available cores to prevent overload
	return int(math.Max(1, float64(cpuCount)*0.75))
}

// extractBitrateValue converts "2M" or "800k" to bits per second
func extractBitrateValue(bitrate string) int64 {
	value := strings.TrimRight(bitrate, "Mk")
	number, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 2_000_000 // Default to 2M if parsing fails
	}

	switch {
	case strings.HasSuffix(bitrate, "M"):
		return number * 1_000_000
	case strings.HasSuffix(bitrate, "k"):
		return number * 1_000
	}
	return number
}

// targetBitrate caps the profile bitrate at 105% of the input bitrate, so
// re-encoding never inflates a low-bitrate source.
func targetBitrate(profileBitrate string, inputBitrate int64) string {
	target := extractBitrateValue(profileBitrate)
	if inputBitrate > 0 {
		if ceiling := int64(float64(inputBitrate) * 1.05); target > ceiling {
			target = ceiling
		}
	}
	if target >= 1_000_000 && target%1_000_000 == 0 {
		return fmt.Sprintf("%dM", target/1_000_000)
	}
	return fmt.Sprintf("%dk", target/1000)
}
