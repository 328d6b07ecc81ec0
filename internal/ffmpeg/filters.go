package ffmpeg

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ZacxDev/video-editor/internal/render"
	"github.com/ZacxDev/video-editor/internal/session"
	"github.com/ZacxDev/video-editor/pkg/types"
)

// Color matrices at full strength, rows R, G, B. Partial amounts blend them
// with the identity the way the CSS filter functions do.
var (
	sepiaMatrix = [3][3]float64{
		{0.393, 0.769, 0.189},
		{0.349, 0.686, 0.168},
		{0.272, 0.534, 0.131},
	}
	grayscaleMatrix = [3][3]float64{
		{0.2126, 0.7152, 0.0722},
		{0.2126, 0.7152, 0.0722},
		{0.2126, 0.7152, 0.0722},
	}
)

// VideoFilters returns the -vf chain that renders plan: draw scale, geometry
// ops, centering on the canvas, adjustments, speed.
func VideoFilters(plan render.Plan) []string {
	var filters []string

	draw := plan.Draw.Even()
	if draw != plan.Source {
		filters = append(filters, fmt.Sprintf("scale=%d:%d", draw.Width, draw.Height))
	}

	for _, op := range plan.Geometry() {
		filters = append(filters, string(op))
	}

	drawn := draw
	if plan.Transform.QuarterTurns()%2 == 1 {
		drawn = draw.Swapped()
	}
	canvas := plan.Canvas.Even()
	if drawn.Width > canvas.Width || drawn.Height > canvas.Height {
		w, h := min(drawn.Width, canvas.Width), min(drawn.Height, canvas.Height)
		filters = append(filters, fmt.Sprintf("crop=%d:%d", w, h))
		drawn = render.Size{Width: w, Height: h}
	}
	if drawn != canvas {
		filters = append(filters, fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black", canvas.Width, canvas.Height))
	}

	for _, a := range plan.Adjustments {
		if f := AdjustmentFilter(a); f != "" {
			filters = append(filters, f)
		}
	}

	if plan.PlaybackRate != 1 {
		filters = append(filters, "setpts=PTS/"+num(plan.PlaybackRate))
	}

	return append(filters, "format=yuv420p")
}

// AudioFilters returns the -af chain: tempo for the playback rate, then
// volume.
func AudioFilters(plan render.Plan) []string {
	var filters []string
	if plan.PlaybackRate != 1 {
		for _, factor := range atempoChain(plan.PlaybackRate) {
			filters = append(filters, "atempo="+num(factor))
		}
	}
	if plan.Volume != 100 {
		filters = append(filters, "volume="+num(float64(plan.Volume)/100))
	}
	return filters
}

// atempoChain splits rate into factors inside atempo's [0.5, 2] range.
func atempoChain(rate float64) []float64 {
	var chain []float64
	for rate > 2 {
		chain = append(chain, 2)
		rate /= 2
	}
	for rate < 0.5 {
		chain = append(chain, 0.5)
		rate /= 0.5
	}
	return append(chain, rate)
}

// AdjustmentFilter maps one adjustment to the ffmpeg filter that reproduces
// its CSS counterpart. Identity values map to "".
func AdjustmentFilter(a session.Adjustment) string {
	v := a.Value
	switch a.Kind {
	case types.Brightness:
		if v == 1 {
			return ""
		}
		return fmt.Sprintf("colorchannelmixer=rr=%s:gg=%s:bb=%s", num(v), num(v), num(v))
	case types.Contrast:
		if v == 1 {
			return ""
		}
		return "eq=contrast=" + num(v)
	case types.Saturation:
		if v == 1 {
			return ""
		}
		return "eq=saturation=" + num(v)
	case types.Blur:
		if v == 0 {
			return ""
		}
		return "gblur=sigma=" + num(v)
	case types.Sepia:
		return mixer(sepiaMatrix, v)
	case types.Grayscale:
		return mixer(grayscaleMatrix, v)
	case types.Invert:
		if v == 0 {
			return ""
		}
		expr := fmt.Sprintf("val*%s+negval*%s", num(1-v), num(v))
		if v == 1 {
			expr = "negval"
		}
		return fmt.Sprintf("lutrgb=r=%s:g=%s:b=%s", expr, expr, expr)
	case types.HueRotate:
		if math.Mod(v, 360) == 0 {
			return ""
		}
		return "hue=h=" + num(v)
	default:
		return ""
	}
}

// mixer blends m with the identity by amount and renders a colorchannelmixer.
func mixer(m [3][3]float64, amount float64) string {
	amount = math.Max(0, math.Min(1, amount))
	if amount == 0 {
		return ""
	}
	channels := [3]string{"r", "g", "b"}
	parts := make([]string, 0, 9)
	for i, out := range channels {
		for j, in := range channels {
			identity := 0.0
			if i == j {
				identity = 1
			}
			coef := identity + (m[i][j]-identity)*amount
			parts = append(parts, fmt.Sprintf("%s%s=%s", out, in, num(coef)))
		}
	}
	return "colorchannelmixer=" + strings.Join(parts, ":")
}

// num prints v with at most four decimals and no trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}
