package session

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/ZacxDev/video-editor/internal/config"
	"github.com/ZacxDev/video-editor/pkg/types"
	"golang.org/x/exp/constraints"
)

// Adjustment is one active visual effect.
type Adjustment struct {
	Kind   types.AdjustmentKind `json:"kind"`
	Value  float64              `json:"value"`
	Effect string               `json:"effect"`
}

// kindAliases maps user-facing names (English and Spanish) to kinds.
var kindAliases = map[string]types.AdjustmentKind{
	"brightness":       types.Brightness,
	"brillo":           types.Brightness,
	"contrast":         types.Contrast,
	"contraste":        types.Contrast,
	"saturation":       types.Saturation,
	"saturate":         types.Saturation,
	"saturacion":       types.Saturation,
	"saturación":       types.Saturation,
	"blur":             types.Blur,
	"desenfoque":       types.Blur,
	"sepia":            types.Sepia,
	"grayscale":        types.Grayscale,
	"greyscale":        types.Grayscale,
	"grises":           types.Grayscale,
	"escala de grises": types.Grayscale,
	"invert":           types.Invert,
	"invertir":         types.Invert,
	"huerotate":        types.HueRotate,
	"hue-rotate":       types.HueRotate,
	"hue":              types.HueRotate,
	"matiz":            types.HueRotate,
}

// ResolveKind maps a kind name or alias to its canonical kind.
func ResolveKind(name string) (types.AdjustmentKind, bool) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

// KindAliases returns every alias that resolves to a kind. Longer aliases come
// first so substring scans match "escala de grises" before "grises".
func KindAliases() []string {
	aliases := make([]string, 0, len(kindAliases))
	for a := range kindAliases {
		aliases = append(aliases, a)
	}
	slices.SortFunc(aliases, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return aliases
}

// FormatEffect renders the effect string for a kind at value, e.g.
// "brightness(1.3)", "blur(2px)" or "hue-rotate(90deg)".
func FormatEffect(spec config.KindSpec, value float64) string {
	return fmt.Sprintf("%s(%s%s)", spec.Function, FormatNumber(value), spec.Unit)
}

// FormatNumber prints v without trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// roundToStep snaps v to the nearest multiple of step and drops float noise.
func roundToStep[T constraints.Float](v, step T) T {
	snapped := math.Round(float64(v/step)) * float64(step)
	return T(math.Round(snapped*1e6) / 1e6)
}

func copyAdjustments(in []Adjustment) []Adjustment {
	if in == nil {
		return nil
	}
	out := make([]Adjustment, len(in))
	copy(out, in)
	return out
}
