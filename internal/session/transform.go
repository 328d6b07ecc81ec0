package session

import (
	"fmt"
	"strings"
)

// Transform is the spatial transform applied on top of the source frame.
// Rotation is always one of 0, 90, 180 or 270.
type Transform struct {
	Rotation       int  `json:"rotation"`
	FlipHorizontal bool `json:"flipHorizontal"`
	FlipVertical   bool `json:"flipVertical"`
}

// IsIdentity reports whether the transform leaves the frame untouched.
func (t Transform) IsIdentity() bool {
	return t.Rotation == 0 && !t.FlipHorizontal && !t.FlipVertical
}

// QuarterTurns returns the rotation as a count of clockwise quarter turns.
func (t Transform) QuarterTurns() int {
	return t.Rotation / 90
}

// CSS renders the transform in concatenation order: rotation first, then the
// flips.
func (t Transform) CSS() string {
	var parts []string
	if t.Rotation != 0 {
		parts = append(parts, fmt.Sprintf("rotate(%ddeg)", t.Rotation))
	}
	if t.FlipHorizontal {
		parts = append(parts, "scaleX(-1)")
	}
	if t.FlipVertical {
		parts = append(parts, "scaleY(-1)")
	}
	return strings.Join(parts, " ")
}

func normalizeRotation(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}
