package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		key  string
		want Action
	}{
		{"space", ActionTogglePlay},
		{" ", ActionTogglePlay},
		{"S", ActionStop},
		{"ArrowLeft", ActionSeekBackward},
		{"ArrowRight", ActionSeekForward},
		{"ArrowUp", ActionVolumeUp},
		{"ArrowDown", ActionVolumeDown},
		{"o", ActionToggleFullscreen},
		{"R", ActionRandomFilters},
		{"c", ActionClearFilters},
		{"ctrl+z", ActionUndo},
		{"Ctrl+Y", ActionRedo},
		{"meta+z", ActionUndo},
		{"z", ActionNone},
		{"ctrl+s", ActionNone},
		{"x", ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Lookup(Parse(tt.key), false))
		})
	}
}

func TestLookup_IgnoredWhileTyping(t *testing.T) {
	assert.Equal(t, ActionNone, Lookup(Parse("space"), true))
	assert.Equal(t, ActionNone, Lookup(Parse("ctrl+z"), true))
}

func TestParse(t *testing.T) {
	assert.Equal(t, Key{Name: "z", Ctrl: true}, Parse("ctrl+z"))
	assert.Equal(t, Key{Name: "+"}, Parse("+"))
	assert.Equal(t, Key{Name: "ArrowLeft"}, Parse("ArrowLeft"))
}
