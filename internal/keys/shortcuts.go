package keys

import "strings"

// Action is what a shortcut asks the editor to do.
type Action string

const (
	ActionNone             Action = ""
	ActionTogglePlay       Action = "toggle_play"
	ActionStop             Action = "stop"
	ActionSeekBackward     Action = "seek_backward"
	ActionSeekForward      Action = "seek_forward"
	ActionVolumeUp         Action = "volume_up"
	ActionVolumeDown       Action = "volume_down"
	ActionToggleFullscreen Action = "toggle_fullscreen"
	ActionRandomFilters    Action = "random_filters"
	ActionClearFilters     Action = "clear_filters"
	ActionUndo             Action = "undo"
	ActionRedo             Action = "redo"
)

// Key is one key press.
type Key struct {
	Name string // "space", "s", "arrowleft", "z", ...
	Ctrl bool
	Meta bool
}

var plain = map[string]Action{
	"space":      ActionTogglePlay,
	" ":          ActionTogglePlay,
	"s":          ActionStop,
	"arrowleft":  ActionSeekBackward,
	"left":       ActionSeekBackward,
	"arrowright": ActionSeekForward,
	"right":      ActionSeekForward,
	"arrowup":    ActionVolumeUp,
	"up":         ActionVolumeUp,
	"arrowdown":  ActionVolumeDown,
	"down":       ActionVolumeDown,
	"o":          ActionToggleFullscreen,
	"r":          ActionRandomFilters,
	"c":          ActionClearFilters,
}

var withCtrl = map[string]Action{
	"z": ActionUndo,
	"y": ActionRedo,
}

// Lookup maps a key press to its action. Shortcuts are ignored while a text
// field has focus so typing never triggers them.
func Lookup(k Key, textFocused bool) Action {
	if textFocused {
		return ActionNone
	}
	name := strings.ToLower(k.Name)
	if name != " " {
		name = strings.TrimSpace(name)
	}
	if k.Ctrl || k.Meta {
		return withCtrl[name]
	}
	return plain[name]
}

// Parse reads a key description such as "space", "ArrowLeft" or "ctrl+z".
func Parse(s string) Key {
	var k Key
	parts := strings.Split(s, "+")
	if s == "+" || len(parts) == 1 {
		k.Name = s
		return k
	}
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "ctrl", "control":
			k.Ctrl = true
		case "cmd", "meta":
			k.Meta = true
		}
	}
	k.Name = parts[len(parts)-1]
	return k
}
