package videoeditor

import (
	"fmt"
	"strings"

	"github.com/ZacxDev/video-editor/internal/assistant"
	"github.com/ZacxDev/video-editor/internal/config"
	"github.com/ZacxDev/video-editor/internal/keys"
	"github.com/ZacxDev/video-editor/internal/session"
)

// HandleKey runs the shortcut bound to k. Presses are ignored while a text
// field has focus.
func (e *Editor) HandleKey(k keys.Key, textFocused bool) assistant.Result {
	action := keys.Lookup(k, textFocused)
	switch action {
	case keys.ActionNone:
		return assistant.Fail(session.NewError(session.KindUnrecognizedCommand, "No shortcut for %q", k.Name))
	case keys.ActionRandomFilters:
		res := e.ApplyRandomFilters(0)
		if effects, ok := res.Extra["filters"].([]string); ok {
			e.assistant.Notify(assistant.EventFilterApplied, strings.Join(effects, ", "))
		}
		return res
	case keys.ActionClearFilters:
		return e.ClearAllFilters()
	case keys.ActionUndo:
		return e.Undo()
	case keys.ActionRedo:
		return e.Redo()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	switch action {
	case keys.ActionTogglePlay:
		playing, err := e.session.TogglePlay()
		if err != nil {
			return assistant.Fail(err)
		}
		msg := "Paused"
		if playing {
			msg = "Playing"
		}
		return assistant.OK(msg, e.playbackExtra())
	case keys.ActionStop:
		if err := e.session.Stop(); err != nil {
			return assistant.Fail(err)
		}
		return assistant.OK("Stopped", e.playbackExtra())
	case keys.ActionSeekBackward, keys.ActionSeekForward:
		delta := session.SeekStepSeconds
		if action == keys.ActionSeekBackward {
			delta = -delta
		}
		pos, err := e.session.Seek(delta)
		if err != nil {
			return assistant.Fail(err)
		}
		return assistant.OK("Position "+seconds(pos), e.playbackExtra())
	case keys.ActionVolumeUp, keys.ActionVolumeDown:
		delta := config.VolumeStep
		if action == keys.ActionVolumeDown {
			delta = -delta
		}
		v, err := e.session.AdjustVolume(delta)
		if err != nil {
			return assistant.Fail(err)
		}
		return assistant.OK(fmt.Sprintf("Volume set to %d%%", v), map[string]interface{}{"volume": v})
	case keys.ActionToggleFullscreen:
		on, err := e.session.ToggleFullscreen()
		if err != nil {
			return assistant.Fail(err)
		}
		msg := "Fullscreen off"
		if on {
			msg = "Fullscreen on"
		}
		return assistant.OK(msg, e.playbackExtra())
	}
	return assistant.Fail(session.NewError(session.KindUnrecognizedCommand, "No shortcut for %q", k.Name))
}

func (e *Editor) playbackExtra() map[string]interface{} {
	return map[string]interface{}{"playback": e.session.Playback()}
}

// Seek moves the playback position to t seconds.
func (e *Editor) Seek(t float64) assistant.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos, err := e.session.SeekTo(t)
	if err != nil {
		return assistant.Fail(err)
	}
	return assistant.OK("Position "+seconds(pos), e.playbackExtra())
}

// PreviewFilter sets a filter value live, as a slider drag does. Nothing is
// recorded until CommitPreview.
func (e *Editor) PreviewFilter(name string, value float64) assistant.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, err := e.session.PreviewAdjustment(name, value)
	if err != nil {
		return assistant.Fail(err)
	}
	return assistant.OK(
		fmt.Sprintf("Previewing %s at %s", e.label(a.Kind), session.FormatNumber(a.Value)),
		map[string]interface{}{"kind": a.Kind, "value": a.Value, "filter": e.session.FilterCSS()},
	)
}

func (e *Editor) CommitPreview() assistant.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	committed, err := e.session.CommitPreview()
	if err != nil {
		return assistant.Fail(err)
	}
	msg := "Preview saved"
	if !committed {
		msg = "Nothing to save"
	}
	return assistant.OK(msg, e.historyExtra())
}

func (e *Editor) CancelPreview() assistant.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.session.CancelPreview(); err != nil {
		return assistant.Fail(err)
	}
	return assistant.OK("Preview discarded", map[string]interface{}{"filter": e.session.FilterCSS()})
}
