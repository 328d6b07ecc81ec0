package session

import (
	"time"

	"github.com/ZacxDev/video-editor/internal/config"
)

// Entry is an immutable snapshot of the undoable state.
type Entry struct {
	Adjustments []Adjustment
	Transform   Transform
	Timestamp   time.Time
}

// History is a bounded linear undo history. The cursor always points at the
// entry matching the live state.
type History struct {
	entries  []Entry
	cursor   int
	capacity int
}

// NewHistory creates an empty history holding at most capacity entries.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = config.DefaultHistoryCapacity
	}
	return &History{cursor: -1, capacity: capacity}
}

// Push records e as the newest entry. Entries past the cursor are dropped and
// the oldest entry is evicted when the history is full.
func (h *History) Push(e Entry) {
	e.Adjustments = copyAdjustments(e.Adjustments)
	h.entries = append(h.entries[:h.cursor+1], e)
	if len(h.entries) > h.capacity {
		trimmed := make([]Entry, h.capacity)
		copy(trimmed, h.entries[len(h.entries)-h.capacity:])
		h.entries = trimmed
	}
	h.cursor = len(h.entries) - 1
}

// Undo steps the cursor back and returns the entry to restore.
func (h *History) Undo() (Entry, bool) {
	if !h.CanUndo() {
		return Entry{}, false
	}
	h.cursor--
	return h.current(), true
}

// Redo steps the cursor forward and returns the entry to restore.
func (h *History) Redo() (Entry, bool) {
	if !h.CanRedo() {
		return Entry{}, false
	}
	h.cursor++
	return h.current(), true
}

func (h *History) current() Entry {
	e := h.entries[h.cursor]
	e.Adjustments = copyAdjustments(e.Adjustments)
	return e
}

func (h *History) CanUndo() bool { return h.cursor > 0 }
func (h *History) CanRedo() bool { return h.cursor >= 0 && h.cursor < len(h.entries)-1 }
func (h *History) Len() int      { return len(h.entries) }
func (h *History) Cursor() int   { return h.cursor }
func (h *History) Capacity() int { return h.capacity }

// Reset empties the history.
func (h *History) Reset() {
	h.entries = nil
	h.cursor = -1
}
