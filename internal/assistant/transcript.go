package assistant

import (
	"sync"
	"time"
)

// Author identifies who wrote a chat turn.
type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

// ChatTurn is one line of the conversation.
type ChatTurn struct {
	Text      string    `json:"text"`
	Author    Author    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is an append-only conversation log, safe for concurrent use.
type Transcript struct {
	mu    sync.RWMutex
	turns []ChatTurn
}

func (t *Transcript) Append(turns ...ChatTurn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = append(t.turns, turns...)
}

// Turns returns a copy of the log.
func (t *Transcript) Turns() []ChatTurn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]ChatTurn, len(t.turns))
	copy(out, t.turns)
	return out
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}
