package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ZacxDev/video-editor/internal/config"
	"github.com/ZacxDev/video-editor/internal/logging"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Event is an editor notification the assistant comments on.
type Event string

const (
	EventVideoLoaded    Event = "video_loaded"
	EventFilterApplied  Event = "filter_applied"
	EventCutCreated     Event = "cut_created"
	EventExportStarted  Event = "export_started"
	EventExportComplete Event = "export_complete"
	EventExportFailed   Event = "export_failed"
)

// Scheduled is one reply line and the delay before it is shown.
type Scheduled struct {
	Text  string        `json:"text"`
	Delay time.Duration `json:"delay"`
}

// Schedule spaces lines stagger apart, starting immediately.
func Schedule(lines []string, stagger time.Duration) []Scheduled {
	out := make([]Scheduled, len(lines))
	for i, l := range lines {
		out[i] = Scheduled{Text: l, Delay: time.Duration(i) * stagger}
	}
	return out
}

// Assistant couples a router with the conversation transcript.
type Assistant struct {
	router     *Router
	transcript *Transcript
	stagger    time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// Config configures an Assistant. Zero values select the defaults, except
// Stagger where zero means no delay.
type Config struct {
	Stagger time.Duration
	Now     func() time.Time
	Logger  *zap.Logger
}

// DefaultConfig uses the default reply stagger.
func DefaultConfig(logger *zap.Logger) Config {
	return Config{Stagger: config.DefaultReplyStagger, Logger: logger}
}

// New creates an assistant that drives caps.
func New(caps Capabilities, cfg Config, opts ...Option) *Assistant {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Assistant{
		router:     NewRouter(caps, opts...),
		transcript: &Transcript{},
		stagger:    cfg.Stagger,
		now:        cfg.Now,
		logger:     logging.WithComponent(cfg.Logger, "assistant"),
	}
}

func (a *Assistant) Router() *Router         { return a.router }
func (a *Assistant) Transcript() *Transcript { return a.transcript }
func (a *Assistant) Stagger() time.Duration  { return a.stagger }

// Respond records text, routes it and records the reply lines at the times
// they are scheduled to appear.
func (a *Assistant) Respond(text string) Reply {
	reply := a.router.Route(text)
	if len(reply.Lines) == 0 {
		return reply
	}

	now := a.now()
	turns := []ChatTurn{{Text: text, Author: AuthorUser, Timestamp: now}}
	for _, s := range Schedule(reply.Lines, a.stagger) {
		turns = append(turns, ChatTurn{Text: s.Text, Author: AuthorAssistant, Timestamp: now.Add(s.Delay)})
	}
	a.transcript.Append(turns...)

	a.logger.Debug("chat message routed",
		zap.String("command", reply.Command),
		zap.String("intent", string(reply.Intent)),
		zap.String("emotion", string(reply.Emotion)),
		zap.String("kind", string(reply.Kind)),
		zap.Int("lines", len(reply.Lines)),
	)
	return reply
}

// Deliver hands the lines of reply to show one by one, waiting the stagger
// between them. It stops early when ctx is done.
func (a *Assistant) Deliver(ctx context.Context, reply Reply, show func(string)) error {
	for _, s := range Schedule(reply.Lines, a.stagger) {
		if s.Delay > 0 {
			timer := time.NewTimer(a.stagger)
			select {
			case <-ctx.Done():
				timer.Stop()
				return errors.WithStack(ctx.Err())
			case <-timer.C:
			}
		}
		show(s.Text)
	}
	return nil
}

// Notify records the assistant's comment on an editor event and returns it.
// Unknown events produce no turn.
func (a *Assistant) Notify(event Event, detail string) (string, bool) {
	var text string
	switch event {
	case EventVideoLoaded:
		text = fmt.Sprintf("Perfect! Video loaded: %s. What do we edit first?", detail)
	case EventFilterApplied:
		text = fmt.Sprintf("Filter %s applied. Do you like the result?", detail)
	case EventCutCreated:
		text = fmt.Sprintf("Cut created at %s. Need more cuts?", detail)
	case EventExportStarted:
		text = "Exporting your video! This will take a few seconds..."
	case EventExportComplete:
		text = strings.TrimSpace("Video exported successfully! 🎉 " + detail)
	case EventExportFailed:
		text = "Export failed: " + detail
	default:
		return "", false
	}
	a.transcript.Append(ChatTurn{Text: text, Author: AuthorAssistant, Timestamp: a.now()})
	return text, true
}
