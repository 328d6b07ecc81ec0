package assistant

import (
	"math/rand/v2"
	"time"

	"github.com/ZacxDev/video-editor/internal/config"
	"github.com/ZacxDev/video-editor/internal/session"
)

// Reply is what the router answers to one message.
type Reply struct {
	Lines   []string          `json:"lines"`
	Command string            `json:"command,omitempty"`
	Intent  Intent            `json:"intent,omitempty"`
	Emotion Emotion           `json:"emotion,omitempty"`
	Result  *Result           `json:"result,omitempty"`
	Kind    session.ErrorKind `json:"kind,omitempty"`
}

// Router turns chat text into capability calls. Rules are evaluated in slice
// order and the first match wins; messages that match no rule get a
// conversational reply chosen by intent and emotion.
type Router struct {
	caps        Capabilities
	rng         *rand.Rand
	kindWords   []string
	presetWords []string
	presetNames []string
	rules       []Rule
}

// Option configures a Router.
type Option func(*Router)

// WithTuning takes preset names and aliases from t.
func WithTuning(t *config.Tuning) Option {
	return func(r *Router) {
		r.presetWords, r.presetNames = presetVocabulary(t)
	}
}

// WithRand fixes the source used to pick general replies.
func WithRand(rng *rand.Rand) Option {
	return func(r *Router) {
		r.rng = rng
	}
}

// NewRouter creates a router bound to caps.
func NewRouter(caps Capabilities, opts ...Option) *Router {
	r := &Router{caps: caps}
	for _, opt := range opts {
		opt(r)
	}
	if r.presetWords == nil {
		r.presetWords, r.presetNames = presetVocabulary(config.DefaultTuning())
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x2545f4914f6cdd1d))
	}
	r.kindWords = kindVocabulary()
	r.rules = buildRules(r.kindWords, r.presetWords)
	return r
}

// Rules returns the direct commands in evaluation order.
func (r *Router) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Route answers text. Empty input yields an empty reply.
func (r *Router) Route(text string) Reply {
	norm := Normalize(text)
	if norm == "" {
		return Reply{}
	}

	for _, rule := range r.rules {
		args, ok := rule.Match(norm)
		if !ok {
			continue
		}
		res := rule.Run(r.caps, args)
		lines := []string{res.Message}
		if res.Success && rule.Lines != nil {
			lines = rule.Lines(res, args)
		}
		return Reply{Lines: lines, Command: rule.Name, Result: &res, Kind: res.Kind}
	}

	return r.converse(norm, ClassifyIntent(norm), ClassifyEmotion(norm))
}

func kindVocabulary() []string {
	seen := make(map[string]bool)
	var words []string
	for _, a := range session.KindAliases() {
		n := Normalize(a)
		if !seen[n] {
			seen[n] = true
			words = append(words, n)
		}
	}
	return words
}

func presetVocabulary(t *config.Tuning) (words, names []string) {
	for _, p := range t.Presets {
		names = append(names, p.Name)
		words = append(words, Normalize(p.Name))
		for _, a := range p.Aliases {
			words = append(words, Normalize(a))
		}
	}
	return words, names
}
