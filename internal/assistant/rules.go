package assistant

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ZacxDev/video-editor/internal/config"
	"github.com/ZacxDev/video-editor/internal/session"
)

// Rule is one direct command. Match inspects normalized text and returns the
// captured arguments; Run invokes exactly one capability; Lines renders a
// successful Result (failures reply with the Result message alone).
type Rule struct {
	Name  string
	Match func(text string) ([]string, bool)
	Run   func(c Capabilities, args []string) Result
	Lines func(r Result, args []string) []string
}

var (
	speedPattern       = regexp.MustCompile(`(?:velocidad|speed)\s*(?:a\s+|to\s+|at\s+)?(\d+(?:\.\d+)?)\s*x?`)
	volumePattern      = regexp.MustCompile(`(?:volumen|volume)\s*(?:a\s+|al\s+|to\s+|at\s+)?(\d+)\s*%?`)
	rotatePattern      = regexp.MustCompile(`(?:^|[^\w-])(?:rotar|rotate|girar)\s*(?:a\s+|by\s+|to\s+)?(\d+)`)
	randomCountPattern = regexp.MustCompile(`(\d+)\s+(?:filtros?\s+|filters?\s+)?(?:random|aleatorios?)|(?:random|aleatorios?)\s+(?:filtros?\s+|filters?\s+)?(\d+)`)
)

var (
	removeWords    = []string{"quitar", "quita", "remover", "eliminar", "elimina", "sacar", "saca", "remove", "delete"}
	clearWords     = []string{"limpiar", "limpia", "borrar", "clear", "reset"}
	everythingWord = []string{"todos", "todo", "all", "everything"}
	flipWords      = []string{"voltear", "voltea", "flip", "espejo", "mirror"}
)

// numericRule matches pattern and hands the first non-empty group to run.
func numericRule(name string, pattern *regexp.Regexp, run func(Capabilities, string) Result, lines func(Result, []string) []string) Rule {
	return Rule{
		Name: name,
		Match: func(text string) ([]string, bool) {
			m := pattern.FindStringSubmatch(text)
			if m == nil {
				return nil, false
			}
			for _, g := range m[1:] {
				if g != "" {
					return []string{g}, true
				}
			}
			return nil, false
		},
		Run: func(c Capabilities, args []string) Result {
			return run(c, args[0])
		},
		Lines: lines,
	}
}

// wordRule matches when any of words appears in the text.
func wordRule(name string, words []string, run func(Capabilities, string) Result, lines func(Result, []string) []string) Rule {
	return Rule{
		Name: name,
		Match: func(text string) ([]string, bool) {
			w, ok := firstWord(text, words)
			if !ok {
				return nil, false
			}
			return []string{w}, true
		},
		Run: func(c Capabilities, args []string) Result {
			return run(c, args[0])
		},
		Lines: lines,
	}
}

// buildRules returns the direct commands in priority order. Numeric captures
// come first, then specific phrases before the words they contain.
func buildRules(kindWords, presetWords []string) []Rule {
	filterValuePattern := regexp.MustCompile(`(?:^|[^\w-])(` + quoteAll(kindWords) + `)\s+(?:a\s+|al\s+|to\s+|at\s+)?(\d+(?:\.\d+)?)`)

	return []Rule{
		numericRule("speed", speedPattern, func(c Capabilities, v string) Result {
			rate, _ := strconv.ParseFloat(v, 64)
			return c.ChangeVideoSpeed(rate)
		}, prefixed("⚡", "Perfect for special effects!")),

		numericRule("volume", volumePattern, func(c Capabilities, v string) Result {
			percent, _ := strconv.Atoi(v)
			return c.ChangeVideoVolume(percent)
		}, prefixed("🔊", "")),

		numericRule("rotate-degrees", rotatePattern, func(c Capabilities, v string) Result {
			deg, _ := strconv.Atoi(v)
			return c.RotateVideo(deg)
		}, prefixed("🔄", "A new angle, a new perspective!")),

		{
			Name: "filter-value",
			Match: func(text string) ([]string, bool) {
				m := filterValuePattern.FindStringSubmatch(text)
				if m == nil {
					return nil, false
				}
				return m[1:3], true
			},
			Run: func(c Capabilities, args []string) Result {
				v, _ := strconv.ParseFloat(args[1], 64)
				return c.ApplyFilter(args[0], &v)
			},
			Lines: filterLines,
		},

		numericRule("random-count", randomCountPattern, func(c Capabilities, v string) Result {
			n, _ := strconv.Atoi(v)
			if n > config.MaxRandomFromChat {
				return Result{
					Kind:    session.KindOutOfRange,
					Message: fmt.Sprintf("At most %d random filters. Want me to apply %d?", config.MaxRandomFromChat, config.MaxRandomFromChat),
				}
			}
			return c.ApplyRandomFilters(n)
		}, randomLines),

		{
			Name: "clear-all",
			Match: func(text string) ([]string, bool) {
				ok := (containsAny(text, removeWords...) || containsAny(text, clearWords...)) &&
					containsAny(text, everythingWord...)
				return nil, ok
			},
			Run:   func(c Capabilities, _ []string) Result { return c.ClearAllFilters() },
			Lines: clearLines,
		},

		{
			Name: "remove",
			Match: func(text string) ([]string, bool) {
				if !containsAny(text, removeWords...) {
					return nil, false
				}
				kind, ok := firstWord(text, kindWords)
				if !ok {
					return nil, false
				}
				return []string{kind}, true
			},
			Run: func(c Capabilities, args []string) Result { return c.RemoveFilter(args[0]) },
			Lines: func(r Result, _ []string) []string {
				return []string{"✅ " + r.Message, "Want another filter, or are you happy with it?"}
			},
		},

		{
			Name: "flip-vertical",
			Match: func(text string) ([]string, bool) {
				return nil, containsAny(text, flipWords...) && containsWord(text, "vertical")
			},
			Run:   func(c Capabilities, _ []string) Result { return c.FlipVideo("vertical") },
			Lines: prefixed("🔄", "Like a mirror!"),
		},

		wordRule("undo", []string{"deshacer", "deshaz", "undo"}, func(c Capabilities, _ string) Result {
			return c.Undo()
		}, nil),

		wordRule("redo", []string{"rehacer", "rehaz", "redo"}, func(c Capabilities, _ string) Result {
			return c.Redo()
		}, nil),

		wordRule("split-info", []string{"segmentos", "segments", "info de cortes", "split info", "cortes"}, func(c Capabilities, _ string) Result {
			return c.GetSplitInfo()
		}, nil),

		wordRule("split", []string{"dividir", "divide", "cortar", "corta", "corte", "split", "cut"}, func(c Capabilities, _ string) Result {
			return c.SplitVideo()
		}, prefixed("✂️", "Need more cuts?")),

		wordRule("analyze", []string{"analizar", "analiza", "analisis", "analyze", "analysis", "estadisticas", "stats"}, func(c Capabilities, _ string) Result {
			return c.AnalyzeVideo()
		}, prefixed("📊", "")),

		wordRule("recommend", []string{"recomienda", "recomiendame", "recomendacion", "recomendados", "recommend", "recommended", "recommendation"}, func(c Capabilities, _ string) Result {
			return c.ApplyRecommendedFilters()
		}, presetLines),

		wordRule("list-filters", []string{"filtros disponibles", "lista de filtros", "que filtros", "available filters", "list filters", "which filters"}, func(c Capabilities, _ string) Result {
			return c.GetAvailableFilters()
		}, nil),

		wordRule("preset", presetWords, func(c Capabilities, name string) Result {
			return c.ApplyFilterCombination(name)
		}, presetLines),

		wordRule("filter", kindWords, func(c Capabilities, name string) Result {
			return c.ApplyFilter(name, nil)
		}, filterLines),

		wordRule("slow-motion", []string{"camara lenta", "slow motion", "slowmo", "lento"}, func(c Capabilities, _ string) Result {
			return c.ChangeVideoSpeed(0.5)
		}, prefixed("⚡", "Effect applied!")),

		wordRule("fast", []string{"rapido", "fast", "acelerar"}, func(c Capabilities, _ string) Result {
			return c.ChangeVideoSpeed(2)
		}, prefixed("⚡", "Effect applied!")),

		wordRule("normal-speed", []string{"normal"}, func(c Capabilities, _ string) Result {
			return c.ChangeVideoSpeed(1)
		}, prefixed("⚡", "Effect applied!")),

		wordRule("rotate", []string{"rotar", "rota", "rotate", "girar", "gira"}, func(c Capabilities, _ string) Result {
			return c.RotateVideo(90)
		}, prefixed("🔄", "A new perspective!")),

		wordRule("flip", flipWords, func(c Capabilities, _ string) Result {
			return c.FlipVideo("horizontal")
		}, prefixed("🔄", "Like a mirror!")),

		wordRule("clear", clearWords, func(c Capabilities, _ string) Result {
			return c.ClearAllFilters()
		}, clearLines),

		wordRule("random", []string{"random", "aleatorio", "aleatorios", "sorprendeme", "surprise me"}, func(c Capabilities, _ string) Result {
			return c.ApplyRandomFilters(0)
		}, randomLines),
	}
}

func quoteAll(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}

// prefixed renders "<icon> <message>. <tail>".
func prefixed(icon, tail string) func(Result, []string) []string {
	return func(r Result, _ []string) []string {
		line := icon + " " + r.Message
		if tail != "" {
			line += ". " + tail
		}
		return []string{line}
	}
}

func filterLines(r Result, _ []string) []string {
	return []string{"✨ " + r.Message, "Like the result? I can tweak it or apply another filter."}
}

func clearLines(Result, []string) []string {
	return []string{"✅ All filters removed. Video restored to the original."}
}

func presetLines(r Result, _ []string) []string {
	lines := []string{"🎨 " + r.Message}
	if filters := extraStrings(r, "filters"); len(filters) > 0 {
		lines = append(lines, "Filters: "+strings.Join(filters, ", "))
	}
	return append(lines, "Perfect for a professional touch!")
}

func randomLines(r Result, _ []string) []string {
	filters := extraStrings(r, "filters")
	return []string{
		fmt.Sprintf("🎨 Random magic applied! %d surprise filters", len(filters)),
		"Filters: " + strings.Join(filters, ", "),
		"Like the combination? I can roll another one!",
	}
}

func extraStrings(r Result, key string) []string {
	if r.Extra == nil {
		return nil
	}
	s, _ := r.Extra[key].([]string)
	return s
}
