package assistant

import "strings"

// Intent is the conversational topic of a message that matched no command.
type Intent string

const (
	IntentGreeting      Intent = "greeting"
	IntentHelp          Intent = "help"
	IntentCommands      Intent = "commands"
	IntentFilters       Intent = "filters"
	IntentSpeed         Intent = "speed"
	IntentTransform     Intent = "transform"
	IntentExport        Intent = "export"
	IntentProblem       Intent = "problem"
	IntentCompliment    Intent = "compliment"
	IntentUpload        Intent = "upload"
	IntentApplyFilter   Intent = "apply_filter"
	IntentRemoveFilter  Intent = "remove_filter"
	IntentChangeSetting Intent = "change_setting"
	IntentRandomFilters Intent = "random_filters"
	IntentGeneral       Intent = "general"
)

// Emotion is the tone detected in a message.
type Emotion string

const (
	EmotionExcited    Emotion = "excited"
	EmotionFrustrated Emotion = "frustrated"
	EmotionGrateful   Emotion = "grateful"
	EmotionCurious    Emotion = "curious"
	EmotionNeutral    Emotion = "neutral"
)

type intentKeywords struct {
	intent   Intent
	keywords []string
}

// intents is checked in order; the first list with a hit wins.
var intents = []intentKeywords{
	{IntentGreeting, []string{"hola", "hi", "hello", "hey", "buenas", "saludos"}},
	{IntentHelp, []string{"ayuda", "help", "como", "que hago", "no se", "how"}},
	{IntentCommands, []string{"que puedes hacer", "comandos", "commands", "opciones", "options", "funciones", "que sabes hacer", "lista de comandos", "manual", "what can you do"}},
	{IntentFilters, []string{"filtro", "filtros", "efecto", "efectos", "filter", "filters", "effect", "effects", "brillo", "contraste"}},
	{IntentSpeed, []string{"velocidad", "speed", "rapido", "lento", "acelerar", "slow", "faster"}},
	{IntentTransform, []string{"rotar", "voltear", "rotate", "flip", "girar"}},
	{IntentExport, []string{"exportar", "descargar", "guardar", "export", "download", "save"}},
	{IntentProblem, []string{"error", "problema", "no funciona", "bug", "problem", "broken", "not working"}},
	{IntentCompliment, []string{"gracias", "genial", "perfecto", "excelente", "thanks", "great", "awesome"}},
	{IntentUpload, []string{"cargar", "subir", "video", "archivo", "upload", "file", "load"}},
	{IntentApplyFilter, []string{"aplicar", "aplicame", "aplica", "pon", "agrega", "anade", "apply", "add"}},
	{IntentRemoveFilter, []string{"quitar", "quita", "remover", "eliminar", "sacar", "remove", "delete"}},
	{IntentChangeSetting, []string{"cambiar", "ajustar", "modificar", "poner", "change", "adjust", "set"}},
	{IntentRandomFilters, []string{"random", "aleatorio", "aleatorios", "sorprendeme", "casuales", "surprise"}},
}

// ClassifyIntent returns the intent of normalized text.
func ClassifyIntent(text string) Intent {
	for _, in := range intents {
		if containsAny(text, in.keywords...) {
			return in.intent
		}
	}
	return IntentGeneral
}

// ClassifyEmotion guesses the tone of normalized text from punctuation and a
// few keywords.
func ClassifyEmotion(text string) Emotion {
	switch {
	case strings.Contains(text, "!") || containsAny(text, "genial", "perfecto", "great", "awesome"):
		return EmotionExcited
	case containsAny(text, "problema", "error", "no funciona", "problem", "not working"):
		return EmotionFrustrated
	case containsAny(text, "gracias", "excelente", "thanks", "thank you"):
		return EmotionGrateful
	case strings.Contains(text, "?") || containsAny(text, "como", "ayuda", "how", "help"):
		return EmotionCurious
	default:
		return EmotionNeutral
	}
}
