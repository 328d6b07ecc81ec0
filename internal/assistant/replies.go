package assistant

import (
	"fmt"
	"strings"

	"github.com/ZacxDev/video-editor/internal/config"
	"github.com/ZacxDev/video-editor/internal/session"
)

var greetings = []string{
	"Hi! Ready to make something great? 🎬",
	"Hello! I'm your personal video editor. What are we making today?",
	"Greetings! Which video project are we working on?",
}

// generalReplies answer messages nothing else understood.
var generalReplies = []string{
	"Interesting... Could you be more specific about your video project?",
	"Tell me more. What kind of edit do you need?",
	"I'm not sure I follow. Do you mean a specific editing feature?",
	"Hmm, could you rephrase that? I want to help you the best I can.",
}

func (r *Router) converse(text string, intent Intent, emotion Emotion) Reply {
	reply := Reply{Intent: intent, Emotion: emotion}

	switch emotion {
	case EmotionExcited:
		reply.Lines = append(reply.Lines, "Love the energy! 🚀")
	case EmotionFrustrated:
		reply.Lines = append(reply.Lines, "I understand the frustration. Let's sort it out together 💪")
	case EmotionGrateful:
		reply.Lines = append(reply.Lines, "You're welcome! Glad I could help 😊")
	}

	hasVideo := r.caps.HasVideo()
	if !hasVideo {
		reply.Lines = append(reply.Lines, "Looks like you haven't loaded a video yet.")
	}

	switch intent {
	case IntentGreeting:
		reply.Lines = append(reply.Lines, r.pick(greetings))
	case IntentHelp:
		if hasVideo {
			reply.Lines = append(reply.Lines, "🎨 Apply filters • ⚡ change speed or transforms • 💾 export. What shall we do?")
		} else {
			reply.Lines = append(reply.Lines, "Load a video first and then you can edit it. Do you have one ready?")
		}
	case IntentCommands:
		reply.Lines = append(reply.Lines, r.commandLines()...)
	case IntentFilters:
		res := r.caps.GetAvailableFilters()
		reply.Result = &res
		reply.Lines = append(reply.Lines, res.Message)
	case IntentSpeed:
		reply.Lines = append(reply.Lines, fmt.Sprintf("Speed goes from %sx to %sx. Try \"speed 2x\" or \"slow motion\".",
			session.FormatNumber(config.MinPlaybackRate), session.FormatNumber(config.MaxPlaybackRate)))
	case IntentTransform:
		reply.Lines = append(reply.Lines, "Transforms: rotate 90°/180°/270°, flip horizontal or vertical. A new angle for your video!")
	case IntentExport:
		if hasVideo {
			reply.Lines = append(reply.Lines, "Export renders every edit into a new file ending in \""+config.EditedSuffix+"\". If recording fails you get the original back.")
		} else {
			reply.Lines = append(reply.Lines, "Load a video first to export it.")
		}
	case IntentProblem:
		reply.Lines = append(reply.Lines, "🔄 Check that ffmpeg is installed • 📹 use a supported format (MP4/WebM/AVI) • 💻 check free disk space. What exactly happens?")
	case IntentCompliment:
		reply.Lines = append(reply.Lines, "Glad you like it! What's next?")
	case IntentUpload:
		reply.Lines = append(reply.Lines, "Open a video file to start editing. Formats: MP4, WebM, AVI.")
	case IntentApplyFilter:
		reply.Lines = append(reply.Lines,
			"You didn't say which filter to apply.",
			"Available filters: brightness, contrast, saturation, blur, sepia, grayscale, invert, hue",
			"Example: \"apply brightness\" or \"contrast 1.5\"",
		)
	case IntentRemoveFilter:
		reply.Lines = append(reply.Lines,
			"You didn't say which filter to remove.",
			"Example: \"remove brightness\" or \"remove all filters\"",
		)
	case IntentChangeSetting:
		reply.Lines = append(reply.Lines, settingHint(text))
	case IntentRandomFilters:
		res := r.caps.ApplyRandomFilters(0)
		reply.Result = &res
		reply.Kind = res.Kind
		if res.Success {
			reply.Lines = append(reply.Lines, randomLines(res, nil)...)
		} else {
			reply.Lines = append(reply.Lines, res.Message)
		}
	default:
		reply.Kind = session.KindUnrecognizedCommand
		reply.Lines = append(reply.Lines, r.pick(generalReplies))
	}
	return reply
}

func (r *Router) commandLines() []string {
	return []string{
		"Here's what I can do:",
		"🎨 Filters: \"brightness\", \"sepia 0.5\", \"remove blur\", \"clear\"",
		"🎬 Presets: " + strings.Join(r.presetNames, ", ") + ", or \"recommend\"",
		"⚡ Speed and volume: \"speed 2x\", \"slow motion\", \"volume 50\"",
		"🔄 Transform: \"rotate 180\", \"flip\", \"flip vertical\"",
		"🎲 Also: \"random 3\", \"undo\", \"redo\", \"split\", \"segments\", \"analyze\"",
	}
}

// settingHint explains the expected argument for a setting named without a
// value.
func settingHint(text string) string {
	switch {
	case containsAny(text, "velocidad", "speed"):
		return "Tell me the speed. Example: \"speed 2x\" or \"speed 0.5\""
	case containsAny(text, "volumen", "volume"):
		return "Tell me the volume. Example: \"volume 80\" or \"volume 50%\""
	case containsAny(text, "rotacion", "rotation", "angulo", "angle"):
		return "Tell me the degrees. Example: \"rotate 90\" or \"rotate 180\""
	default:
		return "I didn't catch which setting to change. I can adjust: speed, volume, rotation, flip."
	}
}

func (r *Router) pick(pool []string) string {
	return pool[r.rng.IntN(len(pool))]
}
