package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ZacxDev/video-editor/internal/assistant"
	"github.com/ZacxDev/video-editor/internal/config"
	"github.com/ZacxDev/video-editor/internal/keys"
	"github.com/ZacxDev/video-editor/internal/logging"
	"github.com/ZacxDev/video-editor/pkg/videoeditor"
	"github.com/fatih/color"
)

var (
	assistantColor = color.New(color.FgCyan)
	errorColor     = color.New(color.FgRed)
	promptColor    = color.New(color.FgGreen, color.Bold)
	dimColor       = color.New(color.Faint)
)

// repl runs the chat loop for one editor. seen counts the transcript turns
// already printed so editor notifications are shown once.
type repl struct {
	editor *videoeditor.Editor
	out    io.Writer
	seen   int
}

func runChat(ctx context.Context, opts *config.ChatOptions, in io.Reader, out io.Writer) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	if opts.TuningPath == "" {
		opts.TuningPath = env.TuningPath
	}
	tuning, err := config.LoadTuning(opts.TuningPath)
	if err != nil {
		return err
	}
	logger := logging.New(env.LogFile, opts.Verbose)
	defer logger.Sync()

	editor, err := videoeditor.New(videoeditor.Options{
		OutputDir:       opts.OutputDir,
		OutputFormat:    opts.OutputFormat,
		Tuning:          tuning,
		HistoryCapacity: env.HistoryCapacity,
		ReplyStagger:    env.ReplyStagger,
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	defer editor.Close()

	r := &repl{editor: editor, out: out}
	if opts.InputPath != "" {
		if err := editor.Load(opts.InputPath); err != nil {
			return err
		}
	} else {
		assistantColor.Fprintln(out, "Hi! Open a video with /open <path> and tell me what to change.")
	}
	r.flush()

	scanner := bufio.NewScanner(in)
	for {
		promptColor.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := r.command(ctx, line); quit {
				return nil
			}
			r.flush()
			continue
		}

		reply := editor.Chat(line)
		if err := editor.Assistant().Deliver(ctx, reply, r.say); err != nil {
			return err
		}
		r.seen = len(editor.Transcript())
	}
	return scanner.Err()
}

// command runs a slash command and reports whether the loop should end.
func (r *repl) command(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "quit", "exit", "q":
		return true
	case "open":
		if arg == "" {
			r.fail("Usage: /open <path>")
			return false
		}
		if err := r.editor.Load(arg); err != nil {
			r.fail(err.Error())
		}
	case "export":
		art, err := r.editor.Export(ctx)
		r.flush()
		if art != nil {
			dimColor.Fprintf(r.out, "  %s\n", art.Path)
		}
		if err != nil {
			r.fail(err.Error())
		}
	case "undo":
		r.result(r.editor.Undo())
	case "redo":
		r.result(r.editor.Redo())
	case "key":
		if arg == "" {
			r.fail("Usage: /key <key>, e.g. /key space or /key ctrl+z")
			return false
		}
		r.result(r.editor.HandleKey(keys.Parse(arg), false))
	case "state":
		r.state()
	case "help":
		r.say("Commands: /open <path>, /export, /undo, /redo, /key <key>, /state, /quit")
	default:
		r.fail(fmt.Sprintf("Unknown command /%s. Try /help", name))
	}
	return false
}

// flush prints assistant turns the editor added on its own.
func (r *repl) flush() {
	turns := r.editor.Transcript()
	for _, t := range turns[min(r.seen, len(turns)):] {
		if t.Author == assistant.AuthorAssistant {
			r.say(t.Text)
		}
	}
	r.seen = len(turns)
}

func (r *repl) result(res assistant.Result) {
	if !res.Success {
		r.fail(res.Message)
		return
	}
	r.say(res.Message)
}

func (r *repl) say(text string) {
	assistantColor.Fprintln(r.out, text)
}

func (r *repl) fail(text string) {
	errorColor.Fprintln(r.out, text)
}

func (r *repl) state() {
	s := r.editor.Snapshot()
	if s.Media == nil {
		r.say("No video loaded")
		return
	}
	filter, transform := s.FilterCSS, s.TransformCSS
	if filter == "" {
		filter = "none"
	}
	if transform == "" {
		transform = "none"
	}
	fmt.Fprintf(r.out, "  video      %s (%dx%d, %.1fs)\n", s.Media.Name, s.Media.Metadata.Width, s.Media.Metadata.Height, s.Media.Metadata.Duration)
	fmt.Fprintf(r.out, "  filters    %s\n", filter)
	fmt.Fprintf(r.out, "  transform  %s\n", transform)
	fmt.Fprintf(r.out, "  speed      %gx\n", s.PlaybackRate)
	fmt.Fprintf(r.out, "  volume     %d%%\n", s.Volume)
	if len(s.SplitPoints) > 0 {
		fmt.Fprintf(r.out, "  splits     %v\n", s.SplitPoints)
	}
	fmt.Fprintf(r.out, "  history    undo=%t redo=%t\n", s.CanUndo, s.CanRedo)
}
