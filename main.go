package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ZacxDev/video-editor/internal/api"
	"github.com/ZacxDev/video-editor/internal/config"
	"github.com/ZacxDev/video-editor/internal/ffmpeg"
	"github.com/ZacxDev/video-editor/internal/logging"
	"github.com/ZacxDev/video-editor/internal/profile"
	"github.com/ZacxDev/video-editor/pkg/types"
	"github.com/ZacxDev/video-editor/pkg/videoeditor"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	rootCmd = &cobra.Command{
		Use:   "video-editor",
		Short: "Edit videos with filters, transforms and a chat assistant",
		Long: `video-editor applies color filters, rotations, flips, speed and volume
changes to a video and re-encodes the result. Edits can be given as flags,
typed to a chat assistant, or sent to a local HTTP API.

Examples:
  # Apply a preset and rotate, then export as webm
  video-editor export -i input.mp4 -o ./out --preset vintage --rotate 90

  # Edit by chatting
  video-editor chat -i input.mp4 -o ./out

  # Serve the HTTP API on the default port
  video-editor serve`,
		SilenceUsage: true,
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Apply edits to a video and export it",
		Long: fmt.Sprintf(`Apply filters, a preset, transforms, speed and volume to a video and export
the result as <name>_edited.<ext>.

Filters are given as kind or kind=value; a bare kind uses its default value.
Split points mark segment boundaries; with --segments the export is also cut
into one file per segment.

Supported formats: %s

Example:
  video-editor export -i input.mp4 -o ./out --filter brightness=1.2 --filter sepia --speed 1.5`,
			strings.Join(profile.GetSupported(), ", ")),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &config.ExportOptions{}

			// Get flags
			inputPath, _ := cmd.Flags().GetString("input")
			outputDir, _ := cmd.Flags().GetString("output")
			format, _ := cmd.Flags().GetString("format")
			filters, _ := cmd.Flags().GetStringArray("filter")
			preset, _ := cmd.Flags().GetString("preset")
			rotation, _ := cmd.Flags().GetInt("rotate")
			flips, _ := cmd.Flags().GetStringArray("flip")
			speed, _ := cmd.Flags().GetFloat64("speed")
			volume, _ := cmd.Flags().GetInt("volume")
			splits, _ := cmd.Flags().GetStringSlice("split")
			segments, _ := cmd.Flags().GetBool("segments")
			tuningPath, _ := cmd.Flags().GetString("tuning")
			verbose, _ := cmd.Flags().GetBool("verbose")

			// Set options
			opts.InputPath = inputPath
			opts.OutputDir = outputDir
			opts.OutputFormat = format
			opts.Filters = filters
			opts.Preset = preset
			opts.Rotation = rotation
			opts.Flips = flips
			opts.Speed = speed
			opts.Volume = volume
			opts.SplitSegments = segments
			opts.TuningPath = tuningPath
			opts.Verbose = verbose

			for _, s := range splits {
				d, err := time.ParseDuration(s)
				if err != nil {
					return fmt.Errorf("invalid split point %q: %w", s, err)
				}
				opts.SplitPoints = append(opts.SplitPoints, d)
			}

			if opts.InputPath == "" || opts.OutputDir == "" {
				return fmt.Errorf("input path and output directory are required")
			}

			env, err := config.LoadEnv()
			if err != nil {
				return err
			}
			if opts.TuningPath == "" {
				opts.TuningPath = env.TuningPath
			}
			logger := logging.New(env.LogFile, opts.Verbose)
			defer logger.Sync()

			art, err := videoeditor.ExportVideo(cmd.Context(), opts, logger)
			if art != nil && art.Fallback {
				color.Yellow("%s", art.Warning)
				fmt.Printf("Saved %s\n", art.Path)
			}
			if err != nil {
				return err
			}

			color.Green("Exported %s (%s)", art.Path, art.Elapsed.Round(time.Millisecond))
			for _, seg := range art.Segments {
				fmt.Printf("  segment %s [%.1fs - %.1fs]\n", seg.Path, seg.Start, seg.End)
			}
			if art.Warning != "" {
				color.Yellow("%s", art.Warning)
			}
			return nil
		},
	}

	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Edit a video by chatting with the assistant",
		Long: `Open a video and type editing commands in plain language, in English or
Spanish: "brightness 1.5", "rotar 180", "vintage", "slow motion", "undo".

Lines starting with / are editor commands:
  /open <path>   open another video
  /export        render the current edits
  /undo, /redo   step through the history
  /key <key>     press a shortcut key (space, s, arrowleft, ctrl+z, ...)
  /state         show the current edits
  /quit          leave

Example:
  video-editor chat -i input.mp4 -o ./out`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &config.ChatOptions{}

			inputPath, _ := cmd.Flags().GetString("input")
			outputDir, _ := cmd.Flags().GetString("output")
			format, _ := cmd.Flags().GetString("format")
			tuningPath, _ := cmd.Flags().GetString("tuning")
			verbose, _ := cmd.Flags().GetBool("verbose")

			opts.InputPath = inputPath
			opts.OutputDir = outputDir
			opts.OutputFormat = format
			opts.TuningPath = tuningPath
			opts.Verbose = verbose

			return runChat(cmd.Context(), opts, os.Stdin, os.Stdout)
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the editing HTTP API",
		Long: fmt.Sprintf(`Start a local HTTP API. Each session owns one editor; sessions expire after
the session TTL without requests.

Settings come from flags, then from the environment or a .env file:
  %s, %s, %s, %s, %s, %s, %s

Example:
  video-editor serve --port 8788 -o ./exports`,
			config.EnvPort, config.EnvOutputDir, config.EnvOutputFormat, config.EnvTuningPath,
			config.EnvSessionTTL, config.EnvStagger, config.EnvHistory),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := config.LoadEnv()
			if err != nil {
				return err
			}

			opts := &config.ServeOptions{
				Port:         env.Port,
				OutputDir:    env.OutputDir,
				OutputFormat: env.OutputFormat,
				TuningPath:   env.TuningPath,
				SessionTTL:   env.SessionTTL,
			}
			if cmd.Flags().Changed("port") {
				opts.Port, _ = cmd.Flags().GetInt("port")
			}
			if cmd.Flags().Changed("output") {
				opts.OutputDir, _ = cmd.Flags().GetString("output")
			}
			if cmd.Flags().Changed("format") {
				opts.OutputFormat, _ = cmd.Flags().GetString("format")
			}
			if cmd.Flags().Changed("tuning") {
				opts.TuningPath, _ = cmd.Flags().GetString("tuning")
			}
			if cmd.Flags().Changed("session-ttl") {
				opts.SessionTTL, _ = cmd.Flags().GetDuration("session-ttl")
			}
			opts.UploadDir, _ = cmd.Flags().GetString("upload-dir")
			opts.Verbose, _ = cmd.Flags().GetBool("verbose")

			logger := logging.New(env.LogFile, opts.Verbose)
			defer logger.Sync()
			return serve(cmd.Context(), opts, env, logger)
		},
	}

	filtersCmd = &cobra.Command{
		Use:   "filters",
		Short: "List the available filters and presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			tuningPath, _ := cmd.Flags().GetString("tuning")
			tuning, err := config.LoadTuning(tuningPath)
			if err != nil {
				return err
			}

			bold := color.New(color.Bold)
			bold.Println("Filters")
			for _, k := range types.AdjustmentKinds {
				spec, ok := tuning.Kind(k)
				if !ok {
					continue
				}
				fmt.Printf("  %-11s %g..%g%s (default %g)\n", k, spec.Min, spec.Max, spec.Unit, spec.Default)
			}
			bold.Println("Presets")
			for _, name := range tuning.PresetNames() {
				p, _ := tuning.Preset(name)
				steps := make([]string, len(p.Steps))
				for i, s := range p.Steps {
					steps[i] = fmt.Sprintf("%s=%g", s.Kind, s.Value)
				}
				fmt.Printf("  %-11s %s\n", name, strings.Join(steps, " "))
			}
			return nil
		},
	}
)

func serve(ctx context.Context, opts *config.ServeOptions, env *config.Env, logger *zap.Logger) error {
	tuning, err := config.LoadTuning(opts.TuningPath)
	if err != nil {
		return err
	}
	if _, err := profile.Get(opts.OutputFormat); err != nil {
		return err
	}
	if err := ffmpeg.NewRecorder(logger).Available(); err != nil {
		logger.Warn("exports will fall back to the original video", zap.Error(err))
	}

	store := api.NewStore(opts.SessionTTL, config.DefaultSessionCleanup, logging.WithComponent(logger, "store"))
	server := api.NewServer(api.ServerConfig{
		Port:  opts.Port,
		Store: store,
		NewEditor: func() (*videoeditor.Editor, error) {
			return videoeditor.New(videoeditor.Options{
				OutputDir:       opts.OutputDir,
				UploadDir:       opts.UploadDir,
				OutputFormat:    opts.OutputFormat,
				Tuning:          tuning,
				HistoryCapacity: env.HistoryCapacity,
				ReplyStagger:    env.ReplyStagger,
				Logger:          logger,
			})
		},
		Logger:    logging.WithComponent(logger, "api"),
		StartTime: time.Now(),
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()
	color.Green("Listening on http://%s", server.Addr())

	select {
	case err := <-errCh:
		store.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func init() {
	// Export command flags
	exportCmd.Flags().StringP("input", "i", "", "Input video file")
	exportCmd.Flags().StringP("output", "o", "", "Output directory")
	exportCmd.Flags().StringP("format", "f", config.DefaultOutputFormat,
		fmt.Sprintf("Output format (%s)", strings.Join(profile.GetSupported(), ", ")))
	exportCmd.Flags().StringArray("filter", nil, "Filter as kind or kind=value (repeatable)")
	exportCmd.Flags().String("preset", "", "Filter preset (vintage, cinematic, dramatic, soft, vibrant)")
	exportCmd.Flags().IntP("rotate", "r", 0, "Rotation in degrees (90, 180, 270 or 360)")
	exportCmd.Flags().StringArray("flip", nil, "Flip axis: horizontal or vertical (repeatable)")
	exportCmd.Flags().Float64("speed", 1, "Playback rate (0.25 to 3)")
	exportCmd.Flags().Int("volume", config.DefaultVolume, "Volume percent (0 to 100)")
	exportCmd.Flags().StringSlice("split", nil, "Split points as durations (e.g. '5s', '1m10s')")
	exportCmd.Flags().Bool("segments", false, "Also write one file per segment")
	exportCmd.Flags().String("tuning", "", "YAML file overriding filter ranges and presets")
	exportCmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")

	exportCmd.MarkFlagRequired("input")
	exportCmd.MarkFlagRequired("output")

	// Chat command flags
	chatCmd.Flags().StringP("input", "i", "", "Video to open")
	chatCmd.Flags().StringP("output", "o", ".", "Output directory for exports")
	chatCmd.Flags().StringP("format", "f", config.DefaultOutputFormat, "Output format")
	chatCmd.Flags().String("tuning", "", "YAML file overriding filter ranges and presets")
	chatCmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Serve command flags
	serveCmd.Flags().IntP("port", "p", config.DefaultPort, "Port to listen on (127.0.0.1)")
	serveCmd.Flags().StringP("output", "o", ".", "Output directory for exports")
	serveCmd.Flags().StringP("format", "f", config.DefaultOutputFormat, "Output format")
	serveCmd.Flags().String("upload-dir", config.DefaultUploadDir, "Directory for uploaded videos (default: system temp)")
	serveCmd.Flags().Duration("session-ttl", config.DefaultSessionTTL, "Idle time before a session is closed")
	serveCmd.Flags().String("tuning", "", "YAML file overriding filter ranges and presets")
	serveCmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")

	filtersCmd.Flags().String("tuning", "", "YAML file overriding filter ranges and presets")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(filtersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}
