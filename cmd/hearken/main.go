package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hearken-ai/hearken/pkg/assistant"
	"github.com/hearken-ai/hearken/pkg/audio"
	"github.com/hearken-ai/hearken/pkg/intent"
	"github.com/hearken-ai/hearken/pkg/stt"
	"github.com/hearken-ai/hearken/pkg/tts"
	"github.com/hearken-ai/hearken/pkg/version"
	"github.com/hearken-ai/hearken/pkg/wake"
)

var rootCmd = &cobra.Command{
	Use:   "hearken",
	Short: "hearken - a local-first voice assistant",
	Long: `hearken listens for a wakeword, transcribes the sentence that follows,
classifies it into an intent by embedding similarity, and answers out loud.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersionInfo())
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download-models",
	Short: "Download the intent embedding model",
	Long: `Download the sentence embedding model artifacts used for intent
classification into <config-dir>/intents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := setupLogger()

		dir, err := configDir(cmd)
		if err != nil {
			return err
		}
		logger.Info("Downloading embedding model",
			slog.String("repo", intent.DefaultArtifactSet.Repo),
			slog.String("dir", filepath.Join(dir, "intents")))

		return intent.NewDownloader(filepath.Join(dir, "intents")).Download(intent.DefaultArtifactSet)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the demo assistant",
	Long: `Run a demo assistant that answers greetings and questions about the
time, day, and date. Expects in the config directory:

  <config-dir>/<wakeword>.rpw                spotting network for the wakeword
  <config-dir>/vosk-model-small-en-us-0.15/  speech recognition model
  <config-dir>/intents/                      embedding model (download-models)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := setupLogger()

		dir, err := configDir(cmd)
		if err != nil {
			return err
		}
		wakeword, _ := cmd.Flags().GetString("wakeword")
		remote, _ := cmd.Flags().GetBool("remote-embeddings")
		dumpDir, _ := cmd.Flags().GetString("dump-dir")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		logger.Info("Starting assistant",
			slog.String("service", "hearken"),
			slog.String("version", version.Version),
			slog.String("config_dir", dir),
			slog.String("wakeword", wakeword))

		return runAssistant(ctx, dir, wakeword, remote, dumpDir, logger)
	},
}

// demoIntent enumerates what the demo assistant can answer.
type demoIntent int

const (
	intentGreeting demoIntent = iota
	intentWeather
	intentTime
	intentDay
	intentDate
)

func runAssistant(ctx context.Context, dir, wakeword string, remote bool, dumpDir string, logger *slog.Logger) error {
	wakeDevice, err := audio.OpenInputDevice(audio.TargetSampleRate,
		audio.FormatFloat32, audio.FormatInt16, audio.FormatInt32)
	if err != nil {
		return fmt.Errorf("open wakeword input: %w", err)
	}
	sttDevice, err := audio.OpenInputDevice(audio.TargetSampleRate,
		audio.FormatInt16, audio.FormatInt32, audio.FormatFloat32)
	if err != nil {
		return fmt.Errorf("open recognition input: %w", err)
	}

	voskModel, err := stt.LoadVoskModel(filepath.Join(dir, "vosk-model-small-en-us-0.15"))
	if err != nil {
		return fmt.Errorf("load speech model: %w", err)
	}

	synth, err := tts.NewOpenAISynthesizer("")
	if err != nil {
		return fmt.Errorf("create synthesizer: %w", err)
	}

	var source intent.ModelSource
	if remote {
		source = intent.Remote{}
	} else {
		source = intent.LocalFilesIn(filepath.Join(dir, "intents"))
	}

	var sttOpts []stt.Option
	if dumpDir != "" {
		sttOpts = append(sttOpts, stt.WithDumpDir(dumpDir))
	}

	cfg := assistant.NewConfig[demoIntent](
		wake.NewSpotter(wake.NewONNXModel(wake.ONNXModelConfig{}), wakeDevice),
		stt.NewSentenceRecognizer(voskModel, sttDevice, sttOpts...),
		synth, source)

	profile := filepath.Join(dir, wakeword+".rpw")
	if err := cfg.AddWakewordFromFile(wakeword, profile, true); err != nil {
		return fmt.Errorf("add wakeword: %w", err)
	}

	cfg.AddIntent(intentGreeting, "hello", "hi", "hey")
	cfg.AddIntent(intentWeather, "what's the weather like today", "what's the forecast")
	cfg.AddIntent(intentTime, "what time is it", "what's the current time")
	cfg.AddIntent(intentDay, "what day is it", "what's the current day")
	cfg.AddIntent(intentDate, "what's the date", "what's today's date")

	asst, err := cfg.Start(ctx)
	if err != nil {
		return err
	}
	defer asst.Close()

	fmt.Println("Listening for wakewords...")
	for {
		query, err := asst.Listen(ctx)
		if err != nil {
			if errors.Is(err, assistant.ErrListenerClosed) {
				logger.Error("Capture stream shut down", slog.String("error", err.Error()))
				return err
			}
			if ctx.Err() != nil {
				logger.Info("Assistant stopped")
				return nil
			}
			logger.Warn("Cycle failed", slog.String("error", err.Error()))
			apologize(asst, err)
			continue
		}

		if query.Intent == nil {
			continue
		}
		answer(asst, *query.Intent)
	}
}

func apologize(asst *assistant.Assistant[demoIntent], err error) {
	switch {
	case errors.Is(err, assistant.ErrRecognitionTimeout):
		say(asst, "You took too long to speak, sorry. Please try again.")
	case errors.Is(err, assistant.ErrRecognitionFailed):
		say(asst, "Failed to recognize speech. Please try again.")
	case errors.Is(err, intent.ErrNoConfidentMatch):
		say(asst, "I'm not sure I can do that, sorry.")
	default:
		say(asst, "Something went wrong. Please try again.")
	}
}

func answer(asst *assistant.Assistant[demoIntent], id demoIntent) {
	now := time.Now()
	switch id {
	case intentGreeting:
		say(asst, "Hello! How can I help you today?")
	case intentWeather:
		say(asst, "I'm sorry, but I can't fetch the weather yet.")
	case intentTime:
		say(asst, fmt.Sprintf("It's %s.", now.Format("3:04:05 PM")))
	case intentDay:
		say(asst, fmt.Sprintf("It's %s.", now.Format("Monday")))
	case intentDate:
		say(asst, fmt.Sprintf("It's %s.", now.Format("January 2, 2006")))
	}
}

func say(asst *assistant.Assistant[demoIntent], text string) {
	if err := asst.Speak(text); err != nil {
		slog.Error("Speak failed", slog.String("error", err.Error()))
	}
}

func configDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("config-dir")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".config", "hearken")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return dir, nil
}

func setupLogger() *slog.Logger {
	logFormat := os.Getenv("HEARKEN_LOG_FORMAT")
	logLevel := os.Getenv("HEARKEN_LOG_LEVEL")

	var handler slog.Handler
	opts := &slog.HandlerOptions{}

	switch logLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if logFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func init() {
	rootCmd.PersistentFlags().String("config-dir", "", "Model directory (default ~/.config/hearken)")

	runCmd.Flags().String("wakeword", "pizza", "Wakeword profile name, loaded from <config-dir>/<name>.rpw")
	runCmd.Flags().Bool("remote-embeddings", false, "Classify intents with the OpenAI embeddings API instead of the local model")
	runCmd.Flags().String("dump-dir", "", "Write a WAV recording of each finalized utterance to this directory")

	rootCmd.AddCommand(versionCmd, runCmd, downloadCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
