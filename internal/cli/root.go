package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/clonetts/internal/config"
)

// skipConfigAnnotation marks commands that run without loading configuration.
const skipConfigAnnotation = "clonetts/skip-config"

type app struct {
	cfg     *config.Config
	verbose bool
}

// NewRootCommand builds the clonetts command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "clonetts",
		Short: "Voice-cloned text-to-speech with a local XTTS model or TTS server",
		Long: `clonetts synthesizes speech from text in the voice of a short reference
recording, either by running the local Coqui XTTS runtime or by posting to a
local TTS server.

Flags take precedence over environment variables (TTS_SPEAKER_WAV,
TTS_LANGUAGE, TTS_DEVICE, TTS_BACKEND, ...), which take precedence over
built-in defaults. A .env file in the working directory is read first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if _, ok := cmd.Annotations[skipConfigAnnotation]; ok {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}
			a.cfg = cfg
			setupLogging(cmd.ErrOrStderr(), cfg.LogLevel, a.verbose)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log progress details to stderr")

	cmd.AddCommand(
		newFileCommand(a),
		newSayCommand(a),
		newEnqueueCommand(a),
		newHistoryCommand(a),
		newVersionCommand(),
	)

	return cmd
}

// Execute runs the command tree and returns the process exit code. Every
// failure has been printed to out by the time it returns.
func Execute(ctx context.Context, args []string, out io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(out)

	if err := root.ExecuteContext(ctx); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(out, "ERROR: %v\n", err)
		}
		return 1
	}
	return 0
}

func setupLogging(w io.Writer, level string, verbose bool) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelWarn
	}
	if verbose && lvl > slog.LevelInfo {
		lvl = slog.LevelInfo
	}
	if w == nil {
		w = os.Stderr
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
}
