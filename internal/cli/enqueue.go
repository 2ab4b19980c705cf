package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/clonetts/internal/config"
	"github.com/nikhilbhutani/clonetts/internal/queue"
	"github.com/nikhilbhutani/clonetts/internal/workflow"
)

type enqueuer interface {
	EnqueueSynthesis(ctx context.Context, payload queue.SynthesisRunPayload) (string, error)
	Close() error
}

// newEnqueuer is replaced in tests.
var newEnqueuer = func(cfg config.RedisConfig) enqueuer {
	return queue.NewClient(cfg)
}

func newEnqueueCommand(a *app) *cobra.Command {
	opts := &synthOptions{}

	cmd := &cobra.Command{
		Use:   "enqueue <input_file>",
		Short: "Queue a text file for synthesis by the worker",
		Long: `Validates input_file and the reference audio locally, then queues a
synthesis job on Redis (REDIS_ADDR). The worker resolves the backend from its
own environment. Paths are made absolute before queuing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			cfg := a.cfg

			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}
			if cfg.Redis.Addr == "" {
				return fmt.Errorf("enqueue requires REDIS_ADDR")
			}

			input := args[0]
			output := opts.output
			if output == "" {
				output = workflow.DeriveOutputPath(input)
			}

			if err := preflight(input, cfg.TTS.SpeakerWAV); err != nil {
				return reportFailure(out, err)
			}
			text, err := workflow.LoadText(input)
			if err != nil {
				return reportFailure(out, err)
			}
			if err := workflow.ValidateText(text, fmt.Sprintf("file '%s'", input)); err != nil {
				return reportFailure(out, err)
			}

			payload := queue.SynthesisRunPayload{
				JobID:      uuid.New().String(),
				InputPath:  absPath(input),
				SpeakerWAV: absPath(cfg.TTS.SpeakerWAV),
				Language:   cfg.TTS.Language,
				OutputPath: absPath(output),
			}

			client := newEnqueuer(cfg.Redis)
			defer client.Close()

			taskID, err := client.EnqueueSynthesis(ctx, payload)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Queued job %s: %s -> %s\n", taskID, payload.InputPath, payload.OutputPath)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&opts.speaker, "speaker", "s", "", "Path to the reference speaker WAV file (env TTS_SPEAKER_WAV, default "+config.DefaultSpeakerWAV+")")
	fs.StringVarP(&opts.language, "language", "l", "", "Language code, e.g. en, es, fr (env TTS_LANGUAGE, default en)")
	fs.StringVarP(&opts.output, "output", "o", "", "Output WAV path")
	return cmd
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
