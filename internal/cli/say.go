package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/clonetts/internal/bootstrap"
	"github.com/nikhilbhutani/clonetts/internal/workflow"
)

func newSayCommand(a *app) *cobra.Command {
	opts := &synthOptions{}

	cmd := &cobra.Command{
		Use:     "say <text>...",
		Aliases: []string{"speak"},
		Short:   "Synthesize literal text in the reference speaker's voice",
		Example: `  clonetts say "Hello, this is my cloned voice." -s my_voice.wav
  clonetts say -b local -o hello.wav Hello there`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			cfg := a.cfg

			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}

			text := strings.Join(args, " ")
			output := opts.output
			if output == "" {
				output = defaultOutput(cfg.TTS.Backend)
			}

			warnVenv(out, cfg)
			if err := preflight("", cfg.TTS.SpeakerWAV); err != nil {
				return reportFailure(out, err)
			}
			if err := workflow.ValidateText(text, "text"); err != nil {
				return reportFailure(out, err)
			}

			runner, cleanup, err := bootstrap.NewRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			announce(out, cfg, text)
			res, err := runner.Run(ctx, workflow.Job{
				Text:       text,
				SpeakerWAV: cfg.TTS.SpeakerWAV,
				Language:   cfg.TTS.Language,
				OutputPath: output,
			})
			if err != nil {
				return reportFailure(out, err)
			}

			reportSuccess(out, res)
			return nil
		},
	}

	opts.addFlags(cmd)
	return cmd
}
