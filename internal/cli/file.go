package cli

import (
	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/clonetts/internal/bootstrap"
	"github.com/nikhilbhutani/clonetts/internal/workflow"
)

func newFileCommand(a *app) *cobra.Command {
	opts := &synthOptions{}

	cmd := &cobra.Command{
		Use:   "file <input_file>",
		Short: "Synthesize a text file in the reference speaker's voice",
		Long: `Reads the text in input_file (.txt, .md, .pdf or .docx) and writes the
synthesized speech next to it, replacing the extension with .wav, unless
-o/--output is given.`,
		Example: `  clonetts file article.txt -s my_voice.wav
  clonetts file notes.md -l es -b local -d cpu -o notas.wav`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			cfg := a.cfg

			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}

			input := args[0]
			output := opts.output
			if output == "" {
				output = workflow.DeriveOutputPath(input)
			}

			warnVenv(out, cfg)
			if err := preflight(input, cfg.TTS.SpeakerWAV); err != nil {
				return reportFailure(out, err)
			}

			runner, cleanup, err := bootstrap.NewRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			announce(out, cfg, "")
			res, err := runner.Run(ctx, workflow.Job{
				InputPath:  input,
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
