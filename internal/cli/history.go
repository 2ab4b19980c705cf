package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/clonetts/internal/database"
	"github.com/nikhilbhutani/clonetts/internal/history"
	"github.com/nikhilbhutani/clonetts/internal/models"
)

func newHistoryCommand(a *app) *cobra.Command {
	var (
		q      history.Query
		since  time.Duration
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent synthesis runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := a.cfg
			if !cfg.HistoryEnabled() {
				return fmt.Errorf("history requires DATABASE_URL")
			}
			if since > 0 {
				t := time.Now().Add(-since)
				q.Since = &t
			}

			pool, err := database.NewPool(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			runs, err := history.NewService(pool).Recent(ctx, q)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}
			return printRuns(cmd.OutOrStdout(), runs)
		},
	}

	fs := cmd.Flags()
	fs.IntVarP(&q.Limit, "limit", "n", 20, "Maximum number of runs to list")
	fs.StringVar(&q.JobID, "job", "", "Only attempts of this job ID")
	fs.StringVar(&q.Status, "status", "", "Only runs with this status (succeeded, failed)")
	fs.StringVar(&q.Backend, "backend", "", "Only runs of this backend (xtts-server, local-xtts, openai-tts)")
	fs.DurationVar(&since, "since", 0, "Only runs newer than this, e.g. 24h")
	fs.BoolVar(&asJSON, "json", false, "Print runs as JSON")
	return cmd
}

func printRuns(w io.Writer, runs []models.SynthesisRun) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No synthesis runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tJOB\tCREATED\tBACKEND\tSTATUS\tCHARS\tLATENCY\tRESULT")
	for _, r := range runs {
		result := r.OutputPath
		switch {
		case r.Status == models.RunStatusFailed:
			result = r.ErrorKind
		case r.Cached:
			result += " (cached)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID.String()[:8],
			r.JobID.String()[:8],
			r.CreatedAt.Local().Format(time.DateTime),
			r.Backend,
			r.Status,
			r.TextLength,
			(time.Duration(r.LatencyMs) * time.Millisecond).String(),
			result,
		)
	}
	return tw.Flush()
}
