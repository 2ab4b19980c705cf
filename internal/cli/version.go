package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/nikhilbhutani/clonetts/internal/cli.version=..."
var (
	version   = "dev"
	gitCommit string
	buildTime string
)

// FormatVersion returns the version string with optional git commit
func FormatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Aliases:     []string{"v"},
		Short:       "Show version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "clonetts %s\n", FormatVersion())
			if buildTime != "" {
				fmt.Fprintf(out, "  Build: %s\n", buildTime)
			}
			fmt.Fprintf(out, "  Go: %s\n", runtime.Version())
		},
	}
}
