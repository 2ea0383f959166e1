package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand(_ *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fangmatch %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}
