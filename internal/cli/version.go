package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/omr-grader/internal/omr"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "omr-grader %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(out, "  Rectifier backends: %s\n", strings.Join(omr.Backends(), ", "))
		},
	}
}
