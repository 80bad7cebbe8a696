package cli

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/ironsheep/omr-grader/internal/server"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server on stdin/stdout",
		Long: `Run the MCP tool server on stdin/stdout.

The server speaks JSON-RPC 2.0, one request per line. Configure it in your
MCP client; logs go to stderr. Set OMR_LOG_LEVEL=debug for per-sheet detail.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if debugEnabled() {
				log.Printf("OMR grader MCP server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
			}

			server.Version = Version
			srv, err := server.New(cfg)
			if err != nil {
				return err
			}
			return srv.Serve(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
