package cli

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/omr-grader/internal/config"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	configPath    string
	keysPath      string
	version       string
	outputDir     string
	saveThreshold bool
	workers       int
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "omr-grader",
		Short:         "Grade bubble answer sheets from photos and scans",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.PathFromEnv(), "path to YAML config (default $"+config.EnvPath+")")
	flags.StringVar(&opts.keysPath, "keys", "", "answer-key file (JSON or YAML); overrides answer_keys in the config")
	flags.StringVar(&opts.version, "key-version", "", "answer-key version, or \"flat\"; overrides version in the config")
	flags.StringVar(&opts.outputDir, "out", "", "directory for <name>_graded.jpg and <name>_results.json")
	flags.BoolVar(&opts.saveThreshold, "save-thresh", false, "also write the threshold mask as <name>_thresh.png")
	flags.IntVar(&opts.workers, "workers", 0, "sheets graded concurrently (default from config)")

	cmd.AddCommand(newGradeCmd(opts))
	cmd.AddCommand(newBatchCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// load reads the config file and applies flag overrides.
func (o *options) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	if o.keysPath != "" {
		cfg.AnswerKeys = o.keysPath
	}
	if o.version != "" {
		cfg.Version = o.version
	}
	if o.outputDir != "" {
		cfg.OutputDir = o.outputDir
	}
	if cmd.Flags().Changed("save-thresh") {
		cfg.SaveThreshold = o.saveThreshold
	}
	if o.workers > 0 {
		cfg.Workers = o.workers
	}
	return cfg, cfg.Validate()
}

// setupLogging sends logs to stderr; stdout carries results and the MCP
// protocol.
func setupLogging() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
}

func debugEnabled() bool {
	return os.Getenv("OMR_LOG_LEVEL") == "debug"
}
