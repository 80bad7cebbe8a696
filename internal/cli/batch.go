package cli

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/omr-grader/internal/batch"
	"github.com/ironsheep/omr-grader/internal/config"
)

func newBatchCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "batch <folder | image...>",
		Short: "Grade every sheet in a folder, or the listed images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return runBatch(cmd, cfg, args, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results and summary as JSON")
	return cmd
}

func runBatch(cmd *cobra.Command, cfg config.Config, args []string, asJSON bool) error {
	engine, key, err := prepare(cfg)
	if err != nil {
		return err
	}

	paths, err := batchPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no images found in %v", args)
	}

	opts := []batch.Option{batch.WithWorkers(cfg.Workers)}
	if cfg.OutputDir != "" {
		opts = append(opts, batch.WithAfter(func(r batch.Result) error {
			_, err := batch.WriteArtifacts(cfg.OutputDir, r, cfg.SaveThreshold)
			return err
		}))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, runErr := batch.NewRunner(engine, key, opts...).Run(ctx, paths)
	summary := batch.Summarize(results)

	out := cmd.OutOrStdout()
	if asJSON {
		sheets := make([]interface{}, len(results))
		for i, r := range results {
			if r.Err != nil {
				sheets[i] = map[string]string{"file": r.Path, "error": r.Err.Error()}
				continue
			}
			sheets[i] = r.Sheet
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]interface{}{"results": sheets, "summary": summary}); err != nil {
			return err
		}
		return runErr
	}

	for _, r := range results {
		if r.Err != nil {
			log.Printf("Could not grade %s: %v", r.Path, r.Err)
			continue
		}
		if !r.Sheet.DocumentFound {
			log.Printf("Warning: document not detected in %s", r.Path)
		}
		fmt.Fprintf(out, "Sheet: %s | Total Score: %d | Subject Scores: %v\n",
			r.Sheet.File, r.Sheet.TotalScore, r.Sheet.SubjectScores)
	}
	fmt.Fprintf(out, "Graded %d of %d sheets (%d failed, %d unrectified) | mean %.2f | stddev %.2f | median %.1f | range %d-%d\n",
		summary.Graded, summary.Sheets, summary.Failed, summary.Degraded,
		summary.MeanScore, summary.StdDevScore, summary.MedianScore, summary.MinScore, summary.MaxScore)
	return runErr
}

// batchPaths expands a single folder argument into its images; any other
// argument list is taken as image paths.
func batchPaths(args []string) ([]string, error) {
	if len(args) == 1 {
		info, err := os.Stat(args[0])
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return batch.CollectImages(args[0])
		}
	}
	return args, nil
}
