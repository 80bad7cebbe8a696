package cli

import (
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ironsheep/omr-grader/internal/batch"
	"github.com/ironsheep/omr-grader/internal/config"
	"github.com/ironsheep/omr-grader/internal/grading"
	"github.com/ironsheep/omr-grader/internal/imaging"
	"github.com/ironsheep/omr-grader/internal/omr"
)

func newGradeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "grade <image>",
		Short: "Grade one answer sheet and print its results as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return runGrade(cmd, cfg, args[0])
		},
	}
}

func runGrade(cmd *cobra.Command, cfg config.Config, path string) error {
	engine, key, err := prepare(cfg)
	if err != nil {
		return err
	}

	img, err := imaging.Open(path)
	if err != nil {
		return err
	}
	analysis, report := engine.Grade(img, key)
	if !analysis.DocumentFound {
		log.Printf("Warning: document not detected in %s; grading the unrectified image", path)
	}
	if debugEnabled() {
		log.Printf("%s: %s", path, analysis)
	}

	res := batch.Result{
		Path:     path,
		Analysis: analysis,
		Sheet:    batch.NewSheetReport(filepath.Base(path), analysis, report),
	}
	if cfg.OutputDir != "" {
		arts, err := batch.WriteArtifacts(cfg.OutputDir, res, cfg.SaveThreshold)
		if err != nil {
			return err
		}
		log.Printf("Saved: %s, %s", arts.GradedImage, arts.ResultJSON)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res.Sheet)
}

// prepare builds the engine and resolves the key version. Both fail before
// any image is read.
func prepare(cfg config.Config) (*omr.Engine, *grading.AnswerKey, error) {
	engine, err := omr.NewEngine(cfg.OMR)
	if err != nil {
		return nil, nil, err
	}
	if cfg.AnswerKeys == "" {
		return nil, nil, fmt.Errorf("no answer-key file: pass --keys or set answer_keys in the config")
	}
	set, err := grading.LoadKeySet(cfg.AnswerKeys)
	if err != nil {
		return nil, nil, err
	}
	key, err := set.Resolve(cfg.Version)
	if err != nil {
		return nil, nil, err
	}
	return engine, key, nil
}
