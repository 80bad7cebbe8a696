package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/omr-grader/internal/imaging"
)

// Artifacts names the files written for one sheet.
type Artifacts struct {
	GradedImage string `json:"graded_image"`
	ResultJSON  string `json:"result_json"`
	Threshold   string `json:"threshold,omitempty"`
}

// ArtifactPaths returns the output paths for the sheet at path:
// <name>_graded.jpg, <name>_results.json and <name>_thresh.png in dir.
func ArtifactPaths(dir, path string) Artifacts {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	prefix := filepath.Join(dir, name)
	return Artifacts{
		GradedImage: prefix + "_graded.jpg",
		ResultJSON:  prefix + "_results.json",
		Threshold:   prefix + "_thresh.png",
	}
}

// WriteArtifacts saves the annotated canvas and the sheet report of res to
// dir, plus the threshold mask when withThreshold is set.
func WriteArtifacts(dir string, res Result, withThreshold bool) (Artifacts, error) {
	if res.Sheet == nil || res.Analysis == nil {
		return Artifacts{}, fmt.Errorf("no graded sheet for %s", res.Path)
	}
	out := ArtifactPaths(dir, res.Path)

	if err := imaging.Save(res.Analysis.Canvas, out.GradedImage); err != nil {
		return Artifacts{}, err
	}

	data, err := json.MarshalIndent(res.Sheet, "", "  ")
	if err != nil {
		return Artifacts{}, fmt.Errorf("failed to encode results: %w", err)
	}
	if err := os.WriteFile(out.ResultJSON, data, 0o644); err != nil {
		return Artifacts{}, fmt.Errorf("failed to write results: %w", err)
	}

	if withThreshold {
		if err := imaging.Save(res.Analysis.Binary, out.Threshold); err != nil {
			return Artifacts{}, err
		}
	} else {
		out.Threshold = ""
	}
	return out, nil
}
