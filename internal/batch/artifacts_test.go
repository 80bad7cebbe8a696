package batch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestArtifactPaths(t *testing.T) {
	got := ArtifactPaths("out", "/scans/sheet_01.jpeg")
	want := Artifacts{
		GradedImage: filepath.Join("out", "sheet_01_graded.jpg"),
		ResultJSON:  filepath.Join("out", "sheet_01_results.json"),
		Threshold:   filepath.Join("out", "sheet_01_thresh.png"),
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestWriteArtifacts(t *testing.T) {
	res := newTestRunner(t).Grade(context.Background(), "scans/sheet.png")
	if res.Err != nil {
		t.Fatalf("Grade failed: %v", res.Err)
	}

	tests := []struct {
		name          string
		withThreshold bool
	}{
		{"without threshold", false},
		{"with threshold", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "out")
			out, err := WriteArtifacts(dir, res, tt.withThreshold)
			if err != nil {
				t.Fatalf("WriteArtifacts failed: %v", err)
			}

			files := []string{out.GradedImage, out.ResultJSON}
			if tt.withThreshold {
				files = append(files, out.Threshold)
			} else if out.Threshold != "" {
				t.Errorf("threshold path reported but not written: %q", out.Threshold)
			}
			for _, f := range files {
				if _, err := os.Stat(f); err != nil {
					t.Errorf("missing artifact: %v", err)
				}
			}

			data, err := os.ReadFile(out.ResultJSON)
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}
			if !strings.Contains(string(data), `"file": "sheet.png"`) {
				t.Errorf("results JSON does not name the sheet:\n%s", data)
			}
		})
	}
}

func TestWriteArtifacts_FailedSheet(t *testing.T) {
	if _, err := WriteArtifacts(t.TempDir(), failed(), false); err == nil {
		t.Error("expected error for a sheet that was not graded")
	}
}
