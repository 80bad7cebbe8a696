package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/omr-grader/internal/omr"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "omr.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Version != "v1" || cfg.Workers < 1 {
		t.Errorf("defaults: got version %q workers %d", cfg.Version, cfg.Workers)
	}
	if cfg.OMR != omr.DefaultParams() {
		t.Errorf("omr params: got %+v, want defaults", cfg.OMR)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
answer_keys: keys/answers.json
version: v2
workers: 3
output_dir: graded
save_threshold: true
omr:
  questions: 40
  questions_per_subject: 10
  subjects: 4
  ambiguity_ratio: 0.5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AnswerKeys != "keys/answers.json" || cfg.Version != "v2" || cfg.Workers != 3 ||
		cfg.OutputDir != "graded" || !cfg.SaveThreshold {
		t.Errorf("top-level fields: got %+v", cfg)
	}

	want := omr.DefaultParams()
	want.Questions = 40
	want.QuestionsPerSubject = 10
	want.Subjects = 4
	want.AmbiguityRatio = 0.5
	if cfg.OMR != want {
		t.Errorf("omr params:\ngot  %+v\nwant %+v", cfg.OMR, want)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{"zero workers", "workers: 0\n", nil},
		{"bad params", "omr:\n  choices: 0\n", omr.ErrInvalidParams},
		{"unknown backend", "omr:\n  backend: cuda\n", omr.ErrInvalidParams},
		{"malformed", "workers: [\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("got %v, want %v", err, tt.target)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv(EnvPath, "/etc/omr.yaml")
	if got := PathFromEnv(); got != "/etc/omr.yaml" {
		t.Errorf("got %q, want /etc/omr.yaml", got)
	}
}
