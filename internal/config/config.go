package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/omr-grader/internal/omr"
)

// EnvPath names the environment variable holding the default config path.
const EnvPath = "OMR_CONFIG"

// Config is the YAML configuration shared by the CLI and the MCP server.
// Keys left out of the file keep their defaults.
type Config struct {
	// AnswerKeys is the path of the JSON or YAML answer-key file.
	AnswerKeys string `yaml:"answer_keys"`

	// Version is the key version used when a request names none.
	Version string `yaml:"version"`

	// Workers bounds how many sheets a batch grades at once.
	Workers int `yaml:"workers"`

	// OutputDir receives graded images and result JSON. Empty disables
	// artifact output.
	OutputDir string `yaml:"output_dir"`

	// SaveThreshold also writes the binary mask next to the graded image.
	SaveThreshold bool `yaml:"save_threshold"`

	OMR omr.Params `yaml:"omr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Version: "v1",
		Workers: runtime.NumCPU(),
		OMR:     omr.DefaultParams(),
	}
}

// Load reads YAML config from path over Default. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the pipeline parameters and worker count.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return c.OMR.Validate()
}

// PathFromEnv returns $OMR_CONFIG, or "" when unset.
func PathFromEnv() string {
	return os.Getenv(EnvPath)
}
