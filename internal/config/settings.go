// Package config loads langtest settings from YAML and langserve settings
// from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings holds persistent langtest defaults loaded from a config file.
// Command-line flags override any value set here.
type Settings struct {
	Binary        string        `yaml:"binary"`       // e.g. "./lang" or "node build/lang.js"
	FixturesDir   string        `yaml:"fixtures_dir"` // directory holding *.lang/*.in/*.out
	Timeout       time.Duration `yaml:"timeout"`
	PreviewLength int           `yaml:"preview_length"`
	Diff          bool          `yaml:"diff"`
	Strict        bool          `yaml:"strict"` // exit 1 when any fixture fails
	JSONReport    string        `yaml:"json_report,omitempty"`
	SARIFReport   string        `yaml:"sarif_report,omitempty"`
}

// LoadSettings reads a YAML config file into Settings.
// If the file does not exist, it returns zero-value Settings and nil error.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if s.Timeout < 0 {
		return nil, fmt.Errorf("parse config %s: timeout must not be negative", path)
	}
	if s.PreviewLength < 0 {
		return nil, fmt.Errorf("parse config %s: preview_length must not be negative", path)
	}

	return &s, nil
}
