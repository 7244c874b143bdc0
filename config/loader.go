package config

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
)

// Load reads a JSON configuration file from the given filesystem, layered
// over defaults: absent fields keep their default values. The afero
// abstraction keeps loading testable without touching the host disk.
func Load(fs afero.Fs, path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}

	return cfg, nil
}
