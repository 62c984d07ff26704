package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from path, falling back to DefaultConfig
// if the file doesn't exist, then applying environment overrides and
// validating the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file on disk: defaults plus env overrides are enough to
		// run.
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
