package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// LoadInto decodes the YAML file at path into out, then applies environment
// overrides from envconfig tags. An empty path reads the environment only.
// out must be a pointer to a struct.
func LoadInto(path string, out any) error {
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("config file %s not found", path)
		case err != nil:
			return fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := envconfig.Process("", out); err != nil {
		return fmt.Errorf("env overrides: %w", err)
	}
	return nil
}

// Load reads and normalizes the core section on its own.
func Load(path string) (*Config, error) {
	cfg := new(Config)
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	if err := Normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
