package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// fileNames are tried in order by Find.
var fileNames = []string{"config.toml", "config.yaml", "config.yml"}

// Load reads path on top of Default and validates the result. The
// format follows the extension. Unknown keys are errors.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := decode(path, data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				row, col := derr.Position()
				return fmt.Errorf("%w: %s:%d:%d: %w", ErrInvalidConfig, path, row, col, err)
			}
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

// Dir returns the per-user configuration directory, e.g.
// ~/.config/gitpanel.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "gitpanel"), nil
}

// Find returns the first config file present in dir, or "" if none.
func Find(dir string) string {
	for _, name := range fileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// LoadOrDefault loads path, or when path is empty the first file Find
// locates in the user config directory. With no file it returns Default.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		if dir, err := Dir(); err == nil {
			path = Find(dir)
		}
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
