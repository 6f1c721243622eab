package config

import "errors"

// Sentinel errors for configuration.
var (
	// ErrUnsupportedFormat indicates a config file extension other than
	// .toml, .yaml or .yml.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrInvalidConfig indicates a value failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)
