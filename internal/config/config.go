package config

import (
	"fmt"
	"time"
)

// Config is the complete gitpanel configuration.
type Config struct {
	Git      GitConfig      `toml:"git" yaml:"git" mapstructure:"git"`
	Process  ProcessConfig  `toml:"process" yaml:"process" mapstructure:"process"`
	Push     PushConfig     `toml:"push" yaml:"push" mapstructure:"push"`
	Cache    CacheConfig    `toml:"cache" yaml:"cache" mapstructure:"cache"`
	Watch    WatchConfig    `toml:"watch" yaml:"watch" mapstructure:"watch"`
	Graph    GraphConfig    `toml:"graph" yaml:"graph" mapstructure:"graph"`
	Reflog   ReflogConfig   `toml:"reflog" yaml:"reflog" mapstructure:"reflog"`
	Dispatch DispatchConfig `toml:"dispatch" yaml:"dispatch" mapstructure:"dispatch"`
	Log      LogConfig      `toml:"log" yaml:"log" mapstructure:"log"`
}

// GitConfig locates the binaries.
type GitConfig struct {
	// Path is the git binary. Default "git".
	Path string `toml:"path" yaml:"path" mapstructure:"path"`

	// GhPath is the GitHub CLI binary. Default "gh".
	GhPath string `toml:"gh_path" yaml:"gh_path" mapstructure:"gh_path"`

	// Env holds extra KEY=value pairs for every invocation.
	Env []string `toml:"env" yaml:"env" mapstructure:"env"`
}

// ProcessConfig bounds child processes.
type ProcessConfig struct {
	// Timeout kills a child that runs longer. Zero disables.
	Timeout Duration `toml:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxProcesses caps concurrently running children. Zero is unlimited.
	MaxProcesses int `toml:"max_processes" yaml:"max_processes" mapstructure:"max_processes"`

	// ShutdownGrace is how long children get after SIGTERM on exit.
	ShutdownGrace Duration `toml:"shutdown_grace" yaml:"shutdown_grace" mapstructure:"shutdown_grace"`
}

// PushConfig tunes upstream negotiation.
type PushConfig struct {
	// Remote is used when setting a missing upstream.
	Remote string `toml:"remote" yaml:"remote" mapstructure:"remote"`

	// NoUpstreamPatterns extend the built-in no-upstream phrases, e.g.
	// for localized git output.
	NoUpstreamPatterns []string `toml:"no_upstream_patterns" yaml:"no_upstream_patterns" mapstructure:"no_upstream_patterns"`
}

// CacheConfig controls query caching.
type CacheConfig struct {
	// TTL is how long read queries are cached. Zero disables.
	TTL Duration `toml:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// WatchConfig controls .git watching.
type WatchConfig struct {
	Enabled  bool     `toml:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Debounce Duration `toml:"debounce" yaml:"debounce" mapstructure:"debounce"`
}

// GraphConfig bounds the branch graph.
type GraphConfig struct {
	Limit int `toml:"limit" yaml:"limit" mapstructure:"limit"`
}

// ReflogConfig bounds reflog queries.
type ReflogConfig struct {
	Count int `toml:"count" yaml:"count" mapstructure:"count"`
}

// DispatchConfig tunes the verb dispatcher.
type DispatchConfig struct {
	// Timeout bounds a whole verb, all of its commands included. Zero disables.
	Timeout Duration `toml:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// Metrics enables per-verb counters.
	Metrics bool `toml:"metrics" yaml:"metrics" mapstructure:"metrics"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is trace, debug, info, warn, error or disabled.
	Level string `toml:"level" yaml:"level" mapstructure:"level"`

	// Format is console or json.
	Format string `toml:"format" yaml:"format" mapstructure:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Git: GitConfig{
			Path:   "git",
			GhPath: "gh",
		},
		Process: ProcessConfig{
			Timeout:       Duration(2 * time.Minute),
			ShutdownGrace: Duration(2 * time.Second),
		},
		Push: PushConfig{
			Remote: "origin",
		},
		Cache: CacheConfig{
			TTL: Duration(2 * time.Second),
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: Duration(100 * time.Millisecond),
		},
		Graph:  GraphConfig{Limit: 100},
		Reflog: ReflogConfig{Count: 50},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

var (
	logLevels  = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true, "disabled": true}
	logFormats = map[string]bool{"console": true, "json": true}
)

// Validate checks the configuration for values the rest of the program
// cannot use.
func (c *Config) Validate() error {
	switch {
	case c.Git.Path == "":
		return fmt.Errorf("%w: git.path is empty", ErrInvalidConfig)
	case c.Git.GhPath == "":
		return fmt.Errorf("%w: git.gh_path is empty", ErrInvalidConfig)
	case c.Push.Remote == "":
		return fmt.Errorf("%w: push.remote is empty", ErrInvalidConfig)
	}

	durations := []struct {
		key string
		d   Duration
	}{
		{"process.timeout", c.Process.Timeout},
		{"process.shutdown_grace", c.Process.ShutdownGrace},
		{"cache.ttl", c.Cache.TTL},
		{"watch.debounce", c.Watch.Debounce},
		{"dispatch.timeout", c.Dispatch.Timeout},
	}
	for _, e := range durations {
		if e.d < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidConfig, e.key)
		}
	}

	counts := []struct {
		key string
		n   int
	}{
		{"process.max_processes", c.Process.MaxProcesses},
		{"graph.limit", c.Graph.Limit},
		{"reflog.count", c.Reflog.Count},
	}
	for _, e := range counts {
		if e.n < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidConfig, e.key)
		}
	}

	if !logLevels[c.Log.Level] {
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	if !logFormats[c.Log.Format] {
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}
