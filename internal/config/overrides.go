package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides: GITPANEL_LOG_LEVEL sets log.level.
const EnvPrefix = "GITPANEL"

// NewViper returns a viper instance that reads GITPANEL_* variables.
// Callers bind flags to it with BindPFlag using the dotted keys.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

type override struct {
	key   string
	apply func(c *Config, v *viper.Viper) error
}

func stringKey(key string, field func(*Config) *string) override {
	return override{key, func(c *Config, v *viper.Viper) error {
		*field(c) = v.GetString(key)
		return nil
	}}
}

func intKey(key string, field func(*Config) *int) override {
	return override{key, func(c *Config, v *viper.Viper) error {
		*field(c) = v.GetInt(key)
		return nil
	}}
}

func boolKey(key string, field func(*Config) *bool) override {
	return override{key, func(c *Config, v *viper.Viper) error {
		*field(c) = v.GetBool(key)
		return nil
	}}
}

func sliceKey(key string, field func(*Config) *[]string) override {
	return override{key, func(c *Config, v *viper.Viper) error {
		*field(c) = v.GetStringSlice(key)
		return nil
	}}
}

func durationKey(key string, field func(*Config) *Duration) override {
	return override{key, func(c *Config, v *viper.Viper) error {
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
		}
		*field(c) = Duration(d)
		return nil
	}}
}

var overrides = []override{
	stringKey("git.path", func(c *Config) *string { return &c.Git.Path }),
	stringKey("git.gh_path", func(c *Config) *string { return &c.Git.GhPath }),
	sliceKey("git.env", func(c *Config) *[]string { return &c.Git.Env }),
	durationKey("process.timeout", func(c *Config) *Duration { return &c.Process.Timeout }),
	intKey("process.max_processes", func(c *Config) *int { return &c.Process.MaxProcesses }),
	durationKey("process.shutdown_grace", func(c *Config) *Duration { return &c.Process.ShutdownGrace }),
	stringKey("push.remote", func(c *Config) *string { return &c.Push.Remote }),
	sliceKey("push.no_upstream_patterns", func(c *Config) *[]string { return &c.Push.NoUpstreamPatterns }),
	durationKey("cache.ttl", func(c *Config) *Duration { return &c.Cache.TTL }),
	boolKey("watch.enabled", func(c *Config) *bool { return &c.Watch.Enabled }),
	durationKey("watch.debounce", func(c *Config) *Duration { return &c.Watch.Debounce }),
	intKey("graph.limit", func(c *Config) *int { return &c.Graph.Limit }),
	intKey("reflog.count", func(c *Config) *int { return &c.Reflog.Count }),
	durationKey("dispatch.timeout", func(c *Config) *Duration { return &c.Dispatch.Timeout }),
	boolKey("dispatch.metrics", func(c *Config) *bool { return &c.Dispatch.Metrics }),
	stringKey("log.level", func(c *Config) *string { return &c.Log.Level }),
	stringKey("log.format", func(c *Config) *string { return &c.Log.Format }),
}

// Keys returns every dotted configuration key.
func Keys() []string {
	keys := make([]string, len(overrides))
	for i, o := range overrides {
		keys[i] = o.key
	}
	return keys
}

// ApplyOverrides copies every key v has a value for into cfg and
// validates the result. Keys v does not know are left alone.
func ApplyOverrides(cfg *Config, v *viper.Viper) error {
	for _, o := range overrides {
		if !v.IsSet(o.key) {
			continue
		}
		if err := o.apply(cfg, v); err != nil {
			return err
		}
	}
	return cfg.Validate()
}
