package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[git]
path = "/usr/local/bin/git"
env = ["GIT_TRACE=0"]

[process]
timeout = "30s"
max_processes = 4

[push]
no_upstream_patterns = ["keine Upstream"]

[log]
level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Git.Path != "/usr/local/bin/git" {
		t.Errorf("Git.Path = %q", cfg.Git.Path)
	}
	if cfg.Git.GhPath != "gh" {
		t.Errorf("Git.GhPath = %q, want default", cfg.Git.GhPath)
	}
	if !reflect.DeepEqual(cfg.Git.Env, []string{"GIT_TRACE=0"}) {
		t.Errorf("Git.Env = %v", cfg.Git.Env)
	}
	if cfg.Process.Timeout.D() != 30*time.Second {
		t.Errorf("Process.Timeout = %v", cfg.Process.Timeout)
	}
	if cfg.Process.MaxProcesses != 4 {
		t.Errorf("Process.MaxProcesses = %d", cfg.Process.MaxProcesses)
	}
	if cfg.Push.Remote != "origin" {
		t.Errorf("Push.Remote = %q, want default", cfg.Push.Remote)
	}
	if len(cfg.Push.NoUpstreamPatterns) != 1 {
		t.Errorf("Push.NoUpstreamPatterns = %v", cfg.Push.NoUpstreamPatterns)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if !cfg.Watch.Enabled {
		t.Error("Watch.Enabled = false, want default true")
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
push:
  remote: upstream
cache:
  ttl: 0s
watch:
  enabled: false
  debounce: 250ms
graph:
  limit: 20
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Push.Remote != "upstream" {
		t.Errorf("Push.Remote = %q", cfg.Push.Remote)
	}
	if cfg.Cache.TTL != 0 {
		t.Errorf("Cache.TTL = %v, want 0", cfg.Cache.TTL)
	}
	if cfg.Watch.Enabled {
		t.Error("Watch.Enabled = true")
	}
	if cfg.Watch.Debounce.D() != 250*time.Millisecond {
		t.Errorf("Watch.Debounce = %v", cfg.Watch.Debounce)
	}
	if cfg.Graph.Limit != 20 {
		t.Errorf("Graph.Limit = %d", cfg.Graph.Limit)
	}
}

func TestLoad_EmptyYAML(t *testing.T) {
	path := writeFile(t, "config.yml", "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Error("empty file should load defaults")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    error
	}{
		{"bad duration toml", "c.toml", "[process]\ntimeout = \"soon\"\n", ErrInvalidConfig},
		{"bad duration yaml", "c.yaml", "cache:\n  ttl: later\n", ErrInvalidConfig},
		{"unsupported", "c.json", "{}", ErrUnsupportedFormat},
		{"invalid value", "c.toml", "[log]\nlevel = \"loud\"\n", ErrInvalidConfig},
		{"negative count", "c.yaml", "graph:\n  limit: -1\n", ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	for name, content := range map[string]string{
		"c.toml": "[git]\npaht = \"git\"\n",
		"c.yaml": "git:\n  paht: git\n",
	} {
		if _, err := Load(writeFile(t, name, content)); err == nil {
			t.Errorf("%s: Load() accepted an unknown key", name)
		}
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want ErrNotExist", err)
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	if got := Find(dir); got != "" {
		t.Errorf("Find(empty) = %q", got)
	}

	yml := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(yml, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Find(dir); got != yml {
		t.Errorf("Find() = %q, want %q", got, yml)
	}

	toml := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(toml, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Find(dir); got != toml {
		t.Errorf("Find() = %q, want toml first", got)
	}
}

func TestApplyOverrides(t *testing.T) {
	t.Setenv("GITPANEL_LOG_LEVEL", "trace")
	t.Setenv("GITPANEL_PROCESS_TIMEOUT", "5s")

	v := NewViper()
	v.Set("push.remote", "fork")
	v.Set("watch.enabled", false)
	v.Set("graph.limit", 7)

	cfg := Default()
	if err := ApplyOverrides(cfg, v); err != nil {
		t.Fatalf("ApplyOverrides() error = %v", err)
	}
	if cfg.Log.Level != "trace" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Process.Timeout.D() != 5*time.Second {
		t.Errorf("Process.Timeout = %v", cfg.Process.Timeout)
	}
	if cfg.Push.Remote != "fork" {
		t.Errorf("Push.Remote = %q", cfg.Push.Remote)
	}
	if cfg.Watch.Enabled {
		t.Error("Watch.Enabled = true")
	}
	if cfg.Graph.Limit != 7 {
		t.Errorf("Graph.Limit = %d", cfg.Graph.Limit)
	}
	if cfg.Git.Path != "git" {
		t.Errorf("Git.Path = %q, want untouched default", cfg.Git.Path)
	}
}

func TestApplyOverrides_Invalid(t *testing.T) {
	v := NewViper()
	v.Set("cache.ttl", "whenever")
	if err := ApplyOverrides(Default(), v); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("bad duration: error = %v", err)
	}

	v = NewViper()
	v.Set("log.format", "xml")
	if err := ApplyOverrides(Default(), v); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("bad format: error = %v", err)
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	seen := make(map[string]bool)
	for _, k := range keys {
		if seen[k] {
			t.Errorf("duplicate key %q", k)
		}
		seen[k] = true
	}
	for _, want := range []string{"git.path", "process.timeout", "log.level", "dispatch.metrics"} {
		if !seen[want] {
			t.Errorf("Keys() missing %q", want)
		}
	}
}

func TestDuration_Text(t *testing.T) {
	d := Duration(1500 * time.Millisecond)
	text, err := d.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	if string(text) != "1.5s" {
		t.Errorf("MarshalText() = %q", text)
	}

	var back Duration
	if err := back.UnmarshalText([]byte("90m")); err != nil {
		t.Fatal(err)
	}
	if back.D() != 90*time.Minute {
		t.Errorf("UnmarshalText() = %v", back)
	}
}
