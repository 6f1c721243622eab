package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gitpanel/internal/config"
	"github.com/dshills/gitpanel/internal/dispatcher/execctx"
	"github.com/dshills/gitpanel/internal/event"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Watch.Enabled = false
	cfg.Log.Level = "disabled"
	return cfg
}

func newRepoDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "pkg"), 0o755))
	return dir
}

func newApp(t *testing.T, cfg *config.Config, opts Options) *Application {
	t.Helper()
	app, err := New(cfg, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })
	return app
}

func TestNew_DiscoversRepository(t *testing.T) {
	dir := newRepoDir(t)
	app := newApp(t, testConfig(), Options{Dir: filepath.Join(dir, "src", "pkg")})

	require.NotNil(t, app.Repository())
	assert.Equal(t, dir, app.Repository().Path())
	assert.Same(t, app.Repository(), app.Dispatcher().Repository())
	assert.NotNil(t, app.Runner())
	assert.NotNil(t, app.Manager())
	assert.NotNil(t, app.Bus())
}

func TestNew_WithoutRepository(t *testing.T) {
	app := newApp(t, testConfig(), Options{Dir: t.TempDir()})

	assert.Nil(t, app.Repository())
	assert.NotEmpty(t, app.Dispatcher().Verbs())

	res := app.Dispatcher().Dispatch(context.Background(), "status", nil)
	assert.True(t, res.IsError())
	assert.ErrorIs(t, res.Error, execctx.ErrMissingRepository)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Push.Remote = ""

	_, err := New(cfg, Options{Dir: t.TempDir()})
	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "config", initErr.Component)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestNew_NilConfigUsesDefaults(t *testing.T) {
	app := newApp(t, nil, Options{Dir: t.TempDir(), LogOutput: &bytes.Buffer{}})
	assert.Equal(t, config.Default(), app.Config())
}

func TestNew_DispatchConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Dispatch.Metrics = true
	cfg.Dispatch.Timeout = config.Duration(time.Minute)

	app := newApp(t, cfg, Options{Dir: t.TempDir()})
	assert.NotNil(t, app.Dispatcher().Metrics())
	assert.Equal(t, time.Minute, app.Dispatcher().Config().DefaultTimeout)
}

func TestShutdown_Idempotent(t *testing.T) {
	app, err := New(testConfig(), Options{Dir: newRepoDir(t)})
	require.NoError(t, err)

	require.NoError(t, app.Shutdown(context.Background()))
	require.NoError(t, app.Shutdown(context.Background()))
	assert.Nil(t, app.Manager())
}

func TestWatch_DeliversEvents(t *testing.T) {
	app := newApp(t, testConfig(), Options{Dir: t.TempDir()})

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan event.Event, 1)
	done := make(chan error, 1)
	go func() {
		done <- app.Watch(ctx, "git.**", func(ev event.Event) { got <- ev })
	}()

	require.Eventually(t, func() bool { return app.Bus().Len() == 1 }, time.Second, 5*time.Millisecond)
	app.Bus().Publish("git.branch.switched", map[string]any{"branch": "main"})

	select {
	case ev := <-got:
		assert.Equal(t, "git.branch.switched", ev.Type)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	cancel()
	require.NoError(t, <-done)
	assert.Zero(t, app.Bus().Len())
}

func TestWatch_InvalidPattern(t *testing.T) {
	app := newApp(t, testConfig(), Options{Dir: t.TempDir()})
	err := app.Watch(context.Background(), "git..x", func(event.Event) {})
	assert.ErrorIs(t, err, event.ErrInvalidTopic)
}

func TestRunScript(t *testing.T) {
	app := newApp(t, testConfig(), Options{Dir: t.TempDir()})

	script := filepath.Join(t.TempDir(), "verbs.lua")
	require.NoError(t, os.WriteFile(script, []byte(`
local gp = require("gitpanel")
local n = 0
for _, v in ipairs(gp.git.verbs()) do
  if v.name == "status" then n = n + 1 end
end
print("api", gp.api_version, "status", n)
`), 0o644))

	var out bytes.Buffer
	require.NoError(t, app.RunScript(context.Background(), script, ScriptOptions{Output: &out}))
	assert.Equal(t, "api\t1\tstatus\t1", strings.TrimSpace(out.String()))
}

func TestRunScript_Errors(t *testing.T) {
	app := newApp(t, testConfig(), Options{Dir: t.TempDir()})

	assert.ErrorIs(t, app.RunScript(context.Background(), "", ScriptOptions{}), ErrNoScript)

	script := filepath.Join(t.TempDir(), "spin.lua")
	require.NoError(t, os.WriteFile(script, []byte("while true do end"), 0o644))
	err := app.RunScript(context.Background(), script, ScriptOptions{Timeout: 20 * time.Millisecond})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
