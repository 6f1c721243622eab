package app

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/dshills/gitpanel/internal/plugin/api"
	"github.com/dshills/gitpanel/internal/plugin/lua"
)

// ScriptOptions configures RunScript.
type ScriptOptions struct {
	// Output receives print. Defaults to os.Stdout.
	Output io.Writer

	// Timeout bounds the script. Zero uses lua.DefaultTimeout.
	Timeout time.Duration
}

// RunScript runs a Lua file with require("gitpanel") bound to the
// application's dispatcher.
func (app *Application) RunScript(ctx context.Context, path string, opts ScriptOptions) error {
	if path == "" {
		return ErrNoScript
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	stateOpts := []lua.StateOption{lua.WithOutput(out)}
	if opts.Timeout > 0 {
		stateOpts = append(stateOpts, lua.WithTimeout(opts.Timeout))
	}
	state := lua.NewState(stateOpts...)
	defer state.Close()

	reg := api.NewRegistry()
	if err := reg.Register(api.NewGitModule(app.dispatcher)); err != nil {
		return err
	}
	if err := reg.InjectAll(state.LuaState()); err != nil {
		return err
	}

	app.logger.Debug().Str("script", path).Msg("running script")
	return state.DoFile(ctx, path)
}
