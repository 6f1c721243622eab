package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dshills/gitpanel/internal/app"
	"github.com/dshills/gitpanel/internal/config"
	"github.com/dshills/gitpanel/internal/integration/git"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	repo       string
	configPath string
	trace      bool
	yes        bool

	v      *viper.Viper
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{
		v:      config.NewViper(),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}

	cmd := &cobra.Command{
		Use:           "gitpanel",
		Short:         "Query and drive git and gh from one verb set",
		Long:          `gitpanel runs git and GitHub CLI operations as named verbs. Each verb returns a status, a one-line message and rendered output, and the same verbs are scriptable from Lua.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.repo, "repo", "C", "", "start repository discovery in `dir` instead of the working directory")
	flags.StringVar(&opts.configPath, "config", "", "configuration `file` (.toml or .yaml)")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error or disabled")
	flags.String("log-format", "", "log format: console or json")
	flags.Duration("timeout", 0, "kill any git or gh process running longer than this")
	flags.String("remote", "", "remote used when setting a missing upstream")
	flags.BoolVar(&opts.trace, "trace", false, "write one span per subprocess to stderr")
	flags.BoolVarP(&opts.yes, "yes", "y", false, "answer yes to every confirmation")

	bindings := map[string]string{
		"log.level":       "log-level",
		"log.format":      "log-format",
		"process.timeout": "timeout",
		"push.remote":     "remote",
	}
	for key, name := range bindings {
		_ = opts.v.BindPFlag(key, flags.Lookup(name))
	}

	cmd.AddCommand(
		newRunCmd(opts),
		newVerbsCmd(opts),
		newLuaCmd(opts),
		newWatchCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig layers the config file, GITPANEL_* variables and flags.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyOverrides(cfg, o.v); err != nil {
		return nil, err
	}
	return cfg, nil
}

// prompter returns nil when stdin is not a terminal and --yes is not
// given, so a verb that needs an answer fails instead of blocking.
func (o *rootOptions) prompter() git.Prompter {
	if o.yes {
		return &git.StaticPrompter{Accept: true, TextOK: true}
	}
	if f, ok := o.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return newTermPrompter(o.stdin, o.stderr)
	}
	return nil
}

// appSetup adjusts the configuration and options of one command.
type appSetup func(*config.Config, *app.Options)

// oneShot turns watching off for commands that exit after one verb.
func oneShot(cfg *config.Config, _ *app.Options) {
	cfg.Watch.Enabled = false
}

// newApp builds the application for one command. The caller must call
// the returned shutdown function.
func (o *rootOptions) newApp(setups ...appSetup) (*app.Application, func(), error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	appOpts := app.Options{
		Dir:       o.repo,
		LogOutput: o.stderr,
	}
	if p := o.prompter(); p != nil {
		appOpts.Prompter = p
	}
	if o.trace {
		appOpts.TraceOutput = o.stderr
	}
	for _, setup := range setups {
		setup(cfg, &appOpts)
	}

	a, err := app.New(cfg, appOpts)
	if err != nil {
		return nil, nil, err
	}
	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Shutdown(ctx); err != nil {
			fmt.Fprintf(o.stderr, "shutdown: %v\n", err)
		}
	}
	return a, shutdown, nil
}
