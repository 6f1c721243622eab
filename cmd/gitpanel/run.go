package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/gitpanel/internal/dispatcher"
	"github.com/dshills/gitpanel/internal/dispatcher/execctx"
	"github.com/dshills/gitpanel/internal/dispatcher/handler"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run <verb> [args...]",
		Short: "Run one verb against the repository",
		Long: `Run dispatches a single verb. Everything after the verb is passed to it
unchanged, so verb options such as --no-ff or --dry-run go after the verb:

  gitpanel run merge feature --no-ff
  git diff | gitpanel run apply - --cached

Use "gitpanel verbs" to list every verb with its usage.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, opts, args, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func runVerb(cmd *cobra.Command, opts *rootOptions, args []string, asJSON bool) error {
	a, shutdown, err := opts.newApp(oneShot)
	if err != nil {
		return err
	}
	defer shutdown()

	d := a.Dispatcher()
	if readsStdin(args[1:]) {
		data, err := io.ReadAll(opts.stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		d.RegisterPreHook(stdinHook(string(data)))
	}

	res := d.Dispatch(cmd.Context(), args[0], args[1:])
	if asJSON {
		if err := writeJSON(opts.stdout, args[0], res); err != nil {
			return err
		}
	} else {
		writeText(opts.stdout, opts.stderr, res)
	}
	return exitFor(res)
}

// readsStdin reports whether a positional argument is "-".
func readsStdin(args []string) bool {
	for _, a := range dispatcher.ParseArgs(args).Positional {
		if a == "-" {
			return true
		}
	}
	return false
}

// stdinHook hands piped input to verbs that read "-" as a patch.
func stdinHook(data string) dispatcher.PreDispatchFunc {
	return func(_ *handler.Action, ctx *execctx.ExecutionContext) bool {
		ctx.SetData("patch", data)
		return true
	}
}
