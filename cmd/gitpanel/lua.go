package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/gitpanel/internal/app"
	"github.com/dshills/gitpanel/internal/plugin/lua"
)

func newLuaCmd(opts *rootOptions) *cobra.Command {
	var scriptOpts app.ScriptOptions

	cmd := &cobra.Command{
		Use:   "lua <script>",
		Short: "Run a Lua script with the gitpanel module",
		Long: `Lua runs a sandboxed script. require("gitpanel") returns a table whose
git field dispatches verbs:

  local gp = require("gitpanel")
  local res = gp.git.run("status")
  print(res.message)

git.run returns a result table and never raises; git.call raises on
failure and returns the result data.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, shutdown, err := opts.newApp(oneShot)
			if err != nil {
				return err
			}
			defer shutdown()

			scriptOpts.Output = opts.stdout
			return a.RunScript(cmd.Context(), args[0], scriptOpts)
		},
	}
	cmd.Flags().DurationVar(&scriptOpts.Timeout, "script-timeout", lua.DefaultTimeout, "abort the script after this long")
	return cmd
}
