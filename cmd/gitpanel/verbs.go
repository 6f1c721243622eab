package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newVerbsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verbs",
		Short: "List every verb with its usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, shutdown, err := opts.newApp(oneShot)
			if err != nil {
				return err
			}
			defer shutdown()

			tw := tabwriter.NewWriter(opts.stdout, 0, 4, 2, ' ', 0)
			for _, v := range a.Dispatcher().Verbs() {
				fmt.Fprintf(tw, "%s\t%s\n", v.Name, v.Usage)
			}
			return tw.Flush()
		},
	}
}
