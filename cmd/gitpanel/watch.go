package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/gitpanel/internal/app"
	"github.com/dshills/gitpanel/internal/config"
	"github.com/dshills/gitpanel/internal/dispatcher/handler"
	"github.com/dshills/gitpanel/internal/event"
	"github.com/dshills/gitpanel/internal/event/loop"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "watch [pattern]",
		Short: "Print repository events as they happen",
		Long: `Watch prints git events until interrupted. The pattern selects events
by dotted type: "*" matches one segment and "**" any number. The
default is "git.**".

With --summary, the repository summary is printed again after every
change. A change that arrives while a summary is still loading
replaces it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := "git.**"
			if len(args) == 1 {
				pattern = args[0]
			}
			if err := event.ValidatePattern(pattern); err != nil {
				return err
			}

			l := loop.New()
			a, shutdown, err := opts.newApp(func(cfg *config.Config, o *app.Options) {
				cfg.Watch.Enabled = true
				o.Scheduler = l
			})
			if err != nil {
				return err
			}
			defer shutdown()

			if a.Repository() == nil {
				return fmt.Errorf("not inside a git repository")
			}

			ctx := cmd.Context()
			go func() { _ = l.Run(ctx) }()
			defer l.Stop()

			refresh := func() {
				a.Dispatcher().DispatchLatest(ctx, l, "summary", nil, func(res handler.Result) {
					writeText(opts.stdout, opts.stderr, res)
				})
			}
			if summary {
				refresh()
			}

			fmt.Fprintf(opts.stderr, "watching %s for %s\n", a.Repository().Path(), pattern)
			return a.Watch(ctx, pattern, func(ev event.Event) {
				printEvent(opts.stdout, ev)
				if summary && ev.Type == "git.repository.changed" {
					refresh()
				}
			})
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "print the repository summary after each change")
	return cmd
}

// printEvent writes one line: time, type and the data sorted by key.
func printEvent(w io.Writer, ev event.Event) {
	keys := make([]string, 0, len(ev.Data))
	for k := range ev.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(ev.Time.Format("15:04:05"))
	b.WriteByte(' ')
	b.WriteString(ev.Type)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, ev.Data[k])
	}
	fmt.Fprintln(w, b.String())
}
