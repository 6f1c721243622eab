// Package dispatcher routes verbs to handlers and coordinates execution.
//
// A verb is a string such as "status", "push" or "stash.apply" with an
// argument list. The dispatcher parses the arguments, finds a handler,
// runs it against the current repository and returns a handler.Result.
//
// # Architecture
//
// Routing has two tiers:
//
//  1. Namespace Router: verbs with a dot are offered to the handler
//     registered for the prefix, so "stash.apply" goes to the "stash"
//     namespace handler.
//
//  2. Handler Registry: exact verb names map to handlers. Several
//     handlers may share a verb; the highest priority wins.
//
// # Handler Execution
//
// When a verb is dispatched:
//
//  1. Arguments are parsed with ParseArgs
//  2. An ExecutionContext is built with the repository, prompter and logger
//  3. Pre-dispatch hooks run (they can modify or cancel the action)
//  4. The handler runs, with optional panic recovery
//  5. Post-dispatch hooks run
//  6. Metrics are recorded (if enabled)
//
// # Arguments
//
//	push --force-with-lease origin main
//
// parses to positionals ["origin", "main"] and options
// {"force-with-lease": "true"}. "--key=value" sets a value and "--" ends
// option parsing.
//
// # Usage
//
//	d := dispatcher.NewWithDefaults(
//	    dispatcher.WithRepository(repo),
//	    dispatcher.WithPrompter(prompter),
//	)
//	gitops.Register(d)
//
//	result := d.Dispatch(ctx, "merge", []string{"feature"})
//
// With an event loop:
//
//	d.DispatchLatest(ctx, eventLoop, "status", nil, func(r handler.Result) {
//	    // runs on the loop; superseded status results never arrive
//	})
package dispatcher
