// Package loop provides the single-threaded execution context that
// subprocess completions are delivered onto.
//
// # Loop
//
// A Loop runs posted callbacks one at a time, in posting order, on one
// goroutine. Hosts either call Run in a dedicated goroutine or pump the
// queue themselves with Drain:
//
//	l := loop.New(loop.WithPanicHandler(func(v any, stack []byte) {
//	    logger.Error().Interface("panic", v).Msg("callback panicked")
//	}))
//	go l.Run(ctx)
//
//	runner.Run(ctx, argv, opts).Then(l, func(res process.Result, err error) {
//	    // never concurrent with any other callback on l
//	})
//
// Post never blocks, so callbacks may post follow-up work freely.
//
// # Staleness
//
// A Generation hands out tokens. An operation captures a token when it
// starts and drops its result when a newer operation has begun:
//
//	tok := gen.Next()
//	fetch().Then(l, loop.Guard(gen, tok, func(res process.Result, err error) {
//	    render(res) // only the latest request renders
//	}))
package loop
