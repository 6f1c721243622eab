// Package process runs the git and gh child processes used by the integration layer.
//
// # Runner
//
// A Runner spawns exactly one child per call and returns a Future:
//
//	runner := process.NewRunner(process.WithTimeout(30 * time.Second))
//	defer runner.Shutdown(5 * time.Second)
//
//	res, err := runner.Run(ctx, []string{"git", "status", "--porcelain=v1"}, process.Options{
//	    Dir: repoRoot,
//	}).Wait(ctx)
//
// A non-zero exit status is a normal Result. The Future fails only when the
// child could not be started (ErrSpawn) or was stopped by a deadline
// (ErrTimeout) or by context cancellation.
//
// # Delivery
//
// Future.Then hands the outcome to a Scheduler, typically the host's event
// loop, so callbacks never run on the goroutine that spawned or reaped the
// child:
//
//	runner.Run(ctx, argv, opts).Then(eventLoop, func(res process.Result, err error) {
//	    // runs on the event loop
//	})
//
// # Supervisor
//
// Every child is tracked by a Supervisor until it exits, so the host can
// terminate in-flight commands on shutdown:
//
//	// SIGTERM, wait up to 5 seconds, then SIGKILL
//	runner.Shutdown(5 * time.Second)
//
// # Thread Safety
//
// Runner, Supervisor, Process and Future are safe for concurrent use.
package process
