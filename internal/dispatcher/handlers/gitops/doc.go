// Package gitops exposes repository queries and orchestrated operations
// as dispatcher verbs.
//
// Register installs every verb on a dispatcher. Verbs take positional
// arguments and --key=value options, for example:
//
//	status
//	diff --staged -- path/to/file
//	switch origin/feature
//	merge --no-ff feature
//	resolve src/main.go 1 remote
//	stash.pop 2
//
// Handlers return typed values in Result.Data and a rendering for
// terminal hosts in Result.Lines. Mutating verbs set Data["mutated"] and
// honor --dry-run by reporting the command instead of running it. Push
// passes --dry-run through to git.
package gitops
