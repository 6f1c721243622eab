// Package git drives the git and gh command-line tools.
//
// Nothing here reads git objects directly. Every query and mutation is
// a subprocess started through a Facade, and every query pairs an exact
// CLI invocation with a parser from the parse subpackage.
//
// # Architecture
//
//   - Facade: prepends the configured binary, applies the default
//     environment and logs each invocation.
//   - Manager: discovers and opens repositories and owns their watchers.
//   - Repository: queries (status, branches, graph, blame, ...) and
//     orchestrated operations (push, merge, conflict resolution, ...).
//   - Watcher: invalidates a Repository when its git directory changes.
//
// # Usage
//
//	runner := process.NewRunner()
//	mgr := git.NewManager(git.ManagerConfig{Runner: runner})
//	repo, err := mgr.Discover("/path/to/project/src")
//	if err != nil {
//	    return err
//	}
//	groups, err := repo.StatusGroups(ctx)
//
// # Orchestrated operations
//
// Multi-step operations run their steps strictly in sequence and report
// failures as *CommandError values that carry the CLI output verbatim:
//
//   - Push negotiates a missing upstream through a Prompter.
//   - Merge, Rebase and CherryPick label success and collect conflicted
//     paths on failure, falling back to `git diff --diff-filter=U`.
//   - ResolveConflict re-reads a conflicted file, splices one hunk and
//     writes it back.
//   - SwitchBranch escalates through switch and checkout variants.
//   - Tracking computes ahead and behind counts.
//
// Use errors.Is with the package sentinels to branch on the failure kind.
//
// # Caching and staleness
//
// Read queries are cached for ManagerConfig.CacheTTL. Mutations and
// watcher notifications flush the cache and advance the repository's
// Generation, so async consumers can drop results that were computed
// before the change.
//
// # Events
//
// The package publishes events through the EventBus:
//
//   - git.repository.changed: the git directory changed on disk
//   - git.status.changed: files were staged or unstaged
//   - git.branch.switched, git.branch.created, git.branch.deleted
//   - git.push.completed, git.fetch.completed, git.commit.created
//   - git.<op>.completed and git.<op>.conflict for merge-like operations
//   - git.conflict.resolved: a conflict hunk was resolved
package git
