package git

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for git operations.
var (
	// ErrNotRepository indicates the path is not a git repository.
	ErrNotRepository = errors.New("not a git repository")

	// ErrRepositoryNotFound indicates no repository was found.
	ErrRepositoryNotFound = errors.New("repository not found")

	// ErrManagerClosed indicates the manager has been closed.
	ErrManagerClosed = errors.New("manager closed")

	// ErrCommandFailed marks a non-zero exit with no recoverable meaning.
	ErrCommandFailed = errors.New("git command failed")

	// ErrNoUpstream indicates the current branch has no upstream configured.
	ErrNoUpstream = errors.New("no upstream branch")

	// ErrConflict indicates the operation stopped on conflicts.
	ErrConflict = errors.New("merge conflict")

	// ErrDetachedHead indicates the repository is in detached HEAD state.
	ErrDetachedHead = errors.New("detached HEAD state")

	// ErrAmbiguousTarget rejects switching to a remote's symbolic HEAD.
	ErrAmbiguousTarget = errors.New("ambiguous switch target")

	// ErrHunkNotFound indicates the requested conflict hunk does not exist.
	ErrHunkNotFound = errors.New("conflict hunk not found")

	// ErrNoBaseSection indicates a base resolution on a hunk without a diff3 base.
	ErrNoBaseSection = errors.New("conflict hunk has no base section")

	// ErrCancelled indicates the user declined a prompt.
	ErrCancelled = errors.New("cancelled")

	// ErrBranchNotFound indicates the branch was not found.
	ErrBranchNotFound = errors.New("branch not found")
)

// CommandError is a git or gh invocation that exited non-zero.
// Output carries the combined CLI output verbatim.
type CommandError struct {
	// Args is the full argument vector, binary included.
	Args []string

	ExitCode int

	// Output is the trimmed stdout, or stderr when stdout was empty.
	Output string

	// Conflicts lists conflicted paths when Err is ErrConflict.
	Conflicts []string

	// Err classifies the failure; ErrCommandFailed when nothing more specific applies.
	Err error
}

// Error implements error.
func (e *CommandError) Error() string {
	var b strings.Builder
	b.WriteString(strings.Join(e.Args, " "))
	fmt.Fprintf(&b, ": %v (exit %d)", e.cause(), e.ExitCode)
	if len(e.Conflicts) > 0 {
		fmt.Fprintf(&b, " in %s", strings.Join(e.Conflicts, ", "))
	}
	if e.Output != "" {
		b.WriteString(": ")
		b.WriteString(e.Output)
	}
	return b.String()
}

// Unwrap returns the classifying sentinel.
func (e *CommandError) Unwrap() error {
	return e.cause()
}

func (e *CommandError) cause() error {
	if e.Err == nil {
		return ErrCommandFailed
	}
	return e.Err
}

// FileError is a disk read or write failure during conflict resolution.
type FileError struct {
	Op   string
	Path string
	Err  error
}

// Error implements error.
func (e *FileError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *FileError) Unwrap() error {
	return e.Err
}

// Conflicts returns the conflicted paths carried by err, if any.
func Conflicts(err error) []string {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Conflicts
	}
	return nil
}

// Output returns the CLI output carried by err, if any.
func Output(err error) string {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Output
	}
	return ""
}
