package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/gitpanel/internal/integration/git/parse"
)

// conflictFile is a conflicted file split into lines with enough
// detail to write it back byte-compatible.
type conflictFile struct {
	path     string
	lines    []string
	crlf     bool
	trailing bool
	mode     os.FileMode
}

func (r *Repository) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.path, path)
}

func (r *Repository) readConflictFile(path string) (*conflictFile, error) {
	full := r.abs(path)
	info, err := os.Stat(full)
	if err != nil {
		return nil, &FileError{Op: "stat", Path: full, Err: err}
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, &FileError{Op: "read", Path: full, Err: err}
	}

	content := string(data)
	f := &conflictFile{
		path:     full,
		crlf:     strings.Contains(content, "\r\n"),
		trailing: strings.HasSuffix(content, "\n"),
		mode:     info.Mode().Perm(),
	}
	if content != "" {
		f.lines = strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	}
	return f, nil
}

func (f *conflictFile) write() error {
	text := strings.Join(f.lines, "\n")
	if f.trailing && len(f.lines) > 0 {
		text += "\n"
	}
	if err := os.WriteFile(f.path, []byte(text), f.mode); err != nil {
		return &FileError{Op: "write", Path: f.path, Err: err}
	}
	return nil
}

// Conflicts reads path and returns its conflict hunks.
func (r *Repository) Conflicts(path string) ([]parse.ConflictHunk, error) {
	f, err := r.readConflictFile(path)
	if err != nil {
		return nil, err
	}
	return parse.ConflictHunks(f.lines), nil
}

// ResolveConflict replaces hunk index (1-based) of path with the lines
// res selects and writes the file. The file is always re-read first, so
// cached hunk lists can be stale. It returns the hunks that remain.
//
// Resolving one file from two callers at once is undefined: the last
// write wins.
func (r *Repository) ResolveConflict(path string, index int, res parse.Resolution) ([]parse.ConflictHunk, error) {
	f, err := r.readConflictFile(path)
	if err != nil {
		return nil, err
	}

	hunks := parse.ConflictHunks(f.lines)
	if index < 1 || index > len(hunks) {
		return hunks, fmt.Errorf("%w: %s has %d hunks, wanted %d", ErrHunkNotFound, path, len(hunks), index)
	}
	h := hunks[index-1]

	repl, ok := h.Replacement(res)
	if !ok {
		return hunks, fmt.Errorf("%w: %s hunk %d", ErrNoBaseSection, path, index)
	}
	if _, edited := res.(parse.ResolveEdit); edited && f.crlf {
		for i, l := range repl {
			if !strings.HasSuffix(l, "\r") {
				repl[i] = l + "\r"
			}
		}
	}

	f.lines = parse.Splice(f.lines, h, repl)
	if err := f.write(); err != nil {
		return hunks, err
	}

	remaining := parse.ConflictHunks(f.lines)
	r.mutated("git.conflict.resolved", map[string]any{
		"path":       path,
		"hunk":       index,
		"resolution": res.String(),
		"remaining":  len(remaining),
	})
	return remaining, nil
}

// ResolveConflictInteractive asks the prompter which side to keep for
// hunk index of path and, for edit, for the replacement text.
func (r *Repository) ResolveConflictInteractive(ctx context.Context, path string, index int, prompter Prompter) ([]parse.ConflictHunk, error) {
	hunks, err := r.Conflicts(path)
	if err != nil {
		return nil, err
	}
	if index < 1 || index > len(hunks) {
		return hunks, fmt.Errorf("%w: %s has %d hunks, wanted %d", ErrHunkNotFound, path, len(hunks), index)
	}
	h := hunks[index-1]

	options := []parse.Resolution{parse.ResolveLocal{}, parse.ResolveRemote{}, parse.ResolveBoth{}}
	if h.HasBase {
		options = append(options, parse.ResolveBase{})
	}
	options = append(options, parse.ResolveEdit{})

	choices := make([]string, len(options))
	for i, o := range options {
		choices[i] = o.String()
	}

	msg := fmt.Sprintf("Resolve conflict %d/%d in %s (%s vs %s)", index, len(hunks), path, h.LocalLabel, h.RemoteLabel)
	ok, choice := prompter.Confirm(ctx, msg, choices)
	if !ok || choice < 0 || choice >= len(options) {
		return hunks, ErrCancelled
	}

	res := options[choice]
	if _, edit := res.(parse.ResolveEdit); edit {
		text, ok := prompter.Input(ctx, "Replacement text")
		if !ok {
			return hunks, ErrCancelled
		}
		res = parse.ResolveEdit{Lines: strings.Split(text, "\n")}
	}

	return r.ResolveConflict(path, index, res)
}
