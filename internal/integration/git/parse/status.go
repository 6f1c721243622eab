package parse

import (
	"sort"
	"strconv"
	"strings"
)

// StatusEntry is one line of `git status --porcelain=v1`.
type StatusEntry struct {
	// RawLine is the unmodified input line.
	RawLine string

	// IndexStatus is the X column (staged side).
	IndexStatus byte

	// WorktreeStatus is the Y column (unstaged side).
	WorktreeStatus byte

	// Path is the current path. For renames this is the new path.
	Path string

	// OriginalPath is the pre-rename path; empty unless renamed or copied.
	OriginalPath string

	// Staged reports a change in the index.
	Staged bool

	// Unstaged reports a change in the working tree.
	Unstaged bool

	// Untracked marks `??` entries.
	Untracked bool

	// Ignored marks `!!` entries.
	Ignored bool
}

// IsConflicted reports whether the entry is an unmerged path.
func (e StatusEntry) IsConflicted() bool {
	switch string([]byte{e.IndexStatus, e.WorktreeStatus}) {
	case "DD", "AU", "UD", "UA", "DU", "AA", "UU":
		return true
	}
	return false
}

// IsRename reports whether the entry records a rename or copy.
func (e StatusEntry) IsRename() bool {
	return e.OriginalPath != ""
}

// Status parses `git status --porcelain=v1` output.
func Status(text string) []StatusEntry {
	var entries []StatusEntry
	for _, line := range splitLines(text) {
		if entry, ok := parseStatusLine(line); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

func parseStatusLine(line string) (StatusEntry, bool) {
	if len(line) < 4 || line[2] != ' ' {
		return StatusEntry{}, false
	}

	entry := StatusEntry{
		RawLine:        line,
		IndexStatus:    line[0],
		WorktreeStatus: line[1],
	}
	pathspec := line[3:]

	switch line[:2] {
	case "??":
		entry.Untracked = true
		entry.Path = unquotePath(pathspec)
		return entry, true
	case "!!":
		entry.Ignored = true
		entry.Path = unquotePath(pathspec)
		return entry, true
	}

	entry.Staged = entry.IndexStatus != ' '
	entry.Unstaged = entry.WorktreeStatus != ' '

	if isRenameCode(entry.IndexStatus) || isRenameCode(entry.WorktreeStatus) {
		if newPath, oldPath, ok := splitRenamePath(pathspec); ok {
			entry.Path = newPath
			entry.OriginalPath = oldPath
			return entry, true
		}
	}

	entry.Path = unquotePath(pathspec)
	return entry, true
}

func isRenameCode(c byte) bool {
	return c == 'R' || c == 'C'
}

// splitRenamePath splits "old -> new" into (new, old).
func splitRenamePath(pathspec string) (newPath, oldPath string, ok bool) {
	before, after, found := strings.Cut(pathspec, " -> ")
	if !found {
		return "", "", false
	}
	return unquotePath(after), unquotePath(before), true
}

// unquotePath undoes git's C-style quoting of unusual paths.
func unquotePath(p string) string {
	if len(p) >= 2 && p[0] == '"' && p[len(p)-1] == '"' {
		if s, err := strconv.Unquote(p); err == nil {
			return s
		}
	}
	return p
}

// StatusGroups buckets status entries the way a status panel shows them.
type StatusGroups struct {
	Staged    []StatusEntry
	Unstaged  []StatusEntry
	Untracked []StatusEntry
	Ignored   []StatusEntry
}

// Len returns the number of entries across the staged, unstaged and untracked buckets.
func (g StatusGroups) Len() int {
	return len(g.Staged) + len(g.Unstaged) + len(g.Untracked)
}

// GroupStatus partitions entries into buckets sorted by path. An entry
// changed in both the index and the working tree appears in both Staged
// and Unstaged.
func GroupStatus(entries []StatusEntry) StatusGroups {
	var g StatusGroups
	for _, e := range entries {
		switch {
		case e.Untracked:
			g.Untracked = append(g.Untracked, e)
		case e.Ignored:
			g.Ignored = append(g.Ignored, e)
		default:
			if e.Staged {
				g.Staged = append(g.Staged, e)
			}
			if e.Unstaged {
				g.Unstaged = append(g.Unstaged, e)
			}
		}
	}
	for _, bucket := range [][]StatusEntry{g.Staged, g.Unstaged, g.Untracked, g.Ignored} {
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].Path < bucket[j].Path
		})
	}
	return g
}
