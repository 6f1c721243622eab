package parse

import (
	"strconv"
	"strings"
)

// StashEntry is one line of `git stash list`.
type StashEntry struct {
	// Ref is the selector, e.g. "stash@{0}".
	Ref string

	Index       int
	Description string
}

// Stashes parses `git stash list` lines of the form `stash@{N}: <desc>`.
func Stashes(text string) []StashEntry {
	var entries []StashEntry
	for _, line := range splitLines(text) {
		ref, desc, ok := strings.Cut(line, ": ")
		if !ok {
			ref = strings.TrimSuffix(line, ":")
		}
		idx, ok := selectorIndex(ref, "stash")
		if !ok {
			continue
		}
		entries = append(entries, StashEntry{Ref: ref, Index: idx, Description: desc})
	}
	return entries
}

// selectorIndex extracts N from `<name>@{N}`.
func selectorIndex(ref, name string) (int, bool) {
	rest, ok := strings.CutPrefix(ref, name+"@{")
	if !ok {
		return 0, false
	}
	num, ok := strings.CutSuffix(rest, "}")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
