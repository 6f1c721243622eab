package parse

import "strings"

// ReflogEntry is one reflog line.
type ReflogEntry struct {
	SHA      string
	ShortSHA string

	// Selector is the reflog selector, e.g. "HEAD@{3}".
	Selector string

	// Action is the operation, e.g. "commit" or "checkout".
	Action string

	Description string
}

// Reflog parses `git reflog show --format=%H\t%gd\t%gs -n <count>`.
// The reflog subject `<action>: <description>` is split at the first ": ".
func Reflog(text string) []ReflogEntry {
	var entries []ReflogEntry
	for _, line := range splitLines(text) {
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) < 2 || !isHex(fields[0]) {
			continue
		}
		e := ReflogEntry{
			SHA:      fields[0],
			ShortSHA: shortSHA(fields[0]),
			Selector: fields[1],
		}
		if len(fields) == 3 {
			if action, desc, ok := strings.Cut(fields[2], ": "); ok {
				e.Action, e.Description = action, desc
			} else {
				e.Action = fields[2]
			}
		}
		entries = append(entries, e)
	}
	return entries
}
