package parse

import "strings"

// WorktreeEntry is one stanza of `git worktree list --porcelain`.
type WorktreeEntry struct {
	Path     string
	SHA      string
	ShortSHA string

	// Branch is the short branch name; empty when detached or bare.
	Branch string

	IsBare     bool
	IsDetached bool

	// IsMain marks the main working tree, always the first stanza.
	IsMain bool

	Locked   bool
	Prunable bool
}

// Worktrees parses `git worktree list --porcelain`. Stanzas are separated
// by blank lines and each begins with a `worktree <path>` line.
func Worktrees(text string) []WorktreeEntry {
	var (
		entries []WorktreeEntry
		cur     *WorktreeEntry
	)

	flush := func() {
		if cur != nil {
			cur.IsMain = len(entries) == 0
			entries = append(entries, *cur)
			cur = nil
		}
	}

	for _, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		key, value, _ := strings.Cut(line, " ")
		if key == "worktree" {
			flush()
			cur = &WorktreeEntry{Path: value}
			continue
		}
		if cur == nil {
			continue
		}
		switch key {
		case "HEAD":
			cur.SHA = value
			cur.ShortSHA = shortSHA(value)
		case "branch":
			cur.Branch = strings.TrimPrefix(value, refsHeads)
		case "bare":
			cur.IsBare = true
		case "detached":
			cur.IsDetached = true
		case "locked":
			cur.Locked = true
		case "prunable":
			cur.Prunable = true
		}
	}
	flush()

	return entries
}
