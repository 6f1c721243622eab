package parse

import (
	"sort"
	"strings"
)

const (
	refsHeads   = "refs/heads/"
	refsRemotes = "refs/remotes/"
)

// BranchEntry is one branch from for-each-ref.
type BranchEntry struct {
	// Name is the short ref name, e.g. "main" or "origin/main".
	Name string

	// Ref is the full ref, e.g. "refs/remotes/origin/main".
	Ref string

	// IsRemote is true iff Ref is under refs/remotes/.
	IsRemote bool

	// Remote is the remote name for remote-tracking branches.
	Remote string

	// ShortName is the branch name without the remote prefix.
	ShortName string

	// IsCurrent marks the checked out branch.
	IsCurrent bool
}

// Branches parses
//
//	git for-each-ref --format=%(HEAD)\t%(refname:short)\t%(refname) refs/heads refs/remotes
//
// Symbolic remote HEAD refs are dropped. Local branches sort before
// remote ones, then by name.
func Branches(text string) []BranchEntry {
	var branches []BranchEntry
	current := false

	for _, line := range splitLines(text) {
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			continue
		}
		marker, name, ref := strings.TrimSpace(fields[0]), fields[1], strings.TrimSpace(fields[2])
		if ref == "" || strings.HasSuffix(ref, "/HEAD") {
			continue
		}

		b := BranchEntry{
			Name:      name,
			Ref:       ref,
			ShortName: name,
		}
		if rest, ok := strings.CutPrefix(ref, refsRemotes); ok {
			b.IsRemote = true
			if remote, short, found := strings.Cut(rest, "/"); found {
				b.Remote = remote
				b.ShortName = short
			}
		} else if short, ok := strings.CutPrefix(ref, refsHeads); ok {
			b.ShortName = short
		}

		if marker == "*" && !current {
			b.IsCurrent = true
			current = true
		}

		branches = append(branches, b)
	}

	sort.SliceStable(branches, func(i, j int) bool {
		if branches[i].IsRemote != branches[j].IsRemote {
			return !branches[i].IsRemote
		}
		return branches[i].Name < branches[j].Name
	})

	return branches
}

// CurrentBranch returns the checked out entry, if any.
func CurrentBranch(branches []BranchEntry) (BranchEntry, bool) {
	for _, b := range branches {
		if b.IsCurrent {
			return b, true
		}
	}
	return BranchEntry{}, false
}
