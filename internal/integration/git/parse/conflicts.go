package parse

import (
	"strings"

	"golang.org/x/text/cases"
)

// foldString returns the Unicode case-folded form of s. A cases.Caser
// keeps state, so a fresh one is built per call.
func foldString(s string) string {
	return cases.Fold().String(s)
}

// ContainsFold reports whether substr occurs in s under Unicode case folding.
func ContainsFold(s, substr string) bool {
	return strings.Contains(foldString(s), foldString(substr))
}

// ConflictPaths extracts conflicted paths from merge, rebase or
// cherry-pick output. Lines look like
//
//	CONFLICT (<type>): <detail> in <path>
//
// and are matched case-insensitively. For "Merge conflict in X" the path
// is X. For other types (modify/delete, rename/delete, file location) the
// path runs up to the fixed phrase git writes after it, so names with
// spaces survive. Duplicates are dropped, order is kept.
func ConflictPaths(output string) []string {
	var (
		paths []string
		seen  = make(map[string]bool)
	)

	for _, line := range splitLines(output) {
		if !strings.Contains(foldString(line), "conflict (") {
			continue
		}
		// Folding can move byte offsets, so slice the original by an ASCII match.
		idx := indexASCIIFold(line, "conflict (")
		if idx < 0 {
			continue
		}
		rest := line[idx:]
		closing := strings.Index(rest, "):")
		if closing < 0 {
			continue
		}
		detail := strings.TrimSpace(rest[closing+2:])
		path := conflictPath(detail)
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		paths = append(paths, path)
	}

	return paths
}

// pathTerminators are the phrases git writes right after the path in
// CONFLICT lines that are not content conflicts.
var pathTerminators = []string{
	" deleted in ",
	" renamed to ",
	" added in ",
	" modified in ",
	" had different types",
}

func conflictPath(detail string) string {
	if i := indexASCIIFold(detail, "merge conflict in "); i >= 0 {
		return strings.TrimSpace(detail[i+len("merge conflict in "):])
	}
	end := -1
	for _, term := range pathTerminators {
		if i := indexASCIIFold(detail, term); i > 0 && (end < 0 || i < end) {
			end = i
		}
	}
	if end > 0 {
		return strings.TrimSpace(detail[:end])
	}
	fields := strings.Fields(detail)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// indexASCIIFold is strings.Index with ASCII case folding, safe for
// slicing the original string.
func indexASCIIFold(s, substr string) int {
	n := len(substr)
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], substr) {
			return i
		}
	}
	return -1
}

// NameOnly parses `git diff --name-only` output into paths.
func NameOnly(output string) []string {
	var paths []string
	for _, line := range splitLines(output) {
		if p := strings.TrimSpace(line); p != "" {
			paths = append(paths, unquotePath(p))
		}
	}
	return paths
}
