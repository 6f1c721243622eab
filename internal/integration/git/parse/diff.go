package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// DiffHunk is one `@@ -a,b +c,d @@` header within a file.
type DiffHunk struct {
	// Header is the full header line.
	Header string

	OldStart int
	OldCount int
	NewStart int
	NewCount int
}

// DiffFile is one `diff --git` section and its hunk headers, in order.
type DiffFile struct {
	// Header is the `diff --git a/X b/Y` line.
	Header string

	OldPath string
	NewPath string

	IsNew     bool
	IsDeleted bool
	IsBinary  bool

	Hunks []DiffHunk
}

// Path returns the path a viewer should show: the new path unless the file was deleted.
func (f DiffFile) Path() string {
	if f.IsDeleted || f.NewPath == "" {
		return f.OldPath
	}
	return f.NewPath
}

var (
	hunkHeaderRe = regexp.MustCompile(`^@@+ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)
	diffGitRe    = regexp.MustCompile(`^diff --git "?a/(.*?)"? "?b/(.*?)"?$`)
)

// Diff parses unified diff output (`git diff`, `git show`) into file and
// hunk headers. Hunk bodies are left to the caller, which usually renders
// the text verbatim.
func Diff(text string) []DiffFile {
	var files []DiffFile
	var current *DiffFile

	flush := func() {
		if current != nil {
			files = append(files, *current)
			current = nil
		}
	}

	for _, line := range splitLines(text) {
		if strings.HasPrefix(line, "diff --git ") {
			flush()
			oldPath, newPath := parseDiffGitHeader(line)
			current = &DiffFile{Header: line, OldPath: oldPath, NewPath: newPath}
			continue
		}
		if current == nil {
			continue
		}

		switch {
		case strings.HasPrefix(line, "@@"):
			current.Hunks = append(current.Hunks, parseHunkHeader(line))
		case len(current.Hunks) > 0:
			// Hunk body; not structurally parsed.
		case strings.HasPrefix(line, "new file mode "):
			current.IsNew = true
		case strings.HasPrefix(line, "deleted file mode "):
			current.IsDeleted = true
		case strings.HasPrefix(line, "Binary files "):
			current.IsBinary = true
		case strings.HasPrefix(line, "rename from "):
			current.OldPath = unquotePath(strings.TrimPrefix(line, "rename from "))
		case strings.HasPrefix(line, "rename to "):
			current.NewPath = unquotePath(strings.TrimPrefix(line, "rename to "))
		case strings.HasPrefix(line, "--- "):
			if p, ok := sidePath(strings.TrimPrefix(line, "--- "), "a/"); ok {
				current.OldPath = p
			}
		case strings.HasPrefix(line, "+++ "):
			if p, ok := sidePath(strings.TrimPrefix(line, "+++ "), "b/"); ok {
				current.NewPath = p
			}
		}
	}
	flush()

	return files
}

// sidePath turns the operand of a `---` or `+++` line into a path.
// Git ends the line with a tab when the name contains a space and
// C-quotes names with special bytes, prefix included.
func sidePath(p, prefix string) (string, bool) {
	p = strings.TrimSuffix(p, "\t")
	if p == "/dev/null" {
		return "", false
	}
	return strings.TrimPrefix(unquotePath(p), prefix), true
}

// parseDiffGitHeader extracts X and Y from `diff --git a/X b/Y`.
// When both names are equal the line is split in the middle, which keeps
// paths containing " b/" intact.
func parseDiffGitHeader(line string) (oldPath, newPath string) {
	rest := strings.TrimPrefix(line, "diff --git ")
	if strings.Contains(rest, `"`) {
		if o, n, ok := splitQuotedHeader(rest); ok {
			return o, n
		}
	}
	if n := len(rest); n%2 == 1 && !strings.HasPrefix(rest, `"`) {
		left, right := rest[:n/2], rest[n/2+1:]
		if strings.HasPrefix(left, "a/") && strings.HasPrefix(right, "b/") && left[2:] == right[2:] {
			return left[2:], right[2:]
		}
	}
	if m := diffGitRe.FindStringSubmatch(line); m != nil {
		return unescapePath(m[1]), unescapePath(m[2])
	}
	return "", ""
}

// splitQuotedHeader handles headers where either name is C-quoted, as in
//
//	diff --git "a/t\303\251st.txt" "b/t\303\251st.txt"
func splitQuotedHeader(rest string) (oldPath, newPath string, ok bool) {
	var left, right string
	if strings.HasPrefix(rest, `"`) {
		q, err := strconv.QuotedPrefix(rest)
		if err != nil {
			return "", "", false
		}
		left, right = q, strings.TrimPrefix(rest[len(q):], " ")
	} else {
		i := strings.LastIndex(rest, ` "`)
		if i < 0 {
			return "", "", false
		}
		left, right = rest[:i], rest[i+1:]
	}

	oldPath, newPath = unquotePath(left), unquotePath(right)
	if !strings.HasPrefix(oldPath, "a/") || !strings.HasPrefix(newPath, "b/") {
		return "", "", false
	}
	return oldPath[2:], newPath[2:], true
}

// unescapePath decodes the body of a C-quoted name whose quotes were
// already removed.
func unescapePath(p string) string {
	if !strings.Contains(p, `\`) {
		return p
	}
	if s, err := strconv.Unquote(`"` + p + `"`); err == nil {
		return s
	}
	return p
}

func parseHunkHeader(line string) DiffHunk {
	h := DiffHunk{Header: line}
	m := hunkHeaderRe.FindStringSubmatch(line)
	if m == nil {
		return h
	}
	h.OldStart, _ = strconv.Atoi(m[1])
	h.OldCount = 1
	if m[2] != "" {
		h.OldCount, _ = strconv.Atoi(m[2])
	}
	h.NewStart, _ = strconv.Atoi(m[3])
	h.NewCount = 1
	if m[4] != "" {
		h.NewCount, _ = strconv.Atoi(m[4])
	}
	return h
}

// LineKind classifies a rendered diff line.
type LineKind int

const (
	// LineMeta is a file header or any line outside a hunk.
	LineMeta LineKind = iota
	// LineHunk is an `@@` header.
	LineHunk
	// LineAdded is a `+` line.
	LineAdded
	// LineRemoved is a `-` line.
	LineRemoved
	// LineContext is an unchanged line.
	LineContext
	// LineNoNewline is the `\ No newline at end of file` marker.
	LineNoNewline
)

// String returns the kind name.
func (k LineKind) String() string {
	switch k {
	case LineMeta:
		return "meta"
	case LineHunk:
		return "hunk"
	case LineAdded:
		return "added"
	case LineRemoved:
		return "removed"
	case LineContext:
		return "context"
	case LineNoNewline:
		return "no-newline"
	default:
		return "unknown"
	}
}

// LineMarker maps one rendered diff line back to source line numbers.
type LineMarker struct {
	// Index is the 0-based position of the line in the diff text.
	Index int

	Kind LineKind

	// File is the path of the enclosing file section.
	File string

	// OldLine is the line number in the old file, 0 when not applicable.
	OldLine int

	// NewLine is the line number in the new file, 0 when not applicable.
	NewLine int
}

// DiffMarkers walks a unified diff and returns one marker per line,
// tracking old and new line numbers through each hunk. It backs
// click-to-annotate features such as jumping from a diff line to blame.
func DiffMarkers(text string) []LineMarker {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil
	}

	markers := make([]LineMarker, 0, len(lines))
	var (
		file             string
		inHunk           bool
		oldLine, newLine int
	)

	for i, line := range lines {
		m := LineMarker{Index: i, File: file}

		switch {
		case strings.HasPrefix(line, "diff --git "):
			oldPath, newPath := parseDiffGitHeader(line)
			file = newPath
			if file == "" {
				file = oldPath
			}
			m.File = file
			inHunk = false
		case strings.HasPrefix(line, "@@"):
			h := parseHunkHeader(line)
			oldLine, newLine = h.OldStart, h.NewStart
			inHunk = true
			m.Kind = LineHunk
		case !inHunk:
		case strings.HasPrefix(line, "+"):
			m.Kind = LineAdded
			m.NewLine = newLine
			newLine++
		case strings.HasPrefix(line, "-"):
			m.Kind = LineRemoved
			m.OldLine = oldLine
			oldLine++
		case strings.HasPrefix(line, `\`):
			m.Kind = LineNoNewline
		default:
			m.Kind = LineContext
			m.OldLine = oldLine
			m.NewLine = newLine
			oldLine++
			newLine++
		}

		markers = append(markers, m)
	}

	return markers
}
