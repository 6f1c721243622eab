package parse

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Conflict marker prefixes, git's default marker size of 7.
const (
	markerLocal  = "<<<<<<<"
	markerBase   = "|||||||"
	markerSplit  = "======="
	markerRemote = ">>>>>>>"
)

// ConflictHunk is one marked conflict region. Line numbers are 1-based
// positions of the marker lines.
type ConflictHunk struct {
	StartLine  int
	BaseLine   int
	MiddleLine int
	EndLine    int

	LocalLines  []string
	BaseLines   []string
	RemoteLines []string

	// HasBase is set when a diff3 `|||||||` section was present, even if empty.
	HasBase bool

	// LocalLabel and RemoteLabel are the texts after the opening and closing markers.
	LocalLabel  string
	RemoteLabel string

	Resolved   bool
	Resolution Resolution
}

// Resolution selects the replacement for a conflict hunk. It is one of
// ResolveLocal, ResolveBase, ResolveRemote, ResolveBoth or ResolveEdit.
type Resolution interface {
	resolution()
	String() string
}

// ResolveLocal keeps our side.
type ResolveLocal struct{}

// ResolveBase keeps the common ancestor (diff3 hunks only).
type ResolveBase struct{}

// ResolveRemote keeps their side.
type ResolveRemote struct{}

// ResolveBoth keeps our side followed by theirs.
type ResolveBoth struct{}

// ResolveEdit replaces the hunk with caller-supplied lines.
type ResolveEdit struct {
	Lines []string
}

func (ResolveLocal) resolution()  {}
func (ResolveBase) resolution()   {}
func (ResolveRemote) resolution() {}
func (ResolveBoth) resolution()   {}
func (ResolveEdit) resolution()   {}

func (ResolveLocal) String() string  { return "local" }
func (ResolveBase) String() string   { return "base" }
func (ResolveRemote) String() string { return "remote" }
func (ResolveBoth) String() string   { return "both" }
func (ResolveEdit) String() string   { return "edit" }

// ParseResolution maps a choice name to a Resolution. Edit takes its
// lines from the caller.
func ParseResolution(name string, lines []string) (Resolution, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "local", "ours":
		return ResolveLocal{}, true
	case "base":
		return ResolveBase{}, true
	case "remote", "theirs":
		return ResolveRemote{}, true
	case "both":
		return ResolveBoth{}, true
	case "edit":
		return ResolveEdit{Lines: lines}, true
	}
	return nil, false
}

// Replacement returns the lines that replace h under r, and false when r
// selects a base section the hunk does not have.
func (h ConflictHunk) Replacement(r Resolution) ([]string, bool) {
	switch r := r.(type) {
	case ResolveLocal:
		return cloneLines(h.LocalLines), true
	case ResolveBase:
		if !h.HasBase {
			return nil, false
		}
		return cloneLines(h.BaseLines), true
	case ResolveRemote:
		return cloneLines(h.RemoteLines), true
	case ResolveBoth:
		out := cloneLines(h.LocalLines)
		return append(out, h.RemoteLines...), true
	case ResolveEdit:
		return cloneLines(r.Lines), true
	}
	return nil, false
}

type conflictState int

const (
	stateNone conflictState = iota
	stateLocal
	stateBase
	stateRemote
)

// ConflictHunks scans file lines for conflict markers.
//
// The scanner moves None -> Local on `<<<<<<<`, Local -> Base on
// `|||||||`, Local or Base -> Remote on `=======`, and Remote -> None on
// `>>>>>>>`, emitting the hunk. Both the two-way and the diff3 form are
// accepted. A hunk left open at end of input is not emitted; a new
// `<<<<<<<` while inside a hunk restarts it.
func ConflictHunks(lines []string) []ConflictHunk {
	var (
		hunks []ConflictHunk
		cur   ConflictHunk
		state = stateNone
	)

	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSuffix(raw, "\r")

		if label, ok := markerLabel(line, markerLocal); ok {
			cur = ConflictHunk{StartLine: lineNo, LocalLabel: label}
			state = stateLocal
			continue
		}

		switch state {
		case stateNone:
		case stateLocal:
			switch {
			case isMarker(line, markerBase):
				cur.BaseLine = lineNo
				cur.HasBase = true
				state = stateBase
			case isSplit(line):
				cur.MiddleLine = lineNo
				state = stateRemote
			default:
				cur.LocalLines = append(cur.LocalLines, raw)
			}
		case stateBase:
			if isSplit(line) {
				cur.MiddleLine = lineNo
				state = stateRemote
			} else {
				cur.BaseLines = append(cur.BaseLines, raw)
			}
		case stateRemote:
			if label, ok := markerLabel(line, markerRemote); ok {
				cur.EndLine = lineNo
				cur.RemoteLabel = label
				hunks = append(hunks, cur)
				cur = ConflictHunk{}
				state = stateNone
			} else {
				cur.RemoteLines = append(cur.RemoteLines, raw)
			}
		}
	}

	return hunks
}

// ConflictHunksText is ConflictHunks over file content.
func ConflictHunksText(content string) []ConflictHunk {
	if content == "" {
		return nil
	}
	return ConflictHunks(strings.Split(strings.TrimSuffix(content, "\n"), "\n"))
}

// HasConflictMarkers reports whether any line opens a conflict.
func HasConflictMarkers(lines []string) bool {
	for _, l := range lines {
		if isMarker(strings.TrimSuffix(l, "\r"), markerLocal) {
			return true
		}
	}
	return false
}

func isMarker(line, marker string) bool {
	_, ok := markerLabel(line, marker)
	return ok
}

// markerLabel matches a 7-character marker followed by end of line or a
// space and returns the trailing label.
func markerLabel(line, marker string) (string, bool) {
	if !strings.HasPrefix(line, marker) {
		return "", false
	}
	rest := line[len(marker):]
	if rest == "" {
		return "", true
	}
	if rest[0] != ' ' {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

func isSplit(line string) bool {
	return strings.TrimRight(line, " \t") == markerSplit
}

func cloneLines(lines []string) []string {
	if len(lines) == 0 {
		return []string{}
	}
	return append([]string(nil), lines...)
}

// SideDiffOp is the kind of a SideDiffLine.
type SideDiffOp int

const (
	// SideEqual lines appear on both sides.
	SideEqual SideDiffOp = iota
	// SideLocal lines appear only on the local side.
	SideLocal
	// SideRemote lines appear only on the remote side.
	SideRemote
)

// SideDiffLine is one line of a local-versus-remote comparison.
type SideDiffLine struct {
	Op   SideDiffOp
	Text string
}

// SideDiff compares the local and remote sections of h line by line, so a
// viewer can highlight what actually differs between the two sides.
func SideDiff(h ConflictHunk) []SideDiffLine {
	dmp := diffmatchpatch.New()
	local := joinSection(h.LocalLines)
	remote := joinSection(h.RemoteLines)

	a, b, table := dmp.DiffLinesToChars(local, remote)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), table)

	var out []SideDiffLine
	for _, d := range diffs {
		op := SideEqual
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = SideLocal
		case diffmatchpatch.DiffInsert:
			op = SideRemote
		}
		for _, text := range strings.SplitAfter(d.Text, "\n") {
			if text == "" {
				continue
			}
			out = append(out, SideDiffLine{Op: op, Text: strings.TrimSuffix(text, "\n")})
		}
	}
	return out
}

func joinSection(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Splice replaces the marker range [h.StartLine, h.EndLine] of lines
// with repl and returns a new slice.
func Splice(lines []string, h ConflictHunk, repl []string) []string {
	start, end := h.StartLine-1, h.EndLine
	if start < 0 || end > len(lines) || start >= end {
		return append([]string(nil), lines...)
	}
	out := make([]string, 0, len(lines)-(end-start)+len(repl))
	out = append(out, lines[:start]...)
	out = append(out, repl...)
	return append(out, lines[end:]...)
}
