package parse

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// GraphLine is one line of `git log --graph --oneline --decorate=short`.
type GraphLine struct {
	// Raw is the unmodified line.
	Raw string

	// Graph is the leading run of graph-drawing characters.
	Graph string

	// Hash is the abbreviated commit hash; empty on connector lines.
	Hash string

	// Decoration is the text inside the parentheses, e.g. "HEAD -> main, origin/main".
	Decoration string

	// Subject is the commit subject.
	Subject string

	// GraphOnly marks connector lines with no commit data.
	GraphOnly bool
}

// Refs splits Decoration into ref names, dropping the "HEAD -> " arrow and "tag: " prefix.
func (g GraphLine) Refs() []string {
	if g.Decoration == "" {
		return nil
	}
	var refs []string
	for _, part := range strings.Split(g.Decoration, ",") {
		part = strings.TrimSpace(part)
		if head, target, ok := strings.Cut(part, " -> "); ok {
			refs = append(refs, head)
			part = target
		}
		part = strings.TrimPrefix(part, "tag: ")
		if part != "" {
			refs = append(refs, part)
		}
	}
	return refs
}

// Graph parses `git log --all --graph --oneline --decorate=short` output.
//
// Each line is split into a graph prefix and a data run. The data run is
// tokenized as hash, optional parenthesised decoration and subject, in
// that order; a data run that does not start with a hex hash is taken
// whole as the subject.
func Graph(text string) []GraphLine {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil
	}

	out := make([]GraphLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, parseGraphLine(line))
	}
	return out
}

func parseGraphLine(line string) GraphLine {
	g := GraphLine{Raw: line}

	split := graphPrefixLen(line)
	g.Graph = strings.TrimRightFunc(line[:split], unicode.IsSpace)
	data := strings.TrimRightFunc(line[split:], unicode.IsSpace)

	if data == "" {
		g.Graph = strings.TrimRightFunc(line, unicode.IsSpace)
		g.GraphOnly = true
		return g
	}

	hash, rest, _ := strings.Cut(data, " ")
	if len(hash) < 4 || !isHex(hash) {
		g.Subject = data
		return g
	}
	g.Hash = hash
	rest = strings.TrimLeft(rest, " ")

	if strings.HasPrefix(rest, "(") {
		if end := closingParen(rest); end > 0 {
			g.Decoration = rest[1:end]
			rest = strings.TrimLeft(rest[end+1:], " ")
		}
	}
	g.Subject = rest
	return g
}

// graphPrefixLen returns the byte length of the leading graph-drawing run.
func graphPrefixLen(line string) int {
	for i, r := range line {
		if !isGraphRune(r) {
			return i
		}
	}
	return len(line)
}

func isGraphRune(r rune) bool {
	switch r {
	case '*', '|', '/', '\\', '_', '.', '-':
		return true
	case '●', '○', '◉', '◯':
		return true
	}
	if r >= 0x2500 && r <= 0x257F { // box drawing block
		return true
	}
	return r != utf8.RuneError && unicode.IsSpace(r)
}

// closingParen returns the index of the parenthesis closing s[0], or -1.
func closingParen(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
