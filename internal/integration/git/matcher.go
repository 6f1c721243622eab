package git

import (
	"strings"

	"github.com/dshills/gitpanel/internal/integration/git/parse"
)

// DefaultNoUpstreamPatterns are the phrases git uses when a branch has
// no upstream configured.
var DefaultNoUpstreamPatterns = []string{
	"has no upstream branch",
	"set-upstream",
	"no upstream",
}

// UpstreamMatcher recognises "no upstream configured" failures in CLI
// output. Matching is a Unicode case-insensitive substring search, so
// localized phrasings can be added from configuration.
type UpstreamMatcher struct {
	patterns []string
}

// NewUpstreamMatcher returns a matcher for the default patterns plus extra.
func NewUpstreamMatcher(extra ...string) *UpstreamMatcher {
	m := &UpstreamMatcher{}
	for _, p := range append(append([]string{}, DefaultNoUpstreamPatterns...), extra...) {
		if p = strings.TrimSpace(p); p != "" {
			m.patterns = append(m.patterns, p)
		}
	}
	return m
}

// Match reports whether output describes a missing upstream.
func (m *UpstreamMatcher) Match(output string) bool {
	if output == "" {
		return false
	}
	for _, p := range m.patterns {
		if parse.ContainsFold(output, p) {
			return true
		}
	}
	return false
}

// Patterns returns the active patterns.
func (m *UpstreamMatcher) Patterns() []string {
	return append([]string(nil), m.patterns...)
}

var defaultMatcher = NewUpstreamMatcher()

// LooksLikeNoUpstream applies the default patterns to output.
func LooksLikeNoUpstream(output string) bool {
	return defaultMatcher.Match(output)
}
