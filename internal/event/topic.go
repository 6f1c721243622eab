package event

import (
	"fmt"
	"strings"
)

const (
	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more segments.
	WildcardMulti = "**"

	// Separator splits topic segments.
	Separator = "."
)

// ValidatePattern reports whether pattern can be subscribed to.
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("%w: empty pattern", ErrInvalidTopic)
	}
	for _, seg := range strings.Split(pattern, Separator) {
		if seg == "" {
			return fmt.Errorf("%w: empty segment in %q", ErrInvalidTopic, pattern)
		}
		if seg != WildcardSingle && seg != WildcardMulti && strings.Contains(seg, "*") {
			return fmt.Errorf("%w: partial wildcard in %q", ErrInvalidTopic, pattern)
		}
	}
	return nil
}

// Match reports whether topic matches pattern.
func Match(pattern, topic string) bool {
	if pattern == "" || topic == "" {
		return false
	}
	return matchSegments(strings.Split(pattern, Separator), strings.Split(topic, Separator))
}

func matchSegments(pattern, topic []string) bool {
	for len(pattern) > 0 {
		switch seg := pattern[0]; seg {
		case WildcardMulti:
			rest := pattern[1:]
			for i := 0; i <= len(topic); i++ {
				if matchSegments(rest, topic[i:]) {
					return true
				}
			}
			return false
		case WildcardSingle:
			if len(topic) == 0 {
				return false
			}
		default:
			if len(topic) == 0 || topic[0] != seg {
				return false
			}
		}
		pattern, topic = pattern[1:], topic[1:]
	}
	return len(topic) == 0
}
