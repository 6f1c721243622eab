package parse

import "strings"

// CommitLogEntry is one commit from a `%H\t%s` log.
type CommitLogEntry struct {
	SHA      string
	ShortSHA string
	Summary  string
}

// LogFormat is the pretty format Commits expects.
const LogFormat = "%H\t%s"

// Commits parses `git log --format=%H\t%s` output, keeping order.
func Commits(text string) []CommitLogEntry {
	var commits []CommitLogEntry
	for _, line := range splitLines(text) {
		sha, summary, _ := strings.Cut(line, "\t")
		if len(sha) < 40 || !isHex(sha) {
			continue
		}
		commits = append(commits, CommitLogEntry{
			SHA:      sha,
			ShortSHA: shortSHA(sha),
			Summary:  summary,
		})
	}
	return commits
}

// RebaseActions lists the todo verbs BuildRebaseTodo accepts.
var RebaseActions = []string{"pick", "reword", "edit", "squash", "fixup", "drop"}

// IsRebaseAction reports whether action is a known todo verb.
func IsRebaseAction(action string) bool {
	for _, a := range RebaseActions {
		if a == action {
			return true
		}
	}
	return false
}

// BuildRebaseTodo renders one `<action> <short_sha> <subject>` line per
// commit, in order. Commits are expected oldest first, the order git
// applies them.
func BuildRebaseTodo(commits []CommitLogEntry, action string) []string {
	if action == "" {
		action = "pick"
	}
	lines := make([]string, 0, len(commits))
	for _, c := range commits {
		lines = append(lines, action+" "+c.ShortSHA+" "+c.Summary)
	}
	return lines
}
