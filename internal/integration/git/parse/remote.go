package parse

import "strings"

// RemoteEntry is one configured remote.
type RemoteEntry struct {
	Name     string
	FetchURL string
	PushURL  string
}

// Remotes parses `git remote -v` lines of the form
// `<name>\t<url> (fetch|push)`. Remotes keep first-seen order.
func Remotes(text string) []RemoteEntry {
	var (
		remotes []RemoteEntry
		index   = make(map[string]int)
	)
	for _, line := range splitLines(text) {
		parts := strings.Fields(line)
		if len(parts) < 3 {
			continue
		}
		name, url, kind := parts[0], parts[1], strings.Trim(parts[2], "()")

		i, ok := index[name]
		if !ok {
			i = len(remotes)
			index[name] = i
			remotes = append(remotes, RemoteEntry{Name: name})
		}
		switch kind {
		case "fetch":
			remotes[i].FetchURL = url
		case "push":
			remotes[i].PushURL = url
		}
	}
	return remotes
}
