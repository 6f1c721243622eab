package parse

import "strings"

// TagEntry is one tag from for-each-ref.
type TagEntry struct {
	Name string

	// SHA is the peeled commit of an annotated tag. Lightweight tags have
	// no peeled object, so SHA is empty for them.
	SHA string

	Subject     string
	IsAnnotated bool
}

// Tags parses
//
//	git for-each-ref --sort=-creatordate --format=%(refname:short)\t%(objecttype)\t%(*objectname)\t%(subject) refs/tags
//
// Order is preserved.
func Tags(text string) []TagEntry {
	var tags []TagEntry
	for _, line := range splitLines(text) {
		fields := strings.SplitN(line, "\t", 4)
		if len(fields) < 2 || fields[0] == "" {
			continue
		}
		t := TagEntry{
			Name:        fields[0],
			IsAnnotated: fields[1] == "tag",
		}
		if len(fields) > 2 {
			t.SHA = strings.TrimSpace(fields[2])
		}
		if len(fields) > 3 {
			t.Subject = fields[3]
		}
		tags = append(tags, t)
	}
	return tags
}
