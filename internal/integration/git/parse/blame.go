package parse

import (
	"strconv"
	"strings"
	"time"
)

// BlameLine is the attribution of one line of a file.
type BlameLine struct {
	SHA      string
	ShortSHA string

	// OrigLine is the line number in the commit that introduced the line.
	OrigLine int

	// FinalLine is the 1-based line number in the blamed revision.
	FinalLine int

	Author     string
	AuthorMail string
	AuthorTime time.Time

	// Date is AuthorTime rendered as YYYY-MM-DD in UTC.
	Date string

	Summary string

	// Boundary marks lines attributed to the boundary commit.
	Boundary bool

	// Content is the line text without the leading tab.
	Content string
}

// IsUncommitted reports whether the line has not been committed yet.
func (b BlameLine) IsUncommitted() bool {
	return strings.Trim(b.SHA, "0") == ""
}

// blameCommit holds headers shared by every line of one commit. Plain
// --porcelain only emits them the first time a commit appears.
type blameCommit struct {
	author     string
	authorMail string
	authorTime time.Time
	summary    string
	boundary   bool
}

// Blame parses `git blame --line-porcelain` output. Plain --porcelain
// output is accepted as well.
func Blame(text string) []BlameLine {
	var (
		result    []BlameLine
		commits   = make(map[string]*blameCommit)
		current   *blameCommit
		sha       string
		origLine  int
		finalLine int
	)

	for _, line := range splitLines(text) {
		if content, ok := strings.CutPrefix(line, "\t"); ok {
			if current == nil {
				continue
			}
			bl := BlameLine{
				SHA:        sha,
				ShortSHA:   shortSHA(sha),
				OrigLine:   origLine,
				FinalLine:  finalLine,
				Author:     current.author,
				AuthorMail: current.authorMail,
				AuthorTime: current.authorTime,
				Summary:    current.summary,
				Boundary:   current.boundary,
				Content:    content,
			}
			if !bl.AuthorTime.IsZero() {
				bl.Date = bl.AuthorTime.Format("2006-01-02")
			}
			result = append(result, bl)
			continue
		}

		if fields := strings.Fields(line); len(fields) >= 3 && len(fields[0]) >= 40 && isHex(fields[0]) {
			orig, err1 := strconv.Atoi(fields[1])
			final, err2 := strconv.Atoi(fields[2])
			if err1 == nil && err2 == nil {
				sha, origLine, finalLine = fields[0], orig, final
				current = commits[sha]
				if current == nil {
					current = &blameCommit{}
					commits[sha] = current
				}
				continue
			}
		}

		if current == nil {
			continue
		}

		key, value, _ := strings.Cut(line, " ")
		switch key {
		case "author":
			current.author = value
		case "author-mail":
			current.authorMail = strings.Trim(value, "<>")
		case "author-time":
			if ts, err := strconv.ParseInt(value, 10, 64); err == nil {
				current.authorTime = time.Unix(ts, 0).UTC()
			}
		case "summary":
			current.summary = value
		case "boundary":
			current.boundary = true
		}
	}

	return result
}
