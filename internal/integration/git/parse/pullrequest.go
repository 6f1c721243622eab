package parse

import "github.com/tidwall/gjson"

// PullRequestFields is the --json field list PullRequests reads.
const PullRequestFields = "number,title,headRefName,state,url,author"

// PullRequest is one entry of `gh pr list`.
type PullRequest struct {
	Number  int
	Title   string
	HeadRef string
	State   string
	URL     string
	Author  string
}

// PullRequests decodes `gh pr list --json number,title,headRefName,state,url,author`.
// Anything that is not a JSON array yields nil.
func PullRequests(text string) []PullRequest {
	if !gjson.Valid(text) {
		return nil
	}
	root := gjson.Parse(text)
	if !root.IsArray() {
		return nil
	}

	var prs []PullRequest
	root.ForEach(func(_, v gjson.Result) bool {
		if !v.IsObject() {
			return true
		}
		prs = append(prs, PullRequest{
			Number:  int(v.Get("number").Int()),
			Title:   v.Get("title").String(),
			HeadRef: v.Get("headRefName").String(),
			State:   v.Get("state").String(),
			URL:     v.Get("url").String(),
			Author:  v.Get("author.login").String(),
		})
		return true
	})
	return prs
}
