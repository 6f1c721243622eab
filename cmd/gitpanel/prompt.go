package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// termPrompter asks questions on a terminal. Choices are answered by
// number; "y" picks the first choice. A choice named Cancel declines.
type termPrompter struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

func newTermPrompter(in io.Reader, out io.Writer) *termPrompter {
	return &termPrompter{in: bufio.NewReader(in), out: out}
}

// Confirm implements git.Prompter.
func (p *termPrompter) Confirm(ctx context.Context, message string, choices []string) (bool, int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.out, message)
	if len(choices) == 0 {
		fmt.Fprint(p.out, "[y/N] ")
	} else {
		for i, c := range choices {
			fmt.Fprintf(p.out, "  %d) %s\n", i+1, c)
		}
		fmt.Fprint(p.out, "> ")
	}

	line, ok := p.readLine(ctx)
	if !ok {
		return false, -1
	}

	line = strings.TrimSpace(line)
	choice := -1
	switch strings.ToLower(line) {
	case "y", "yes":
		choice = 0
	default:
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(choices) {
			choice = n - 1
		}
	}

	switch {
	case choice < 0:
		return false, -1
	case len(choices) == 0:
		return true, 0
	case strings.EqualFold(choices[choice], "cancel"):
		return false, choice
	default:
		return true, choice
	}
}

// Input implements git.Prompter. Text runs until a line holding only
// "." or end of input.
func (p *termPrompter) Input(ctx context.Context, prompt string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "%s (end with a line containing only \".\"):\n", prompt)

	var lines []string
	for {
		line, ok := p.readLine(ctx)
		if !ok {
			if lines == nil {
				return "", false
			}
			break
		}
		if line == "." {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), true
}

// readLine returns one line without its terminator. ok is false at end
// of input or when ctx is done.
func (p *termPrompter) readLine(ctx context.Context) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}
