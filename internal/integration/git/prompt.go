package git

import (
	"context"
	"sync"
)

// Prompter is supplied by the host to ask the user questions.
type Prompter interface {
	// Confirm shows message with choices and returns whether the user
	// confirmed and the index of the chosen entry.
	Confirm(ctx context.Context, message string, choices []string) (bool, int)

	// Input asks for free text. ok is false when the user cancelled.
	Input(ctx context.Context, prompt string) (text string, ok bool)
}

// StaticPrompter answers every prompt the same way. It suits
// non-interactive hosts (`--yes`) and tests, and records what it was asked.
type StaticPrompter struct {
	// Accept is returned by Confirm.
	Accept bool

	// Choice is the index returned by Confirm.
	Choice int

	// Text is returned by Input; TextOK reports whether input was given.
	Text   string
	TextOK bool

	mu       sync.Mutex
	messages []string
}

// Confirm implements Prompter.
func (p *StaticPrompter) Confirm(_ context.Context, message string, _ []string) (bool, int) {
	p.record(message)
	return p.Accept, p.Choice
}

// Input implements Prompter.
func (p *StaticPrompter) Input(_ context.Context, prompt string) (string, bool) {
	p.record(prompt)
	return p.Text, p.TextOK
}

// Messages returns every message and prompt shown so far.
func (p *StaticPrompter) Messages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.messages...)
}

func (p *StaticPrompter) record(msg string) {
	p.mu.Lock()
	p.messages = append(p.messages, msg)
	p.mu.Unlock()
}
