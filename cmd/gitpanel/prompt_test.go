package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTermPrompter_Confirm(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		choices []string
		ok      bool
		choice  int
	}{
		{"number", "2\n", []string{"Local", "Remote", "Both"}, true, 1},
		{"yes picks first", "y\n", []string{"Push", "Cancel"}, true, 0},
		{"cancel choice", "2\n", []string{"Push", "Cancel"}, false, 1},
		{"out of range", "9\n", []string{"Push", "Cancel"}, false, -1},
		{"garbage", "maybe\n", []string{"Push"}, false, -1},
		{"eof", "", []string{"Push"}, false, -1},
		{"yes no", " yes \n", nil, true, 0},
		{"no", "n\n", nil, false, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := newTermPrompter(strings.NewReader(tt.input), &out)

			ok, choice := p.Confirm(context.Background(), "Proceed?", tt.choices)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.choice, choice)
			assert.Contains(t, out.String(), "Proceed?")
		})
	}
}

func TestTermPrompter_Input(t *testing.T) {
	p := newTermPrompter(strings.NewReader("first\r\nsecond\n.\nignored\n"), &bytes.Buffer{})
	text, ok := p.Input(context.Background(), "Replacement text")
	assert.True(t, ok)
	assert.Equal(t, "first\nsecond", text)

	p = newTermPrompter(strings.NewReader("last line"), &bytes.Buffer{})
	text, ok = p.Input(context.Background(), "Replacement text")
	assert.True(t, ok)
	assert.Equal(t, "last line", text)

	p = newTermPrompter(strings.NewReader(""), &bytes.Buffer{})
	_, ok = p.Input(context.Background(), "Replacement text")
	assert.False(t, ok)
}

func TestTermPrompter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTermPrompter(strings.NewReader("1\n"), &bytes.Buffer{})
	ok, _ := p.Confirm(ctx, "Proceed?", []string{"Push"})
	assert.False(t, ok)
}
