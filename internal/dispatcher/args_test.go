package dispatcher_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dshills/gitpanel/internal/dispatcher"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		positional []string
		options    map[string]string
	}{
		{
			name:    "empty",
			options: map[string]string{},
		},
		{
			name:       "positionals only",
			args:       []string{"origin", "main"},
			positional: []string{"origin", "main"},
			options:    map[string]string{},
		},
		{
			name:       "flags and values",
			args:       []string{"--no-ff", "--message=release 1.0", "feature"},
			positional: []string{"feature"},
			options:    map[string]string{"no-ff": "true", "message": "release 1.0"},
		},
		{
			name:       "single dash is positional",
			args:       []string{"-", "-1", "HEAD~2"},
			positional: []string{"-", "-1", "HEAD~2"},
			options:    map[string]string{},
		},
		{
			name:       "double dash ends options",
			args:       []string{"--staged", "--", "--weird-file", "a.txt"},
			positional: []string{"--weird-file", "a.txt"},
			options:    map[string]string{"staged": "true"},
		},
		{
			name:       "empty value and last wins",
			args:       []string{"--remote=", "--n=1", "--n=2"},
			positional: nil,
			options:    map[string]string{"remote": "", "n": "2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dispatcher.ParseArgs(tt.args)
			if !reflect.DeepEqual(got.Positional, tt.positional) {
				t.Errorf("expected positionals %v, got %v", tt.positional, got.Positional)
			}
			if !reflect.DeepEqual(got.Options, tt.options) {
				t.Errorf("expected options %v, got %v", tt.options, got.Options)
			}
		})
	}
}

func TestRequireArgs(t *testing.T) {
	action := dispatcher.NewAction("merge", nil)
	err := dispatcher.RequireArgs(action, 1, "merge <branch>")
	if !errors.Is(err, dispatcher.ErrMissingArgument) {
		t.Errorf("expected ErrMissingArgument, got %v", err)
	}

	action = dispatcher.NewAction("merge", []string{"feature"})
	if err := dispatcher.RequireArgs(action, 1, "merge <branch>"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}
