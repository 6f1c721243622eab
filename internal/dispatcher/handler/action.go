package handler

import (
	"strconv"
	"strings"
)

// Action is a verb with its parsed arguments.
type Action struct {
	// Name is the verb, e.g. "push" or "stash.apply".
	Name string

	// Args holds positional arguments and options.
	Args Args
}

// Args are the parsed arguments of an Action.
type Args struct {
	// Positional holds arguments that are not options, in order.
	Positional []string

	// Options maps option names (without leading dashes) to values.
	// Bare flags map to "true".
	Options map[string]string
}

// Len returns the number of positional arguments.
func (a Args) Len() int {
	return len(a.Positional)
}

// Arg returns positional argument i, or "" when absent.
func (a Args) Arg(i int) string {
	if i < 0 || i >= len(a.Positional) {
		return ""
	}
	return a.Positional[i]
}

// Rest returns positional arguments from i on.
func (a Args) Rest(i int) []string {
	if i >= len(a.Positional) {
		return nil
	}
	return a.Positional[i:]
}

// Has reports whether option name was given.
func (a Args) Has(name string) bool {
	_, ok := a.Options[name]
	return ok
}

// String returns option name, or def when absent.
func (a Args) String(name, def string) string {
	if v, ok := a.Options[name]; ok {
		return v
	}
	return def
}

// Bool reports whether flag name is set. "false", "0" and "no" count as unset.
func (a Args) Bool(name string) bool {
	v, ok := a.Options[name]
	if !ok {
		return false
	}
	switch strings.ToLower(v) {
	case "false", "0", "no":
		return false
	}
	return true
}

// Int returns option name as an int, or def when absent or malformed.
func (a Args) Int(name string, def int) int {
	v, ok := a.Options[name]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
