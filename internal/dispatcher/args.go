package dispatcher

import (
	"fmt"
	"strings"

	"github.com/dshills/gitpanel/internal/dispatcher/handler"
)

// ParseArgs splits a verb's argument list into positionals and options.
//
//	--key=value   option key with value
//	--flag        option flag with value "true"
//	--            everything after is positional
//
// Anything else, including single-dash words such as "-" or "-1", is
// positional. A repeated option keeps its last value.
func ParseArgs(args []string) handler.Args {
	parsed := handler.Args{Options: make(map[string]string)}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			parsed.Positional = append(parsed.Positional, args[i+1:]...)
			break
		}
		name, ok := strings.CutPrefix(arg, "--")
		if !ok || name == "" {
			parsed.Positional = append(parsed.Positional, arg)
			continue
		}
		if key, value, hasValue := strings.Cut(name, "="); hasValue {
			parsed.Options[key] = value
		} else {
			parsed.Options[name] = "true"
		}
	}

	return parsed
}

// NewAction parses args and builds an Action for verb.
func NewAction(verb string, args []string) handler.Action {
	return handler.Action{Name: verb, Args: ParseArgs(args)}
}

// RequireArgs returns ErrMissingArgument unless action has at least n
// positional arguments. usage is included in the error.
func RequireArgs(action handler.Action, n int, usage string) error {
	if action.Args.Len() >= n {
		return nil
	}
	return fmt.Errorf("%w: usage: %s", ErrMissingArgument, usage)
}
