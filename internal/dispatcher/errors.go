package dispatcher

import "errors"

// Dispatcher errors.
var (
	// ErrNoHandler indicates no handler was found for a verb.
	ErrNoHandler = errors.New("dispatcher: no handler for verb")

	// ErrActionCancelled indicates the verb was cancelled by a hook.
	ErrActionCancelled = errors.New("dispatcher: action cancelled by hook")

	// ErrPanic indicates the handler panicked.
	ErrPanic = errors.New("dispatcher: handler panic")

	// ErrInvalidAction indicates the verb is empty or malformed.
	ErrInvalidAction = errors.New("dispatcher: invalid action")

	// ErrMissingArgument indicates a required positional argument is absent.
	ErrMissingArgument = errors.New("dispatcher: missing argument")
)
