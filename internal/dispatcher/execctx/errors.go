package execctx

import "errors"

// Context validation errors.
var (
	// ErrMissingRepository indicates the verb needs a repository but none is open.
	ErrMissingRepository = errors.New("execution context: repository is required")

	// ErrMissingPrompter indicates the verb needs to ask the user but cannot.
	ErrMissingPrompter = errors.New("execution context: prompter is required")
)
