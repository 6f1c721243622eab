package app

import "errors"

// ErrNoScript is returned when a script path is empty.
var ErrNoScript = errors.New("no script given")

// InitError reports which component failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}
