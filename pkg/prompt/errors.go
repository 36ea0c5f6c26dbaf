package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrInstanceRequired is returned when Fill receives a nil instance.
	ErrInstanceRequired = errors.New("prompt: instance is required")
)
