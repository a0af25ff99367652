package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoOptions is returned when a select field has neither static options
	// nor a source that produced a list before the context ended.
	ErrNoOptions = errors.New("tui: select has no options")
)

// ErrTooManyAttempts is returned when a control stays invalid after the
// configured number of answers.
var ErrTooManyAttempts = errors.New("tui: too many invalid answers")
