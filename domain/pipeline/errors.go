package pipeline

import (
	"errors"
	"fmt"
)

// Precondition and connectivity errors. They are reported as-is and never
// wrapped in a GenerationError.
var (
	ErrNoDocument  = errors.New("no document open")
	ErrNoSelection = errors.New("no active selection")
	ErrWholeCanvas = errors.New("selection covers the whole canvas")
	ErrUnreachable = errors.New("inpainting endpoint unreachable")
	ErrBusy        = errors.New("a generation is already in progress")
	ErrMisplaced   = errors.New("placed layer is not aligned with the region")
)

// GenerationError reports a failure after the pipeline was entered.
type GenerationError struct {
	Stage Stage
	Err   error
}

func (e *GenerationError) Error() string { return "generation failed: " + e.Err.Error() }

func (e *GenerationError) Unwrap() error { return e.Err }

func failed(stage Stage, err error) error {
	return &GenerationError{Stage: stage, Err: err}
}

// Describe turns a Generate error into the one-line status shown to the user.
func Describe(err error) string {
	var genErr *GenerationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoDocument):
		return "No document open"
	case errors.Is(err, ErrNoSelection):
		return "Please make a selection first."
	case errors.Is(err, ErrWholeCanvas):
		return "Selection covers the whole canvas. Select a smaller area."
	case errors.Is(err, ErrBusy):
		return "A generation is already running."
	case errors.Is(err, ErrUnreachable):
		return "Cannot reach the inpainting API. Is the server running?"
	case errors.As(err, &genErr):
		return fmt.Sprintf("Generation failed: %v", genErr.Err)
	}
	return fmt.Sprintf("Generation failed: %v", err)
}
