package pregel

import (
	"errors"
	"fmt"
)

var (
	// ErrOutputUnavailable is returned by Invoke when the graph reached
	// quiescence but no designated output channel ever received a committed
	// value.
	ErrOutputUnavailable = errors.New("pregel: output channel was never written")

	// ErrInvalidInput is returned by Invoke when the provided initial values
	// do not correspond exactly to the graph's input channels.
	ErrInvalidInput = errors.New("pregel: input does not match the graph's input channels")
)

// ValidationError reports an invalid graph declaration: a chain referencing
// an undeclared channel, an unknown input/output designation, or a chain
// with an empty subscription list or pipeline. It is returned by New and by
// the chain builder, never at run time.
type ValidationError struct {
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "pregel: invalid graph: " + e.Reason
}

func validationErrf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ChainError reports a transform stage failure during step execution. The
// whole invocation aborts immediately and no writes from the failing step
// are committed.
type ChainError struct {
	Chain string
	Step  int
	Err   error
}

// Error implements the error interface.
func (e *ChainError) Error() string {
	return fmt.Sprintf("pregel: chain %q failed at step %d: %v", e.Chain, e.Step, e.Err)
}

// Unwrap returns the underlying transform error.
func (e *ChainError) Unwrap() error { return e.Err }

// StepLimitError reports that the superstep loop did not reach quiescence
// within the configured bound, signalling a non-terminating or oscillating
// chain network.
type StepLimitError struct {
	Limit int
}

// Error implements the error interface.
func (e *StepLimitError) Error() string {
	return fmt.Sprintf("pregel: no quiescence within %d steps", e.Limit)
}
