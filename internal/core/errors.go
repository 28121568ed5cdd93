package core

import "fmt"

// InvariantError marks a violated core invariant (e.g. a spring endpoint
// index out of range). this is fatal: World.Step recovers it at
// the tick boundary, logs it, and aborts only that tick.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.Msg)
}

// PanicInvariant panics with an *InvariantError; callers inside a tick phase
// use this instead of returning an error, since no fallible operation is
// expected to occur inside the tick loop.
func PanicInvariant(format string, args ...any) {
	panic(&InvariantError{Msg: fmt.Sprintf(format, args...)})
}
