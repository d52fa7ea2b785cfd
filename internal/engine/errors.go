package engine

import (
	"errors"
	"fmt"

	"github.com/san-kum/physlab/internal/scene"
)

// Domain errors for simulator operations.
var (
	// ErrInvalidOperation indicates a command issued in the wrong
	// simulator state, e.g. editing parameters while running.
	ErrInvalidOperation = errors.New("physlab: invalid operation")

	// ErrNumericalInstability indicates an integration step produced a
	// non-finite position or velocity. The affected object is held at
	// its last valid position with velocity zeroed; the simulation
	// continues.
	ErrNumericalInstability = errors.New("physlab: numerical instability (NaN or Inf detected)")

	// ErrDanglingEndpoint indicates a constraint endpoint refers to a
	// removed object. The constraint is dropped at the next tick.
	ErrDanglingEndpoint = errors.New("physlab: constraint endpoint references removed object")

	// ErrUnknownHandle indicates a command named an object that does
	// not exist in the scene.
	ErrUnknownHandle = errors.New("physlab: unknown object handle")
)

// StepError wraps an error with the tick it occurred on.
type StepError struct {
	Step    int
	Time    float64
	Handle  scene.Handle
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f, object %d): %v", e.Step, e.Time, e.Handle, e.Wrapped)
}

func (e *StepError) Unwrap() error { return e.Wrapped }
