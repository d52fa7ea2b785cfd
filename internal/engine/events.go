package engine

import "github.com/san-kum/physlab/internal/scene"

// EventCode classifies a warning surfaced to the host.
type EventCode int

const (
	// EventInstability: an object produced a non-finite state and was
	// held at its last valid position.
	EventInstability EventCode = iota
	// EventConstraintDropped: a constraint lost an endpoint and
	// was removed from the scene.
	EventConstraintDropped
)

func (c EventCode) String() string {
	switch c {
	case EventInstability:
		return "instability"
	case EventConstraintDropped:
		return "constraint_dropped"
	}
	return "unknown"
}

// Event is a non-fatal condition reported during a tick. No event
// aborts the simulation.
type Event struct {
	Code    EventCode
	Handle  scene.Handle
	Step    int
	Time    float64
	Message string
}

// Err renders the event as an error for hosts that propagate warnings
// instead of displaying them.
func (e Event) Err() error {
	var sentinel error
	switch e.Code {
	case EventInstability:
		sentinel = ErrNumericalInstability
	case EventConstraintDropped:
		sentinel = ErrDanglingEndpoint
	default:
		sentinel = ErrInvalidOperation
	}
	return &StepError{Step: e.Step, Time: e.Time, Handle: e.Handle, Wrapped: sentinel}
}

// Listener receives events. Listeners run synchronously inside the
// tick on the caller's goroutine and must not call back into the
// simulator.
type Listener func(Event)
