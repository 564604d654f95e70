// Package fsm holds the pure transition tables for the request lifecycle and
// the voice session.
package fsm

import "fmt"

// State is the lifecycle of the most recent exchange.
type State string

type Event string

const (
	StateIdle      State = "idle"
	StatePending   State = "pending"
	StateFulfilled State = "fulfilled"
	StateFailed    State = "failed"
)

const (
	EventSubmit  Event = "submit"
	EventFulfill Event = "fulfill"
	EventFail    Event = "fail"
)

// Transition returns the next request state. Submitting while pending is
// invalid: only one exchange may be in flight.
func Transition(current State, event Event) (State, error) {
	switch current {
	case StateIdle, StateFulfilled, StateFailed:
		switch event {
		case EventSubmit:
			return StatePending, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StatePending:
		switch event {
		case EventFulfill:
			return StateFulfilled, nil
		case EventFail:
			return StateFailed, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

// Terminal reports whether no exchange is in flight.
func (s State) Terminal() bool {
	return s != StatePending
}

func invalidTransition(state fmt.Stringer, event fmt.Stringer) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}

func (s State) String() string { return string(s) }
func (e Event) String() string { return string(e) }
