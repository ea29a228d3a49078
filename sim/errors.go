package sim

import (
	"errors"
	"fmt"
)

// Engine error classes. All of them abort the current run immediately:
// a Markov chain cannot be resumed from a corrupted state, so there is no
// partial recovery and nothing is clamped or silently swallowed.
var (
	// ErrInvalidState marks a mutation that would corrupt the book, e.g.
	// a queue driven negative. It indicates a rate-model or transition
	// contract violation, not a recoverable runtime condition.
	ErrInvalidState = errors.New("invalid book state")

	// ErrDegenerateState marks a state whose total event rate is not
	// positive, so no event can ever fire. A configuration/model bug.
	ErrDegenerateState = errors.New("degenerate state: total rate not positive")

	// ErrConfiguration marks a malformed parameter set, detected before
	// any event is generated.
	ErrConfiguration = errors.New("invalid configuration")
)

// InvalidStateError carries the offending mutation for diagnosis.
type InvalidStateError struct {
	Side  Side
	Level int
	Delta int
	Size  int // queue size before the mutation
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid book state: %s level %d size %d cannot absorb delta %+d",
		e.Side, e.Level, e.Size, e.Delta)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// DegenerateStateError carries the state under which the aggregate rate
// collapsed, so the caller can inspect what went wrong.
type DegenerateStateError struct {
	TotalRate float64
	State     *BookState
}

func (e *DegenerateStateError) Error() string {
	return fmt.Sprintf("degenerate state: total rate %g at reference tick %d",
		e.TotalRate, e.State.ReferenceTick())
}

func (e *DegenerateStateError) Unwrap() error { return ErrDegenerateState }

// ConfigurationError reports a single invalid parameter.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }
