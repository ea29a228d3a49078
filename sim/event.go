package sim

import "fmt"

// EventKind identifies the order-flow event families of the model.
// The set is closed: every kind maps to a fixed rate lookup and a fixed
// state-transition effect, so no dynamic dispatch is needed.
type EventKind uint8

const (
	// LimitInsert adds one unit to the targeted queue.
	LimitInsert EventKind = iota
	// Cancel removes one unit from the targeted queue.
	Cancel
	// MarketExecute consumes one unit from the best queue of the targeted side.
	MarketExecute

	numEventKinds = iota
)

func (k EventKind) String() string {
	switch k {
	case LimitInsert:
		return "limit_insert"
	case Cancel:
		return "cancel"
	case MarketExecute:
		return "market_execute"
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// ParseEventKind converts the wire/log representation back to an EventKind.
func ParseEventKind(s string) (EventKind, error) {
	switch s {
	case "limit_insert":
		return LimitInsert, nil
	case "cancel":
		return Cancel, nil
	case "market_execute":
		return MarketExecute, nil
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

// Side identifies the book half an event acts on.
type Side uint8

const (
	Bid Side = iota
	Ask

	numSides = iota
)

func (s Side) String() string {
	if s == Bid {
		return "bid"
	}
	return "ask"
}

// ParseSide converts the wire/log representation back to a Side.
func ParseSide(s string) (Side, error) {
	switch s {
	case "bid":
		return Bid, nil
	case "ask":
		return Ask, nil
	}
	return 0, fmt.Errorf("unknown side %q", s)
}

// Opposite returns the other book half.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// Event is one sampled order-flow event. It is immutable once created:
// the clock samples it, the transition engine consumes it exactly once,
// and it is then appended to the trajectory.
type Event struct {
	// Time is the simulation clock value at which the event occurs.
	// Strictly increasing along a trajectory.
	Time float64
	Kind EventKind
	Side Side
	// Level is the relative distance from the reference price at sampling
	// time, 0 = best. MarketExecute events always carry Level 0.
	Level int
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s@%d t=%.6f", e.Kind, e.Side, e.Level, e.Time)
}
