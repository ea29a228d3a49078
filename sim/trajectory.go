package sim

import (
	"github.com/shopspring/decimal"
)

// StopReason records how a run terminated. Cancellation is a normal
// termination, not an error.
type StopReason string

const (
	StopHorizon    StopReason = "horizon"
	StopEventLimit StopReason = "event_limit"
	StopCancelled  StopReason = "cancelled"
)

// Step is one (event, post-event state) entry of a trajectory. The depth
// vectors are copies and are only populated when the run is configured
// with SnapshotDepths; the scalar summary fields are always set.
type Step struct {
	Event         Event
	QueueBefore   int // size of the targeted queue just before the event
	ReferenceTick int64
	BestBid       int
	BestAsk       int
	RefShift      int // signed ticks the reference moved on this event
	Bids          []int
	Asks          []int
}

// Trajectory is the append-only record of one run: every applied event
// with its post-event state summary. It is exclusively owned by its run
// while the run is live and handed off to collaborators afterwards.
type Trajectory struct {
	Seed     int64
	TickSize float64
	Levels   int

	Initial Snapshot
	Steps   []Step

	Stop  StopReason
	Clock float64 // simulation time when the run stopped
	Final Snapshot
}

// Snapshot is a frozen view of a book state.
type Snapshot struct {
	ReferenceTick int64
	Bids          []int
	Asks          []int
}

// TakeSnapshot freezes the current book state.
func TakeSnapshot(b *BookState) Snapshot {
	return Snapshot{
		ReferenceTick: b.ReferenceTick(),
		Bids:          b.Depths(Bid),
		Asks:          b.Depths(Ask),
	}
}

// MidPrice converts the snapshot's reference to an exact decimal price:
// the midpoint between the best bid tick and best ask tick. Decimal
// arithmetic keeps reported prices free of float drift across millions of
// accumulated ticks.
func (s Snapshot) MidPrice(tickSize float64) decimal.Decimal {
	tick := decimal.NewFromFloat(tickSize)
	mid := decimal.NewFromInt(s.ReferenceTick).Add(decimal.NewFromFloat(0.5))
	return mid.Mul(tick)
}

// MidTicks is the mid price in tick units.
func (s Snapshot) MidTicks() float64 {
	return float64(s.ReferenceTick) + 0.5
}

func (tr *Trajectory) append(ev Event, queueBefore int, state *BookState, refShift int, withDepths bool) {
	step := Step{
		Event:         ev,
		QueueBefore:   queueBefore,
		ReferenceTick: state.ReferenceTick(),
		BestBid:       state.BestBid(),
		BestAsk:       state.BestAsk(),
		RefShift:      refShift,
	}
	if withDepths {
		step.Bids = state.Depths(Bid)
		step.Asks = state.Depths(Ask)
	}
	tr.Steps = append(tr.Steps, step)
}

// Events returns the number of applied events.
func (tr *Trajectory) Events() int { return len(tr.Steps) }
