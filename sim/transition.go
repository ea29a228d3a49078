package sim

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// ReplenishPolicy draws the depth of the far level appended after a
// reference shift. Implementations must return non-negative values.
type ReplenishPolicy interface {
	Draw(rng *rand.Rand) int
}

// ZeroReplenish appends empty far levels, the default when nothing is
// configured.
type ZeroReplenish struct{}

func (ZeroReplenish) Draw(*rand.Rand) int { return 0 }

// ConstantReplenish appends a fixed far-level depth.
type ConstantReplenish struct {
	Depth int
}

func (p ConstantReplenish) Draw(*rand.Rand) int { return p.Depth }

// GeometricReplenish draws far-level depths from a geometric distribution
// with the given mean, a stand-in for the empirical far-level distribution
// when no calibrated one is available.
type GeometricReplenish struct {
	Mean float64
}

func (p GeometricReplenish) Draw(rng *rand.Rand) int {
	// Inverse CDF of Geometric(p) on {0,1,...} with mean (1-p)/p.
	prob := 1 / (p.Mean + 1)
	u := rng.Float64()
	if u == 0 {
		return 0
	}
	return int(math.Floor(math.Log(u) / math.Log(1-prob)))
}

// NewReplenishPolicy builds the policy a ReplenishConfig selects.
// Validate has already vetted the fields.
func NewReplenishPolicy(cfg ReplenishConfig) ReplenishPolicy {
	switch cfg.Policy {
	case "constant":
		return ConstantReplenish{Depth: cfg.Depth}
	case "geometric":
		return GeometricReplenish{Mean: cfg.Mean}
	}
	return ZeroReplenish{}
}

// TransitionEngine applies sampled events to the book, including the
// reference-price shift when a best queue depletes.
type TransitionEngine struct {
	replenish ReplenishPolicy
	rng       *rand.Rand // replenish subsystem stream
}

// NewTransitionEngine builds a transition engine. rng must be the
// replenish RNG subsystem so far-level draws never perturb the event clock.
func NewTransitionEngine(policy ReplenishPolicy, rng *rand.Rand) *TransitionEngine {
	return &TransitionEngine{replenish: policy, rng: rng}
}

// Apply mutates state according to the event and returns the signed number
// of ticks the reference price moved (0 for most events, +1 when the best
// ask depleted, -1 for the best bid, more if the levels sliding in were
// empty too). Errors abort the run; the trajectory up to the previous
// event remains valid.
func (t *TransitionEngine) Apply(state *BookState, ev Event) (int, error) {
	switch ev.Kind {
	case LimitInsert:
		if err := state.ApplyDelta(ev.Side, ev.Level, +1); err != nil {
			return 0, err
		}
		return 0, nil

	case Cancel:
		if err := state.ApplyDelta(ev.Side, ev.Level, -1); err != nil {
			return 0, err
		}
		if ev.Level == 0 {
			return t.restoreBest(state, ev.Side)
		}
		return 0, nil

	case MarketExecute:
		if ev.Level != 0 {
			return 0, &InvalidStateError{
				Side:  ev.Side,
				Level: ev.Level,
				Delta: -1,
				Size:  state.Queue(ev.Side, ev.Level),
			}
		}
		if err := state.ApplyDelta(ev.Side, 0, -1); err != nil {
			return 0, err
		}
		return t.restoreBest(state, ev.Side)
	}
	return 0, fmt.Errorf("%w: unknown event kind %d", ErrInvalidState, ev.Kind)
}

// restoreBest shifts the reference price one tick at a time toward the
// given side until its best queue is non-empty again, appending a
// replenished far level per shift. A completed transition never leaves a
// best queue empty.
//
// One single-unit event can empty only one best queue, so the opposite
// side never needs restoring in the same transition.
func (t *TransitionEngine) restoreBest(state *BookState, side Side) (int, error) {
	shifts := 0
	for state.Queue(side, 0) == 0 {
		if shifts >= state.Levels() && sideEmpty(state, side) {
			// Every original level has been shifted out, every replenished
			// level came up zero, and the side is entirely empty. With a
			// zero replenishment policy this is a stable dead end; surface
			// it instead of spinning.
			return 0, fmt.Errorf("%w: %s side exhausted after %d reference shifts",
				ErrInvalidState, side, shifts)
		}
		state.ShiftReference(side, t.replenish.Draw(t.rng))
		shifts++
	}
	if side == Bid {
		return -shifts, nil
	}
	return shifts, nil
}

func sideEmpty(state *BookState, side Side) bool {
	for level := 0; level < state.Levels(); level++ {
		if state.Queue(side, level) > 0 {
			return false
		}
	}
	return true
}
