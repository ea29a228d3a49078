package sim

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// EventClock samples the next event and its occurrence time with the
// Gillespie direct method: sum the rates of every possible (kind, side,
// level) triple into a total rate, draw an exponential waiting time with
// that rate, then pick the triple with probability proportional to its
// individual rate. The timing is exact; there is no time discretization.
//
// The clock owns a scratch weight buffer sized once for L levels, so a
// sampling step allocates nothing.
type EventClock struct {
	model   *IntensityModel
	rng     *rand.Rand
	exp     distuv.Exponential
	weights []float64
}

// NewEventClock builds a clock over the given model. Source and rng must
// share the same underlying stream (PartitionedRNG guarantees this for a
// subsystem), so waiting-time and categorical draws interleave
// deterministically.
func NewEventClock(model *IntensityModel, rng *rand.Rand, src rand.Source) *EventClock {
	return &EventClock{
		model:   model,
		rng:     rng,
		exp:     distuv.Exponential{Rate: 1, Src: src},
		weights: make([]float64, numEventKinds*numSides*model.Levels()),
	}
}

// TotalRate computes the aggregate event rate of the current state, filling
// the clock's weight buffer in triple-enumeration order.
func (c *EventClock) TotalRate(state *BookState) float64 {
	total := 0.0
	i := 0
	levels := c.model.Levels()
	for kind := EventKind(0); kind < numEventKinds; kind++ {
		for side := Side(0); side < numSides; side++ {
			for level := 0; level < levels; level++ {
				r := c.model.Rate(kind, side, level, state.Queue(side, level))
				c.weights[i] = r
				total += r
				i++
			}
		}
	}
	return total
}

// NextEvent samples the next event after time now. It fails with a
// DegenerateStateError when the total rate is not positive: no event can
// ever occur, which is a model bug, not a recoverable condition.
func (c *EventClock) NextEvent(state *BookState, now float64) (Event, error) {
	total := c.TotalRate(state)
	if total <= 0 {
		return Event{}, &DegenerateStateError{TotalRate: total, State: state.Clone()}
	}

	c.exp.Rate = total
	wait := c.exp.Rand()

	kind, side, level := c.pick(total)
	return Event{Time: now + wait, Kind: kind, Side: side, Level: level}, nil
}

// pick draws a triple proportional to the weights filled by TotalRate.
func (c *EventClock) pick(total float64) (EventKind, Side, int) {
	u := c.rng.Float64() * total
	levels := c.model.Levels()
	i := 0
	for kind := EventKind(0); kind < numEventKinds; kind++ {
		for side := Side(0); side < numSides; side++ {
			for level := 0; level < levels; level++ {
				u -= c.weights[i]
				if u < 0 {
					return kind, side, level
				}
				i++
			}
		}
	}
	// Floating-point underflow at the tail: fall back to the last triple
	// with positive weight.
	for j := len(c.weights) - 1; j >= 0; j-- {
		if c.weights[j] > 0 {
			return c.triple(j)
		}
	}
	return c.triple(len(c.weights) - 1)
}

func (c *EventClock) triple(i int) (EventKind, Side, int) {
	levels := c.model.Levels()
	level := i % levels
	i /= levels
	side := Side(i % numSides)
	i /= numSides
	return EventKind(i), side, level
}
