// Tracks per-run aggregates for final reporting.

package sim

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Metrics aggregates statistics about one run, useful for sanity-checking
// model behavior and comparing parameter sets.
type Metrics struct {
	EventsByKind [numEventKinds]int64
	EventsBySide [numSides]int64

	ShiftsUp   int64 // reference moved up (ask depletions)
	ShiftsDown int64 // reference moved down (bid depletions)

	// Per-event series, used for summary statistics at the end of a run.
	midTicks   []float64
	bestDepths []float64
}

// NewMetrics creates an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) observe(ev Event, state *BookState, refShift int) {
	m.EventsByKind[ev.Kind]++
	m.EventsBySide[ev.Side]++
	if refShift > 0 {
		m.ShiftsUp += int64(refShift)
	} else {
		m.ShiftsDown += int64(-refShift)
	}
	m.midTicks = append(m.midTicks, float64(state.ReferenceTick())+0.5)
	m.bestDepths = append(m.bestDepths, float64(state.BestBid()+state.BestAsk())/2)
}

// TotalEvents returns the number of applied events.
func (m *Metrics) TotalEvents() int64 {
	var n int64
	for _, c := range m.EventsByKind {
		n += c
	}
	return n
}

// MidStats returns mean and standard deviation of the one-event mid-price
// increments, in ticks. Zeroes when fewer than two events were applied.
func (m *Metrics) MidStats() (mean, std float64) {
	if len(m.midTicks) < 2 {
		return 0, 0
	}
	diffs := make([]float64, len(m.midTicks)-1)
	for i := 1; i < len(m.midTicks); i++ {
		diffs[i-1] = m.midTicks[i] - m.midTicks[i-1]
	}
	mean = stat.Mean(diffs, nil)
	std = stat.StdDev(diffs, nil)
	return mean, std
}

// MeanBestDepth returns the time-average (per event) of the mean
// top-of-book depth.
func (m *Metrics) MeanBestDepth() float64 {
	if len(m.bestDepths) == 0 {
		return 0
	}
	return stat.Mean(m.bestDepths, nil)
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print(clock float64) {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Simulated time       : %.6f\n", clock)
	fmt.Printf("Applied events       : %d\n", m.TotalEvents())
	for kind := EventKind(0); kind < numEventKinds; kind++ {
		fmt.Printf("  %-18s : %d\n", kind.String(), m.EventsByKind[kind])
	}
	fmt.Printf("Bid / Ask events     : %d / %d\n", m.EventsBySide[Bid], m.EventsBySide[Ask])
	fmt.Printf("Reference shifts     : +%d / -%d ticks\n", m.ShiftsUp, m.ShiftsDown)
	if mean, std := m.MidStats(); std > 0 {
		fmt.Printf("Mid increment        : mean %.6f std %.6f ticks\n", mean, std)
	}
	fmt.Printf("Mean best depth      : %.2f\n", m.MeanBestDepth())
}
