package sim

import (
	"github.com/lobsim/lobsim/sim/trace"
)

// Records converts the trajectory into its persistent log form. Depth
// vectors are present only when the run captured them (SnapshotDepths).
func (tr *Trajectory) Records() []trace.Record {
	records := make([]trace.Record, len(tr.Steps))
	for i, step := range tr.Steps {
		records[i] = trace.Record{
			Time:      step.Event.Time,
			Kind:      step.Event.Kind.String(),
			Side:      step.Event.Side.String(),
			Level:     step.Event.Level,
			QueueSize: step.QueueBefore,
			RefTick:   step.ReferenceTick,
			RefShift:  step.RefShift,
			Bids:      step.Bids,
			Asks:      step.Asks,
		}
	}
	return records
}

// BuildSummary condenses a completed run into its JSON digest.
func BuildSummary(tr *Trajectory, m *Metrics) *trace.Summary {
	counts := make(map[string]int64, numEventKinds)
	for kind := EventKind(0); kind < numEventKinds; kind++ {
		counts[kind.String()] = m.EventsByKind[kind]
	}
	return &trace.Summary{
		Seed:        tr.Seed,
		Levels:      tr.Levels,
		TickSize:    tr.TickSize,
		Events:      int64(tr.Events()),
		Stop:        string(tr.Stop),
		Clock:       tr.Clock,
		InitialTick: tr.Initial.ReferenceTick,
		FinalTick:   tr.Final.ReferenceTick,
		FinalMid:    tr.Final.MidPrice(tr.TickSize).String(),
		ShiftsUp:    m.ShiftsUp,
		ShiftsDown:  m.ShiftsDown,
		KindCounts:  counts,
	}
}
