// Package calib estimates queue-reactive intensity parameters from
// historical (or simulated) event logs. It is the producer side of the
// engine's parameter-set interface: the engine never reads event data
// itself.
//
// The estimator is the standard one for continuous-time Markov chains:
// the rate of (kind, side, level) at queue size q is the number of such
// events observed at size q divided by the total time that queue spent at
// size q.
package calib

import (
	"fmt"

	"github.com/lobsim/lobsim/sim"
	"github.com/lobsim/lobsim/sim/trace"
)

// Options tunes the estimator.
type Options struct {
	// Levels is L of the log being calibrated.
	Levels int
	// MaxQueueSize caps the table: observations at larger sizes pool into
	// the last bucket, matching TableIntensity's tail behavior.
	MaxQueueSize int
}

// Report describes how well the log covered the state space.
type Report struct {
	Events    int     `json:"events" yaml:"events"`
	Intervals int     `json:"intervals" yaml:"intervals"`
	TotalTime float64 `json:"total_time" yaml:"total_time"`
	// Coverage is the fraction of (side, level, size) occupation cells
	// with positive observed time.
	Coverage float64 `json:"coverage" yaml:"coverage"`
	Quality  string  `json:"quality" yaml:"quality"` // "excellent", "good", "fair", "poor"
}

// Result is a calibrated parameter set plus its quality report. Flows
// conforms to the engine's intensity contract and can be dropped straight
// into a sim.Config.
type Result struct {
	Flows  sim.FlowConfig
	Report Report
}

type cellKey struct {
	side  int
	level int
	size  int
}

// Calibrate estimates table intensities from an event log. Records must
// carry post-event depth vectors (logs written with snapshot_depths).
func Calibrate(records []trace.Record, opts Options) (*Result, error) {
	if opts.Levels <= 0 {
		return nil, fmt.Errorf("calibrate: levels must be positive, got %d", opts.Levels)
	}
	if opts.MaxQueueSize <= 0 {
		return nil, fmt.Errorf("calibrate: max queue size must be positive, got %d", opts.MaxQueueSize)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("calibrate: need at least 2 records, got %d", len(records))
	}

	maxQ := opts.MaxQueueSize
	bucket := func(q int) int {
		if q > maxQ {
			return maxQ
		}
		return q
	}

	// counts[kind][side][level][size], occupation[side][level][size]
	counts := make(map[string]map[cellKey]float64)
	occupation := make(map[cellKey]float64)

	totalTime := 0.0
	intervals := 0
	for i, rec := range records {
		if len(rec.Bids) != opts.Levels || len(rec.Asks) != opts.Levels {
			return nil, fmt.Errorf("calibrate: record %d has no %d-level depth vectors; write logs with snapshot_depths", i, opts.Levels)
		}
		if _, err := sim.ParseEventKind(rec.Kind); err != nil {
			return nil, fmt.Errorf("calibrate: record %d: %w", i, err)
		}
		if _, err := sim.ParseSide(rec.Side); err != nil {
			return nil, fmt.Errorf("calibrate: record %d: %w", i, err)
		}

		// Event count, conditioned on the pre-event target queue size.
		if counts[rec.Kind] == nil {
			counts[rec.Kind] = make(map[cellKey]float64)
		}
		sideIdx := 0
		if rec.Side == sim.Ask.String() {
			sideIdx = 1
		}
		counts[rec.Kind][cellKey{sideIdx, rec.Level, bucket(rec.QueueSize)}]++

		// Occupation time of the post-event state until the next event.
		if i+1 >= len(records) {
			break
		}
		dt := records[i+1].Time - rec.Time
		if dt < 0 {
			return nil, fmt.Errorf("calibrate: record %d: time goes backwards", i+1)
		}
		for level := 0; level < opts.Levels; level++ {
			occupation[cellKey{0, level, bucket(rec.Bids[level])}] += dt
			occupation[cellKey{1, level, bucket(rec.Asks[level])}] += dt
		}
		totalTime += dt
		intervals++
	}

	flows := sim.FlowConfig{}
	for kind, kc := range map[string]*sim.KindConfig{
		sim.LimitInsert.String():   &flows.LimitInsert,
		sim.Cancel.String():        &flows.Cancel,
		sim.MarketExecute.String(): &flows.MarketExecute,
	} {
		kc.Bid = tables(counts[kind], occupation, 0, opts.Levels, maxQ)
		kc.Ask = tables(counts[kind], occupation, 1, opts.Levels, maxQ)
	}

	covered := 0
	for _, t := range occupation {
		if t > 0 {
			covered++
		}
	}
	totalCells := 2 * opts.Levels * (maxQ + 1)
	report := Report{
		Events:    len(records),
		Intervals: intervals,
		TotalTime: totalTime,
		Coverage:  float64(covered) / float64(totalCells),
	}
	report.Quality = quality(report.Coverage, len(records))

	return &Result{Flows: flows, Report: report}, nil
}

// tables builds one per-level vector of table intensity specs for a
// (kind, side). Cells with no observed occupation time get rate zero.
func tables(counts map[cellKey]float64, occupation map[cellKey]float64, side, levels, maxQ int) []sim.IntensitySpec {
	specs := make([]sim.IntensitySpec, levels)
	for level := 0; level < levels; level++ {
		table := make([]float64, maxQ+1)
		for size := 0; size <= maxQ; size++ {
			key := cellKey{side, level, size}
			if t := occupation[key]; t > 0 {
				table[size] = counts[key] / t
			}
		}
		specs[level] = sim.IntensitySpec{Form: "table", Table: table}
	}
	return specs
}

func quality(coverage float64, events int) string {
	switch {
	case coverage >= 0.8 && events >= 10000:
		return "excellent"
	case coverage >= 0.6 && events >= 1000:
		return "good"
	case coverage >= 0.3:
		return "fair"
	}
	return "poor"
}
