package sim

import (
	"context"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// RunSummary is the cross-run view of one completed trajectory.
type RunSummary struct {
	Run        int
	Seed       int64
	Events     int64
	Stop       StopReason
	Clock      float64
	FinalMid   float64 // ticks
	MidDrift   float64 // final mid - initial mid, ticks
	ShiftsUp   int64
	ShiftsDown int64
	MeanDepth  float64
	KindCounts [numEventKinds]int64
}

// EnsembleResult aggregates an ensemble of independent runs.
type EnsembleResult struct {
	Runs      []RunSummary
	KindFreq  [numEventKinds]float64 // empirical event-kind distribution
	DriftMean float64                // mean mid drift across runs, ticks
	DriftStd  float64
}

// RunEnsemble executes n independent runs of cfg on at most workers
// goroutines. Run i uses the seed derived from cfg.Seed and i, so the
// ensemble is reproducible as a whole and each member individually.
// Runs share only the immutable Config; book state and trajectories are
// exclusively owned per run, so no synchronization is needed beyond
// collecting results.
//
// The first run error cancels the remaining work and is returned.
func RunEnsemble(ctx context.Context, cfg *Config, n, workers int) (*EnsembleResult, error) {
	if n <= 0 {
		return nil, &ConfigurationError{Field: "runs", Reason: "must be positive"}
	}
	if workers <= 0 {
		workers = 1
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	summaries := make([]RunSummary, n)
	errs := make([]error, n)
	indices := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				summary, err := runOne(ctx, cfg, i)
				if err != nil {
					errs[i] = err
					cancel()
					continue
				}
				summaries[i] = summary
			}
		}()
	}

	for i := 0; i < n; i++ {
		select {
		case indices <- i:
		case <-ctx.Done():
		}
	}
	close(indices)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}
	}
	if err := ctx.Err(); err != nil {
		// Caller cancellation with no run error: partial ensembles are not
		// aggregated.
		return nil, err
	}

	return aggregate(summaries), nil
}

func runOne(ctx context.Context, cfg *Config, i int) (RunSummary, error) {
	runCfg := *cfg
	runCfg.Seed = int64(NewSimulationKey(cfg.Seed).ForRun(i))

	s, err := NewSimulator(&runCfg)
	if err != nil {
		return RunSummary{}, err
	}
	tr, err := s.Run(ctx)
	if err != nil {
		return RunSummary{}, err
	}
	return Summarize(i, tr, s.Metrics), nil
}

// Summarize condenses a completed run into its ensemble summary.
func Summarize(run int, tr *Trajectory, m *Metrics) RunSummary {
	return RunSummary{
		Run:        run,
		Seed:       tr.Seed,
		Events:     int64(tr.Events()),
		Stop:       tr.Stop,
		Clock:      tr.Clock,
		FinalMid:   tr.Final.MidTicks(),
		MidDrift:   tr.Final.MidTicks() - tr.Initial.MidTicks(),
		ShiftsUp:   m.ShiftsUp,
		ShiftsDown: m.ShiftsDown,
		MeanDepth:  m.MeanBestDepth(),
		KindCounts: m.EventsByKind,
	}
}

func aggregate(summaries []RunSummary) *EnsembleResult {
	res := &EnsembleResult{Runs: summaries}

	var totalEvents int64
	drifts := make([]float64, len(summaries))
	for i, s := range summaries {
		drifts[i] = s.MidDrift
		for kind, c := range s.KindCounts {
			res.KindFreq[kind] += float64(c)
			totalEvents += c
		}
	}
	if totalEvents > 0 {
		for kind := range res.KindFreq {
			res.KindFreq[kind] /= float64(totalEvents)
		}
	}
	res.DriftMean = stat.Mean(drifts, nil)
	if len(drifts) > 1 {
		res.DriftStd = stat.StdDev(drifts, nil)
	}
	return res
}

// Print displays the ensemble aggregates.
func (r *EnsembleResult) Print() {
	fmt.Println("=== Ensemble Metrics ===")
	fmt.Printf("Runs                 : %d\n", len(r.Runs))
	for kind := EventKind(0); kind < numEventKinds; kind++ {
		fmt.Printf("  P(%-14s)  : %.4f\n", kind.String(), r.KindFreq[kind])
	}
	fmt.Printf("Mid drift            : mean %.4f std %.4f ticks\n", r.DriftMean, r.DriftStd)
}
