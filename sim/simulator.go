package sim

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Simulator is the core object that holds simulation time, the book state,
// and the event loop of one run. It wires the event clock, the transition
// engine and the trajectory together; all randomness flows through the
// run's PartitionedRNG, so a fixed seed reproduces the trajectory
// bit-for-bit.
type Simulator struct {
	Config *Config
	State  *BookState

	Clock      float64
	Horizon    float64
	MaxEvents  int64
	EventCount int64

	Model      *IntensityModel
	EventClock *EventClock
	Transition *TransitionEngine
	RNG        *PartitionedRNG

	Trajectory *Trajectory
	Metrics    *Metrics
}

// NewSimulator validates the configuration and assembles a run. It fails
// fast with a ConfigurationError before any event is generated.
func NewSimulator(cfg *Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	model, err := cfg.buildIntensityModel()
	if err != nil {
		return nil, fmt.Errorf("building intensity model: %w", err)
	}

	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed))

	state, err := initialBook(cfg, rng)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		Config:     cfg,
		State:      state,
		Horizon:    cfg.Horizon,
		MaxEvents:  cfg.MaxEvents,
		Model:      model,
		EventClock: NewEventClock(model, rng.ForSubsystem(SubsystemClock), rng.SourceFor(SubsystemClock)),
		Transition: NewTransitionEngine(NewReplenishPolicy(cfg.Replenish), rng.ForSubsystem(SubsystemReplenish)),
		RNG:        rng,
		Metrics:    NewMetrics(),
	}
	s.Trajectory = &Trajectory{
		Seed:     cfg.Seed,
		TickSize: cfg.TickSize,
		Levels:   cfg.Levels,
		Initial:  TakeSnapshot(state),
	}
	return s, nil
}

// initialBook builds the starting state: explicit depths when configured,
// i.i.d. geometric draws otherwise. Best levels are redrawn until
// non-empty so the run starts inside the state machine's invariant.
func initialBook(cfg *Config, rng *PartitionedRNG) (*BookState, error) {
	if len(cfg.Book.BidDepths) > 0 {
		return NewBookState(cfg.InitialTick, cfg.Book.BidDepths, cfg.Book.AskDepths)
	}

	draw := GeometricReplenish{Mean: cfg.Book.DepthMean}
	depthRNG := rng.ForSubsystem(SubsystemDepth)
	sample := func() []int {
		depths := make([]int, cfg.Levels)
		for i := range depths {
			depths[i] = draw.Draw(depthRNG)
		}
		for depths[0] == 0 {
			depths[0] = draw.Draw(depthRNG)
		}
		return depths
	}
	return NewBookState(cfg.InitialTick, sample(), sample())
}

// Run executes the event loop until the horizon, the event-count limit or
// cancellation. The returned trajectory is complete for every non-error
// outcome; errors abort the run immediately with no partial event applied.
//
// The ctx check runs once per iteration: state mutation is atomic per
// event, so cancellation never leaves the book partially updated.
func (s *Simulator) Run(ctx context.Context) (*Trajectory, error) {
	logrus.Infof("run start: seed=%d levels=%d horizon=%g", s.Config.Seed, s.Config.Levels, s.Horizon)

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("run cancelled at t=%.6f after %d events", s.Clock, s.EventCount)
			s.finish(StopCancelled)
			return s.Trajectory, nil
		default:
		}

		if s.MaxEvents > 0 && s.EventCount >= s.MaxEvents {
			s.finish(StopEventLimit)
			return s.Trajectory, nil
		}

		ev, err := s.EventClock.NextEvent(s.State, s.Clock)
		if err != nil {
			return nil, err
		}

		// An event past the horizon would happen after the run ends; it is
		// discarded, never partially applied.
		if s.Horizon > 0 && ev.Time > s.Horizon {
			s.Clock = s.Horizon
			s.finish(StopHorizon)
			return s.Trajectory, nil
		}

		queueBefore := s.State.Queue(ev.Side, ev.Level)
		refShift, err := s.Transition.Apply(s.State, ev)
		if err != nil {
			return nil, fmt.Errorf("applying %s: %w", ev, err)
		}

		s.Clock = ev.Time
		s.EventCount++
		s.Trajectory.append(ev, queueBefore, s.State, refShift, s.Config.SnapshotDepths)
		s.Metrics.observe(ev, s.State, refShift)

		logrus.Debugf("[t %.6f] %s ref=%d best=%d/%d",
			ev.Time, ev, s.State.ReferenceTick(), s.State.BestBid(), s.State.BestAsk())
	}
}

func (s *Simulator) finish(reason StopReason) {
	s.Trajectory.Stop = reason
	s.Trajectory.Clock = s.Clock
	s.Trajectory.Final = TakeSnapshot(s.State)
	logrus.Infof("run ended (%s): t=%.6f events=%d ref=%d", reason, s.Clock, s.EventCount, s.State.ReferenceTick())
}
