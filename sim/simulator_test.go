package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedBookConfig() Config {
	cfg := validConfig()
	cfg.Book = BookConfig{
		BidDepths: []int{4, 4, 4},
		AskDepths: []int{4, 4, 4},
	}
	cfg.Replenish = ReplenishConfig{Policy: "constant", Depth: 3}
	return cfg
}

func TestNewSimulator_RejectsInvalidConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Levels = 0
	_, err := NewSimulator(&cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestNewSimulator_InitialState(t *testing.T) {
	cfg := fixedBookConfig()
	s, err := NewSimulator(&cfg)
	require.NoError(t, err)

	assert.Equal(t, int64(10000), s.State.ReferenceTick())
	assert.Equal(t, []int{4, 4, 4}, s.State.Depths(Bid))
	assert.Equal(t, []int{4, 4, 4}, s.State.Depths(Ask))
	assert.Equal(t, Snapshot{ReferenceTick: 10000, Bids: []int{4, 4, 4}, Asks: []int{4, 4, 4}},
		s.Trajectory.Initial)
}

func TestNewSimulator_DrawnInitialBook(t *testing.T) {
	cfg := validConfig() // depth_mean 4, no explicit depths
	s, err := NewSimulator(&cfg)
	require.NoError(t, err)

	assert.Positive(t, s.State.BestBid(), "drawn best bid must be non-empty")
	assert.Positive(t, s.State.BestAsk(), "drawn best ask must be non-empty")
	for level := 0; level < cfg.Levels; level++ {
		assert.GreaterOrEqual(t, s.State.Queue(Bid, level), 0)
		assert.GreaterOrEqual(t, s.State.Queue(Ask, level), 0)
	}

	// Same seed, same drawn book.
	cfg2 := validConfig()
	s2, err := NewSimulator(&cfg2)
	require.NoError(t, err)
	assert.Equal(t, s.State.Depths(Bid), s2.State.Depths(Bid))
	assert.Equal(t, s.State.Depths(Ask), s2.State.Depths(Ask))
}

func TestSimulator_SingleEvent(t *testing.T) {
	cfg := validConfig()
	cfg.TickSize = 1
	cfg.Seed = 42
	cfg.Horizon = 0
	cfg.MaxEvents = 1
	cfg.Book = BookConfig{
		BidDepths: []int{5, 5, 5},
		AskDepths: []int{5, 5, 5},
	}

	s, err := NewSimulator(&cfg)
	require.NoError(t, err)

	tr, err := s.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, tr.Events())
	assert.Equal(t, StopEventLimit, tr.Stop)

	step := tr.Steps[0]
	assert.Greater(t, step.Event.Time, 0.0)
	assert.Equal(t, step.Event.Time, tr.Clock)
	assert.Equal(t, 5, step.QueueBefore)
	assert.Zero(t, step.RefShift, "one event off a depth-5 queue cannot deplete it")

	// One single-unit event changes exactly one queue by one.
	changed := 0
	for _, side := range []Side{Bid, Ask} {
		for level := 0; level < cfg.Levels; level++ {
			got := s.State.Queue(side, level)
			if got != 5 {
				changed++
				assert.InDelta(t, 5, got, 1)
			}
		}
	}
	assert.Equal(t, 1, changed)

	// The changed queue is the one the sampled event targeted, moved in the
	// direction its kind implies.
	want := 6
	if step.Event.Kind != LimitInsert {
		want = 4
	}
	assert.Equal(t, want, s.State.Queue(step.Event.Side, step.Event.Level))
}

func TestSimulator_Deterministic(t *testing.T) {
	run := func() *Trajectory {
		cfg := fixedBookConfig()
		cfg.Horizon = 50
		s, err := NewSimulator(&cfg)
		require.NoError(t, err)
		tr, err := s.Run(context.Background())
		require.NoError(t, err)
		return tr
	}

	a := run()
	b := run()
	require.Greater(t, a.Events(), 0)
	assert.Equal(t, a.Steps, b.Steps)
	assert.Equal(t, a.Final, b.Final)
	assert.Equal(t, a.Clock, b.Clock)
}

func TestSimulator_SeedChangesTrajectory(t *testing.T) {
	run := func(seed int64) *Trajectory {
		cfg := fixedBookConfig()
		cfg.Horizon = 50
		cfg.Seed = seed
		s, err := NewSimulator(&cfg)
		require.NoError(t, err)
		tr, err := s.Run(context.Background())
		require.NoError(t, err)
		return tr
	}

	assert.NotEqual(t, run(1).Steps, run(2).Steps)
}

func TestSimulator_HorizonStop(t *testing.T) {
	cfg := fixedBookConfig()
	cfg.Horizon = 25

	s, err := NewSimulator(&cfg)
	require.NoError(t, err)
	tr, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StopHorizon, tr.Stop)
	assert.Equal(t, 25.0, tr.Clock, "clock lands exactly on the horizon")
	for _, step := range tr.Steps {
		assert.LessOrEqual(t, step.Event.Time, 25.0, "events past the horizon must be discarded")
	}
}

func TestSimulator_Cancellation(t *testing.T) {
	cfg := fixedBookConfig()
	cfg.Horizon = 1e12 // effectively unbounded

	s, err := NewSimulator(&cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, StopCancelled, tr.Stop)
	assert.Equal(t, 0, tr.Events())
}

func TestSimulator_BestQueuesStayPositive(t *testing.T) {
	cfg := fixedBookConfig()
	cfg.Horizon = 200
	cfg.SnapshotDepths = true

	s, err := NewSimulator(&cfg)
	require.NoError(t, err)
	tr, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Greater(t, tr.Events(), 100)

	for i, step := range tr.Steps {
		require.Positive(t, step.BestBid, "step %d: empty best bid after transition", i)
		require.Positive(t, step.BestAsk, "step %d: empty best ask after transition", i)
		require.Len(t, step.Bids, cfg.Levels)
		require.Len(t, step.Asks, cfg.Levels)
		for level := 0; level < cfg.Levels; level++ {
			require.GreaterOrEqual(t, step.Bids[level], 0, "step %d", i)
			require.GreaterOrEqual(t, step.Asks[level], 0, "step %d", i)
		}
	}
}

func TestSimulator_TimesStrictlyIncrease(t *testing.T) {
	cfg := fixedBookConfig()
	cfg.Horizon = 100

	s, err := NewSimulator(&cfg)
	require.NoError(t, err)
	tr, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Greater(t, tr.Events(), 1)

	prev := 0.0
	for i, step := range tr.Steps {
		require.Greater(t, step.Event.Time, prev, "step %d", i)
		prev = step.Event.Time
	}
}

func TestSimulator_StepsOmitDepthsByDefault(t *testing.T) {
	cfg := fixedBookConfig()
	cfg.Horizon = 0
	cfg.MaxEvents = 5

	s, err := NewSimulator(&cfg)
	require.NoError(t, err)
	tr, err := s.Run(context.Background())
	require.NoError(t, err)

	for _, step := range tr.Steps {
		assert.Nil(t, step.Bids)
		assert.Nil(t, step.Asks)
	}
}
