package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	state, err := NewBookState(100, []int{2, 3}, []int{4, 5})
	require.NoError(t, err)

	m := NewMetrics()
	m.observe(Event{Kind: LimitInsert, Side: Bid}, state, 0)
	m.observe(Event{Kind: MarketExecute, Side: Ask}, state, 1)
	m.observe(Event{Kind: Cancel, Side: Bid}, state, -2)

	assert.Equal(t, int64(3), m.TotalEvents())
	assert.Equal(t, int64(1), m.EventsByKind[LimitInsert])
	assert.Equal(t, int64(1), m.EventsByKind[Cancel])
	assert.Equal(t, int64(1), m.EventsByKind[MarketExecute])
	assert.Equal(t, int64(2), m.EventsBySide[Bid])
	assert.Equal(t, int64(1), m.EventsBySide[Ask])
	assert.Equal(t, int64(1), m.ShiftsUp)
	assert.Equal(t, int64(2), m.ShiftsDown)
	assert.Equal(t, 3.0, m.MeanBestDepth())
}

func TestMetrics_MidStats(t *testing.T) {
	m := NewMetrics()
	mean, std := m.MidStats()
	assert.Zero(t, mean)
	assert.Zero(t, std)

	// Mids 100.5, 101.5, 103.5: increments 1 and 2.
	m.midTicks = []float64{100.5, 101.5, 103.5}
	mean, std = m.MidStats()
	assert.InDelta(t, 1.5, mean, 1e-12)
	assert.InDelta(t, 0.7071, std, 1e-3)
}
