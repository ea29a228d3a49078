package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lobsim/lobsim/sim"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleEnsemble(seedBase int64, n int) *sim.EnsembleResult {
	runs := make([]sim.RunSummary, n)
	for i := range runs {
		runs[i] = sim.RunSummary{
			Run:       i,
			Seed:      seedBase + int64(i),
			Events:    int64(100 + i),
			Stop:      sim.StopHorizon,
			Clock:     25,
			FinalMid:  10000.5 + float64(i),
			MidDrift:  float64(i),
			ShiftsUp:  int64(i),
			MeanDepth: 3.5,
		}
	}
	return &sim.EnsembleResult{Runs: runs}
}

func TestStore_SaveAndList(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveEnsemble("baseline", sampleEnsemble(100, 3)))

	records, err := s.ListRuns("baseline")
	require.NoError(t, err)
	require.Len(t, records, 3)

	for i, rec := range records {
		assert.Equal(t, "baseline", rec.Label)
		assert.Equal(t, i, rec.Run)
		assert.Equal(t, int64(100+i), rec.Seed)
		assert.Equal(t, int64(100+i), rec.Events)
		assert.Equal(t, "horizon", rec.Stop)
		assert.Equal(t, 3.5, rec.MeanDepth)
		assert.False(t, rec.CreatedAt.IsZero())
	}
}

func TestStore_ListUnknownLabel(t *testing.T) {
	s := openTestStore(t)

	records, err := s.ListRuns("nope")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_Labels(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveEnsemble("sweep-b", sampleEnsemble(1, 2)))
	require.NoError(t, s.SaveEnsemble("sweep-a", sampleEnsemble(10, 2)))
	require.NoError(t, s.SaveEnsemble("sweep-a", sampleEnsemble(20, 1)))

	labels, err := s.Labels()
	require.NoError(t, err)
	assert.Equal(t, []string{"sweep-a", "sweep-b"}, labels)

	records, err := s.ListRuns("sweep-a")
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveEnsemble("persisted", sampleEnsemble(5, 2)))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	records, err := s2.ListRuns("persisted")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
