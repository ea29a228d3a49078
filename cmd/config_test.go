package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lobsim/lobsim/sim"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5, cfg.Levels)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "powerlaw", cfg.Flows.LimitInsert.Default.Form)
	assert.Equal(t, "proportional", cfg.Flows.Cancel.Default.Form)
	assert.Equal(t, "constant", cfg.Flows.MarketExecute.Default.Form)
	assert.Equal(t, "geometric", cfg.Replenish.Policy)
}

func TestDefaultConfig_Runs(t *testing.T) {
	cfg := DefaultConfig()
	_, err := sim.NewSimulator(cfg)
	assert.NoError(t, err)
}

func TestLoadConfig_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 7
	cfg.Levels = 2
	cfg.Book = sim.BookConfig{BidDepths: []int{3, 3}, AskDepths: []int{3, 3}}

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
	assert.NoError(t, got.Validate())
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("levels: [not-a-number"), 0644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_PartialFileKeepsZeroValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	body := `
levels: 4
tick_size: 0.5
horizon: 10
flows:
  limit_insert:
    default: {form: constant, c: 1.0}
  cancel:
    default: {form: proportional, mu: 0.1}
  market_execute:
    default: {form: constant, c: 0.2}
book:
  depth_mean: 3
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Levels)
	assert.Equal(t, 0.5, cfg.TickSize)
	assert.Equal(t, int64(0), cfg.Seed)
	assert.NoError(t, cfg.Validate())
}
