package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	spec := func(rate float64) *IntensitySpec {
		return &IntensitySpec{Form: "constant", C: rate}
	}
	return Config{
		Levels:      3,
		TickSize:    0.01,
		InitialTick: 10000,
		Horizon:     100,
		Seed:        42,
		Book:        BookConfig{DepthMean: 4},
		Flows: FlowConfig{
			LimitInsert:   KindConfig{Default: spec(1.0)},
			Cancel:        KindConfig{Default: spec(0.5)},
			MarketExecute: KindConfig{Default: spec(0.3)},
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"zero levels", func(c *Config) { c.Levels = 0 }, "levels"},
		{"negative levels", func(c *Config) { c.Levels = -2 }, "levels"},
		{"zero tick size", func(c *Config) { c.TickSize = 0 }, "tick_size"},
		{"no stop condition", func(c *Config) { c.Horizon = 0 }, "horizon"},
		{"event limit only is fine", func(c *Config) {
			c.Horizon = 0
			c.MaxEvents = 100
		}, ""},
		{"negative max events", func(c *Config) { c.MaxEvents = -1 }, "max_events"},
		{"depth vector length mismatch", func(c *Config) {
			c.Book.BidDepths = []int{1, 2}
			c.Book.AskDepths = []int{1, 2, 3}
		}, "book"},
		{"explicit depths skip depth mean", func(c *Config) {
			c.Book = BookConfig{BidDepths: []int{1, 2, 3}, AskDepths: []int{4, 5, 6}}
		}, ""},
		{"missing depth mean", func(c *Config) { c.Book.DepthMean = 0 }, "book.depth_mean"},
		{"flow without default or levels", func(c *Config) {
			c.Flows.Cancel = KindConfig{}
		}, "flows.cancel"},
		{"per-level spec count mismatch", func(c *Config) {
			c.Flows.LimitInsert = KindConfig{
				Bid: []IntensitySpec{{Form: "constant", C: 1}},
				Ask: []IntensitySpec{{Form: "constant", C: 1}},
			}
		}, "flows.limit_insert"},
		{"unknown replenish policy", func(c *Config) {
			c.Replenish.Policy = "uniform"
		}, "replenish.policy"},
		{"geometric replenish needs mean", func(c *Config) {
			c.Replenish = ReplenishConfig{Policy: "geometric"}
		}, "replenish.mean"},
		{"negative constant replenish depth", func(c *Config) {
			c.Replenish = ReplenishConfig{Policy: "constant", Depth: -1}
		}, "replenish.depth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))
			var ce *ConfigurationError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.wantErr, ce.Field)
		})
	}
}

func TestKindConfig_LevelSpecs(t *testing.T) {
	def := IntensitySpec{Form: "constant", C: 2}
	perLevel := []IntensitySpec{
		{Form: "constant", C: 1},
		{Form: "constant", C: 3},
	}

	kc := KindConfig{Default: &def, Bid: perLevel}
	assert.Equal(t, perLevel, kc.levelSpecs(Bid, 2))
	assert.Equal(t, []IntensitySpec{def, def}, kc.levelSpecs(Ask, 2))
}

func TestConfig_BuildIntensityModel(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	m, err := cfg.buildIntensityModel()
	require.NoError(t, err)
	assert.Equal(t, 3, m.Levels())
	assert.Equal(t, 1.0, m.Rate(LimitInsert, Bid, 2, 0))
	assert.Equal(t, 0.5, m.Rate(Cancel, Ask, 1, 4))
	assert.Equal(t, 0.3, m.Rate(MarketExecute, Bid, 0, 4))
	assert.Equal(t, 0.0, m.Rate(MarketExecute, Bid, 1, 4), "market flow only targets the best level")
}
