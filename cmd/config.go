package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lobsim/lobsim/sim"
)

// DefaultConfig is the symmetric baseline parameter set: power-law limit
// insertions (emptier queues attract more), per-unit cancellations, and
// market orders hitting the touch at a constant rate.
func DefaultConfig() *sim.Config {
	return &sim.Config{
		Levels:      levels,
		TickSize:    tickSize,
		InitialTick: initialTick,
		Horizon:     horizon,
		MaxEvents:   maxEvents,
		Seed:        seed,
		Book: sim.BookConfig{
			DepthMean: depthMean,
		},
		Flows: sim.FlowConfig{
			LimitInsert: sim.KindConfig{
				Default: &sim.IntensitySpec{Form: "powerlaw", Base: limitBase, Alpha: limitAlpha},
			},
			Cancel: sim.KindConfig{
				Default: &sim.IntensitySpec{Form: "proportional", Mu: cancelMu},
			},
			MarketExecute: sim.KindConfig{
				Default: &sim.IntensitySpec{Form: "constant", C: marketRate},
			},
		},
		Replenish: sim.ReplenishConfig{
			Policy: replenishMode,
			Depth:  replenishDepth,
			Mean:   replenishMean,
		},
		SnapshotDepths: snapshotDepths,
	}
}

// LoadConfig reads a full run configuration from a YAML file.
func LoadConfig(path string) (*sim.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg sim.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// buildConfig resolves the run configuration: the YAML file when given,
// with explicitly-set flags overriding its scalar fields; pure flags
// otherwise.
func buildConfig(c *cobra.Command) (*sim.Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	overrides := map[string]func(){
		"seed":            func() { cfg.Seed = seed },
		"levels":          func() { cfg.Levels = levels },
		"tick-size":       func() { cfg.TickSize = tickSize },
		"initial-tick":    func() { cfg.InitialTick = initialTick },
		"horizon":         func() { cfg.Horizon = horizon },
		"max-events":      func() { cfg.MaxEvents = maxEvents },
		"snapshot-depths": func() { cfg.SnapshotDepths = snapshotDepths },
	}
	for name, apply := range overrides {
		if c.Flags().Changed(name) {
			apply()
		}
	}
	return cfg, nil
}
