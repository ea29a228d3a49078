package sim

// KindConfig describes the intensity functions of one event kind. Either
// Default applies to every level, or Bid/Ask give explicit per-level specs
// (length L). Per-side vectors take precedence over Default.
type KindConfig struct {
	Default *IntensitySpec  `yaml:"default,omitempty"`
	Bid     []IntensitySpec `yaml:"bid,omitempty"`
	Ask     []IntensitySpec `yaml:"ask,omitempty"`
}

func (k *KindConfig) levelSpecs(side Side, levels int) []IntensitySpec {
	explicit := k.Bid
	if side == Ask {
		explicit = k.Ask
	}
	if len(explicit) > 0 {
		return explicit
	}
	specs := make([]IntensitySpec, levels)
	for i := range specs {
		specs[i] = *k.Default
	}
	return specs
}

func (k *KindConfig) validate(name string, levels int) *ConfigurationError {
	for side, explicit := range map[string][]IntensitySpec{"bid": k.Bid, "ask": k.Ask} {
		if len(explicit) == 0 {
			if k.Default == nil {
				return &ConfigurationError{
					Field:  name + "." + side,
					Reason: "no per-level specs and no default",
				}
			}
			continue
		}
		if len(explicit) != levels {
			return &ConfigurationError{
				Field:  name + "." + side,
				Reason: "per-level specs must match the configured level count",
			}
		}
	}
	return nil
}

// FlowConfig groups the intensity configuration of all event kinds.
type FlowConfig struct {
	LimitInsert   KindConfig `yaml:"limit_insert"`
	Cancel        KindConfig `yaml:"cancel"`
	MarketExecute KindConfig `yaml:"market_execute"`
}

// BookConfig describes the initial book. Explicit per-level depths win;
// otherwise depths are drawn i.i.d. geometric with the given mean from the
// depth RNG subsystem (best levels are redrawn until non-empty).
type BookConfig struct {
	BidDepths []int   `yaml:"bid_depths,omitempty"`
	AskDepths []int   `yaml:"ask_depths,omitempty"`
	DepthMean float64 `yaml:"depth_mean,omitempty"`
}

// ReplenishConfig selects the far-level depth policy applied after a
// reference shift.
type ReplenishConfig struct {
	Policy string  `yaml:"policy"` // "zero" (default), "constant", "geometric"
	Depth  int     `yaml:"depth,omitempty"`
	Mean   float64 `yaml:"mean,omitempty"`
}

// Config is the full parameter set of one simulation run. It is read-only
// for the engine and safe to share across concurrent runs.
type Config struct {
	// Levels is L, the number of tracked price levels per side.
	Levels int `yaml:"levels"`
	// TickSize is the price increment represented by one tick index.
	TickSize float64 `yaml:"tick_size"`
	// InitialTick anchors the reference price at run start.
	InitialTick int64 `yaml:"initial_tick"`
	// Horizon is the simulation time limit. An event sampled past the
	// horizon is discarded, not applied.
	Horizon float64 `yaml:"horizon"`
	// MaxEvents optionally bounds the run by event count (0 = unbounded).
	MaxEvents int64 `yaml:"max_events,omitempty"`
	// Seed is the master seed of the run's partitioned RNG.
	Seed int64 `yaml:"seed"`

	Book      BookConfig      `yaml:"book"`
	Flows     FlowConfig      `yaml:"flows"`
	Replenish ReplenishConfig `yaml:"replenish"`

	// SnapshotDepths controls whether every trajectory step stores full
	// per-side depth copies (needed for calibration logs) or only the
	// compact top-of-book summary.
	SnapshotDepths bool `yaml:"snapshot_depths,omitempty"`
}

// Validate checks the parameter set and fails fast with a
// ConfigurationError before any event is generated.
func (c *Config) Validate() error {
	if c.Levels <= 0 {
		return &ConfigurationError{Field: "levels", Reason: "must be positive"}
	}
	if c.TickSize <= 0 {
		return &ConfigurationError{Field: "tick_size", Reason: "must be positive"}
	}
	if c.Horizon <= 0 && c.MaxEvents <= 0 {
		return &ConfigurationError{Field: "horizon", Reason: "need a positive horizon or max_events"}
	}
	if c.MaxEvents < 0 {
		return &ConfigurationError{Field: "max_events", Reason: "must not be negative"}
	}

	if len(c.Book.BidDepths) > 0 || len(c.Book.AskDepths) > 0 {
		if len(c.Book.BidDepths) != c.Levels || len(c.Book.AskDepths) != c.Levels {
			return &ConfigurationError{
				Field:  "book",
				Reason: "explicit depth vectors must have exactly `levels` entries per side",
			}
		}
	} else if c.Book.DepthMean <= 0 {
		return &ConfigurationError{
			Field:  "book.depth_mean",
			Reason: "must be positive when no explicit depths are given",
		}
	}

	for _, kc := range []struct {
		name string
		cfg  *KindConfig
	}{
		{"flows.limit_insert", &c.Flows.LimitInsert},
		{"flows.cancel", &c.Flows.Cancel},
		{"flows.market_execute", &c.Flows.MarketExecute},
	} {
		if err := kc.cfg.validate(kc.name, c.Levels); err != nil {
			return err
		}
	}

	switch c.Replenish.Policy {
	case "", "zero":
	case "constant":
		if c.Replenish.Depth < 0 {
			return &ConfigurationError{Field: "replenish.depth", Reason: "must not be negative"}
		}
	case "geometric":
		if c.Replenish.Mean <= 0 {
			return &ConfigurationError{Field: "replenish.mean", Reason: "must be positive"}
		}
	default:
		return &ConfigurationError{Field: "replenish.policy", Reason: "unknown policy " + c.Replenish.Policy}
	}
	return nil
}

// buildIntensityModel materializes the per-(kind,side,level) rate table.
// Validate must have passed.
func (c *Config) buildIntensityModel() (*IntensityModel, error) {
	var specs [numEventKinds][numSides][]IntensitySpec
	for kind, kc := range map[EventKind]*KindConfig{
		LimitInsert:   &c.Flows.LimitInsert,
		Cancel:        &c.Flows.Cancel,
		MarketExecute: &c.Flows.MarketExecute,
	} {
		for side := Side(0); side < numSides; side++ {
			specs[kind][side] = kc.levelSpecs(side, c.Levels)
		}
	}
	return NewIntensityModel(c.Levels, specs)
}
