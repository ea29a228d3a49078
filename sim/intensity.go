package sim

import (
	"fmt"
	"math"
)

// Intensity maps the current size of the acted-on queue to an instantaneous
// event rate. Implementations must return non-negative, finite values for
// every queue size >= 0. The functional form is a configuration input; the
// engine only ever sees this interface.
type Intensity interface {
	Rate(queueSize int) float64
}

// ConstantIntensity fires at a fixed rate regardless of queue size.
type ConstantIntensity struct {
	C float64
}

func (f ConstantIntensity) Rate(int) float64 { return f.C }

// LinearIntensity is slope*q + intercept, clamped at zero.
type LinearIntensity struct {
	Slope     float64
	Intercept float64
}

func (f LinearIntensity) Rate(queueSize int) float64 {
	return math.Max(0, f.Slope*float64(queueSize)+f.Intercept)
}

// ExponentialIntensity decays as scale*exp(-rate*q). With a positive rate
// it models the reactive limit-order behavior: emptier queues attract more
// insertions.
type ExponentialIntensity struct {
	Scale float64
	Decay float64
}

func (f ExponentialIntensity) Rate(queueSize int) float64 {
	return f.Scale * math.Exp(-f.Decay*float64(queueSize))
}

// PowerLawIntensity is base*(q+1)^(-alpha), defined at q=0.
type PowerLawIntensity struct {
	Base  float64
	Alpha float64
}

func (f PowerLawIntensity) Rate(queueSize int) float64 {
	return f.Base * math.Pow(float64(queueSize)+1, -f.Alpha)
}

// ProportionalIntensity is mu*q: each resting unit cancels independently at
// rate mu, the usual cancellation model. Zero at an empty queue by
// construction.
type ProportionalIntensity struct {
	Mu float64
}

func (f ProportionalIntensity) Rate(queueSize int) float64 {
	return f.Mu * float64(queueSize)
}

// TableIntensity is an empirical step function of queue size, the form the
// calibrator produces. Sizes beyond the table reuse the last entry.
type TableIntensity struct {
	Rates []float64
}

func (f TableIntensity) Rate(queueSize int) float64 {
	if len(f.Rates) == 0 {
		return 0
	}
	if queueSize >= len(f.Rates) {
		return f.Rates[len(f.Rates)-1]
	}
	return f.Rates[queueSize]
}

// IntensitySpec is the serializable description of one intensity function.
// Form selects the family; the remaining fields are family parameters.
type IntensitySpec struct {
	Form string `yaml:"form"`

	C         float64   `yaml:"c,omitempty"`         // constant
	Slope     float64   `yaml:"slope,omitempty"`     // linear
	Intercept float64   `yaml:"intercept,omitempty"` // linear
	Scale     float64   `yaml:"scale,omitempty"`     // exponential
	Decay     float64   `yaml:"decay,omitempty"`     // exponential
	Base      float64   `yaml:"base,omitempty"`      // powerlaw
	Alpha     float64   `yaml:"alpha,omitempty"`     // powerlaw
	Mu        float64   `yaml:"mu,omitempty"`        // proportional
	Table     []float64 `yaml:"table,omitempty"`     // table
}

// NewIntensity builds the intensity function a spec describes.
func NewIntensity(spec IntensitySpec) (Intensity, error) {
	switch spec.Form {
	case "constant":
		if spec.C < 0 {
			return nil, fmt.Errorf("constant intensity: c must be non-negative, got %g", spec.C)
		}
		return ConstantIntensity{C: spec.C}, nil
	case "linear":
		return LinearIntensity{Slope: spec.Slope, Intercept: spec.Intercept}, nil
	case "exponential":
		if spec.Scale < 0 {
			return nil, fmt.Errorf("exponential intensity: scale must be non-negative, got %g", spec.Scale)
		}
		return ExponentialIntensity{Scale: spec.Scale, Decay: spec.Decay}, nil
	case "powerlaw":
		if spec.Base < 0 {
			return nil, fmt.Errorf("powerlaw intensity: base must be non-negative, got %g", spec.Base)
		}
		return PowerLawIntensity{Base: spec.Base, Alpha: spec.Alpha}, nil
	case "proportional":
		if spec.Mu < 0 {
			return nil, fmt.Errorf("proportional intensity: mu must be non-negative, got %g", spec.Mu)
		}
		return ProportionalIntensity{Mu: spec.Mu}, nil
	case "table":
		if len(spec.Table) == 0 {
			return nil, fmt.Errorf("table intensity: table must not be empty")
		}
		for i, r := range spec.Table {
			if r < 0 || math.IsNaN(r) || math.IsInf(r, 0) {
				return nil, fmt.Errorf("table intensity: entry %d is %g, want finite non-negative", i, r)
			}
		}
		rates := make([]float64, len(spec.Table))
		copy(rates, spec.Table)
		return TableIntensity{Rates: rates}, nil
	}
	return nil, fmt.Errorf("unknown intensity form %q", spec.Form)
}

// IntensityModel holds one intensity function per (kind, side, level) and
// imposes the rate contract the transition engine relies on:
//   - Cancel and MarketExecute rates are zero against an empty queue.
//   - MarketExecute only targets level 0.
//
// The model is immutable after construction and safe to share read-only
// across concurrent runs.
type IntensityModel struct {
	levels int
	fns    [numEventKinds][numSides][]Intensity
}

// NewIntensityModel builds a model for L levels from per-(kind,side,level)
// specs. specs[kind][side] must have exactly L entries.
func NewIntensityModel(levels int, specs [numEventKinds][numSides][]IntensitySpec) (*IntensityModel, error) {
	m := &IntensityModel{levels: levels}
	for kind := EventKind(0); kind < numEventKinds; kind++ {
		for side := Side(0); side < numSides; side++ {
			got := specs[kind][side]
			if len(got) != levels {
				return nil, fmt.Errorf("%s/%s: want %d level specs, got %d", kind, side, levels, len(got))
			}
			fns := make([]Intensity, levels)
			for lvl, spec := range got {
				fn, err := NewIntensity(spec)
				if err != nil {
					return nil, fmt.Errorf("%s/%s level %d: %w", kind, side, lvl, err)
				}
				fns[lvl] = fn
			}
			m.fns[kind][side] = fns
		}
	}
	return m, nil
}

// Levels returns the number of levels the model covers.
func (m *IntensityModel) Levels() int { return m.levels }

// Rate returns the instantaneous rate of (kind, side, level) given the
// current size of that queue. Never negative.
func (m *IntensityModel) Rate(kind EventKind, side Side, level, queueSize int) float64 {
	if level < 0 || level >= m.levels {
		return 0
	}
	switch kind {
	case Cancel:
		if queueSize == 0 {
			return 0
		}
	case MarketExecute:
		if level != 0 || queueSize == 0 {
			return 0
		}
	}
	r := m.fns[kind][side][level].Rate(queueSize)
	if r < 0 || math.IsNaN(r) {
		return 0
	}
	return r
}
