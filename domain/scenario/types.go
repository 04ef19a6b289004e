package scenario

import (
	"fmt"
	"sort"

	"ecocast/domain/core"
)

// ID identifies a forcing scenario of the mechanistic model
type ID string

const (
	LowForcing      ID = "low"
	ModerateForcing ID = "moderate"
	HighForcing     ID = "high"
)

// Profile carries the tunable coefficients for one scenario. These encode
// domain assumptions about how much the historical trend and the mechanistic
// dynamics should be scaled; they are configuration, not estimates.
type Profile struct {
	ID              ID      `json:"id"`
	SeverityRank    int     `json:"severity_rank"`    // Total order: higher rank = more stress expected
	TrendMultiplier float64 `json:"trend_multiplier"` // Scales the historical slope
	DynamicsWeight  float64 `json:"dynamics_weight"`  // Scales the mechanistic deviation (0-1)
}

// GrowthModel selects how the uncertainty band widens with horizon
type GrowthModel string

const (
	// GrowthLinear keeps band width interpretable as "stdev + rate per year".
	GrowthLinear GrowthModel = "linear"
	// GrowthSqrt grows with sqrt(elapsed), materially narrower at long
	// horizons. Supported but not the default.
	GrowthSqrt GrowthModel = "sqrt"
)

// Config is the single validated configuration for a reconciliation run.
// It replaces the per-script constants the field team used to hand-tune:
// one multiplier table, validated against the severity-ranking invariant
// at construction time.
type Config struct {
	Profiles []Profile `json:"profiles"`

	// CorrectionTable substitutes trend multipliers when the realized
	// scenario ranking at the reference horizon contradicts the declared
	// severity ordering. Must itself be consistent with that ordering.
	CorrectionTable map[ID]float64 `json:"correction_table"`

	// ReferenceHorizon is the year at which scenario ordering is checked.
	// Zero means "midpoint of the forecast horizon", resolved at run time.
	ReferenceHorizon core.Year `json:"reference_horizon,omitempty"`

	// BaselineWindowYears is the span of the early-forecast window used to
	// compute each scenario's own baseline (typically 1-3 years).
	BaselineWindowYears float64 `json:"baseline_window_years"`

	// UncertaintyGrowthRate widens the band per elapsed year
	UncertaintyGrowthRate float64 `json:"uncertainty_growth_rate"`

	// Growth selects linear (default) or sqrt band growth
	Growth GrowthModel `json:"growth_model"`

	// SmoothWindow is the centered moving-average width in time steps
	SmoothWindow int `json:"smooth_window"`

	// AdaptiveSmoothing narrows the window near the anchor so the
	// historical-to-forecast transition is not blurred into a ramp
	AdaptiveSmoothing bool `json:"adaptive_smoothing"`

	// MaxCorrectionRetries bounds the corrector's re-blend loop
	MaxCorrectionRetries int `json:"max_correction_retries"`
}

// NewConfig validates and returns a run configuration
func NewConfig(cfg Config) (*Config, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	out := cfg
	out.Profiles = make([]Profile, len(cfg.Profiles))
	copy(out.Profiles, cfg.Profiles)
	sort.Slice(out.Profiles, func(i, j int) bool {
		return out.Profiles[i].SeverityRank < out.Profiles[j].SeverityRank
	})
	return &out, nil
}

// MustNewConfig validates a config and panics on invalid input.
// Use only in tests and development.
func MustNewConfig(cfg Config) *Config {
	out, err := NewConfig(cfg)
	if err != nil {
		panic(err)
	}
	return out
}

// DefaultConfig returns the coefficients the study settled on after the
// hand-tuning iterations: a low dynamics weight so the mechanistic model
// supplies curvature rather than level, and the validated 0.70/1.00/1.40
// correction table.
func DefaultConfig() *Config {
	return MustNewConfig(Config{
		Profiles: []Profile{
			{ID: LowForcing, SeverityRank: 1, TrendMultiplier: 0.85, DynamicsWeight: 0.5},
			{ID: ModerateForcing, SeverityRank: 2, TrendMultiplier: 1.0, DynamicsWeight: 0.5},
			{ID: HighForcing, SeverityRank: 3, TrendMultiplier: 1.2, DynamicsWeight: 0.5},
		},
		CorrectionTable: map[ID]float64{
			LowForcing:      0.70,
			ModerateForcing: 1.00,
			HighForcing:     1.40,
		},
		BaselineWindowYears:   2.0,
		UncertaintyGrowthRate: 0.4,
		Growth:                GrowthLinear,
		SmoothWindow:          5,
		AdaptiveSmoothing:     true,
		MaxCorrectionRetries:  2,
	})
}

func validateConfig(cfg Config) error {
	if len(cfg.Profiles) == 0 {
		return fmt.Errorf("%w: no scenario profiles", core.ErrInvalidConfig)
	}

	seenRanks := make(map[int]ID, len(cfg.Profiles))
	seenIDs := make(map[ID]bool, len(cfg.Profiles))
	for _, p := range cfg.Profiles {
		if p.ID == "" {
			return fmt.Errorf("%w: profile with empty scenario id", core.ErrInvalidConfig)
		}
		if seenIDs[p.ID] {
			return fmt.Errorf("%w: duplicate scenario %q", core.ErrInvalidConfig, p.ID)
		}
		seenIDs[p.ID] = true
		if other, dup := seenRanks[p.SeverityRank]; dup {
			return fmt.Errorf("%w: scenarios %q and %q share rank %d",
				core.ErrDuplicateSeverity, other, p.ID, p.SeverityRank)
		}
		seenRanks[p.SeverityRank] = p.ID
		if p.DynamicsWeight < 0 || p.DynamicsWeight > 1 {
			return fmt.Errorf("%w: dynamics weight for %q must be in [0, 1], got %v",
				core.ErrInvalidConfig, p.ID, p.DynamicsWeight)
		}
		if p.TrendMultiplier <= 0 {
			return fmt.Errorf("%w: trend multiplier for %q must be > 0, got %v",
				core.ErrInvalidConfig, p.ID, p.TrendMultiplier)
		}
	}

	// The correction table exists to restore the severity ordering, so it
	// must be non-decreasing in severity itself or correction can never
	// converge.
	if len(cfg.CorrectionTable) > 0 {
		ordered := make([]Profile, len(cfg.Profiles))
		copy(ordered, cfg.Profiles)
		sort.Slice(ordered, func(i, j int) bool {
			return ordered[i].SeverityRank < ordered[j].SeverityRank
		})
		prev := 0.0
		for i, p := range ordered {
			mult, ok := cfg.CorrectionTable[p.ID]
			if !ok {
				return fmt.Errorf("%w: correction table missing scenario %q",
					core.ErrInvalidConfig, p.ID)
			}
			if mult <= 0 {
				return fmt.Errorf("%w: correction multiplier for %q must be > 0, got %v",
					core.ErrInvalidConfig, p.ID, mult)
			}
			if i > 0 && mult < prev {
				return fmt.Errorf("%w: %q (rank %d) has multiplier %v below lower-severity %v",
					core.ErrUnrankedCorrection, p.ID, p.SeverityRank, mult, prev)
			}
			prev = mult
		}
	}

	if cfg.BaselineWindowYears < 1 {
		return fmt.Errorf("%w: baseline window must span at least one year, got %v",
			core.ErrInvalidConfig, cfg.BaselineWindowYears)
	}
	if cfg.UncertaintyGrowthRate < 0 {
		return fmt.Errorf("%w: uncertainty growth rate must be >= 0, got %v",
			core.ErrInvalidConfig, cfg.UncertaintyGrowthRate)
	}
	switch cfg.Growth {
	case GrowthLinear, GrowthSqrt, "":
	default:
		return fmt.Errorf("%w: unknown growth model %q", core.ErrInvalidConfig, cfg.Growth)
	}
	if cfg.SmoothWindow < 1 {
		return fmt.Errorf("%w: smooth window must be >= 1, got %d",
			core.ErrInvalidConfig, cfg.SmoothWindow)
	}
	if cfg.MaxCorrectionRetries < 0 {
		return fmt.Errorf("%w: max correction retries must be >= 0, got %d",
			core.ErrInvalidConfig, cfg.MaxCorrectionRetries)
	}
	return nil
}

// Ranking returns scenario IDs ordered from least to most severe
func (c *Config) Ranking() []ID {
	out := make([]ID, len(c.Profiles))
	for i, p := range c.Profiles {
		out[i] = p.ID
	}
	return out
}

// Profile returns the profile for a scenario
func (c *Config) Profile(id ID) (Profile, error) {
	for _, p := range c.Profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q", core.ErrScenarioNotFound, id)
}

// WithCorrectedMultipliers returns a copy of the config whose profiles take
// their trend multipliers from the correction table. Dynamics weights are
// untouched; only the trend component is re-scaled.
func (c *Config) WithCorrectedMultipliers() *Config {
	out := *c
	out.Profiles = make([]Profile, len(c.Profiles))
	copy(out.Profiles, c.Profiles)
	for i, p := range out.Profiles {
		if mult, ok := c.CorrectionTable[p.ID]; ok {
			out.Profiles[i].TrendMultiplier = mult
		}
	}
	return &out
}

// GrowthOrLinear resolves the zero value to the linear default
func (c *Config) GrowthOrLinear() GrowthModel {
	if c.Growth == "" {
		return GrowthLinear
	}
	return c.Growth
}

// Hash fingerprints the coefficients that shape a run's output
func (c *Config) Hash() core.ConfigHash {
	fields := map[string]interface{}{
		"baseline_window": c.BaselineWindowYears,
		"growth_rate":     c.UncertaintyGrowthRate,
		"growth_model":    c.GrowthOrLinear(),
		"smooth_window":   c.SmoothWindow,
		"adaptive":        c.AdaptiveSmoothing,
		"retries":         c.MaxCorrectionRetries,
	}
	for _, p := range c.Profiles {
		fields["profile_"+string(p.ID)] = fmt.Sprintf("%d|%v|%v", p.SeverityRank, p.TrendMultiplier, p.DynamicsWeight)
	}
	for id, mult := range c.CorrectionTable {
		fields["correction_"+string(id)] = mult
	}
	return core.ComputeConfigHash(fields)
}
