package reconcile

import (
	"fmt"

	"ecocast/domain/core"
	"ecocast/domain/forecast"
	"ecocast/domain/scenario"
)

// ============================================================================
// PLAUSIBILITY CORRECTOR
// ============================================================================
// The mechanistic model's raw scenario ranking is not always biologically
// plausible: its high-emissions run sometimes projects less stress than its
// low-emissions run. The corrector checks the realized ordering at a fixed
// reference horizon against the declared severity ordering and, on
// violation, substitutes the validated multiplier table and re-blends.
// Deterministic: no search, just the configured table and a bounded
// re-check loop.
// ============================================================================

// rankingEpsilon tolerates floating-point ties between adjacent scenarios
const rankingEpsilon = 1e-9

// RankingViolation describes one inverted scenario pair at the horizon
type RankingViolation struct {
	Less      scenario.ID `json:"less"` // Declared less severe
	More      scenario.ID `json:"more"` // Declared more severe
	LessValue float64     `json:"less_value"`
	MoreValue float64     `json:"more_value"`
	Horizon   core.Year   `json:"horizon"`
}

func (v RankingViolation) String() string {
	return fmt.Sprintf("%s=%.3f exceeds %s=%.3f at %v",
		v.Less, v.LessValue, v.More, v.MoreValue, v.Horizon)
}

// CheckRanking compares adjacent scenarios in severity order at the
// reference horizon. Adjacent pairs suffice for a total order. Scenarios
// whose trajectory does not cover the horizon are skipped.
func CheckRanking(table *forecast.Table, ranking []scenario.ID, horizon core.Year) []RankingViolation {
	var violations []RankingViolation
	for i := 0; i+1 < len(ranking); i++ {
		less, more := ranking[i], ranking[i+1]
		trLess, okLess := table.Trajectories[less]
		trMore, okMore := table.Trajectories[more]
		if !okLess || !okMore {
			continue
		}
		vLess, coveredLess := trLess.ValueAt(horizon)
		vMore, coveredMore := trMore.ValueAt(horizon)
		if !coveredLess || !coveredMore {
			continue
		}
		if vLess > vMore+rankingEpsilon {
			violations = append(violations, RankingViolation{
				Less: less, More: more,
				LessValue: vLess, MoreValue: vMore,
				Horizon: horizon,
			})
		}
	}
	return violations
}

// BlendFunc re-runs the blender under a candidate configuration
type BlendFunc func(cfg *scenario.Config) (*forecast.Table, error)

// CorrectionOutcome reports what the corrector did
type CorrectionOutcome struct {
	Table  *forecast.Table
	Config *scenario.Config // Configuration the final table was blended under

	Violated   bool               // Initial check failed
	Violations []RankingViolation // Initial violations, for the audit trail
	Corrected  bool               // Correction table was substituted
	Passes     int                // Blend passes executed (>= 1)
	Resolved   bool               // Final check passed
}

// Corrector runs the check-substitute-reblend loop
type Corrector struct {
	Config     *scenario.Config
	MaxRetries int
}

// Run blends under the initial configuration, checks ranking at the
// horizon, and on violation substitutes the correction table and re-blends
// up to MaxRetries times. A violation is recoverable; callers surface it as
// a diagnostic even when correction succeeds.
func (c *Corrector) Run(blend BlendFunc, horizon core.Year) (CorrectionOutcome, error) {
	table, err := blend(c.Config)
	if err != nil {
		return CorrectionOutcome{}, err
	}

	ranking := c.Config.Ranking()
	outcome := CorrectionOutcome{
		Table:  table,
		Config: c.Config,
		Passes: 1,
	}

	violations := CheckRanking(table, ranking, horizon)
	if len(violations) == 0 {
		outcome.Resolved = true
		return outcome, nil
	}

	outcome.Violated = true
	outcome.Violations = violations

	corrected := c.Config.WithCorrectedMultipliers()
	for retry := 0; retry < c.MaxRetries; retry++ {
		table, err = blend(corrected)
		if err != nil {
			return CorrectionOutcome{}, err
		}
		outcome.Table = table
		outcome.Config = corrected
		outcome.Corrected = true
		outcome.Passes++

		if len(CheckRanking(table, ranking, horizon)) == 0 {
			outcome.Resolved = true
			return outcome, nil
		}
		// The substitution is idempotent, so further passes only matter if
		// the table itself changes between runs; the bound keeps the loop
		// finite either way.
	}
	return outcome, nil
}
