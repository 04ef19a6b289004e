package scenario

import (
	"errors"
	"testing"

	"ecocast/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfiles() []Profile {
	return []Profile{
		{ID: HighForcing, SeverityRank: 3, TrendMultiplier: 1.2, DynamicsWeight: 0.5},
		{ID: LowForcing, SeverityRank: 1, TrendMultiplier: 0.85, DynamicsWeight: 0.5},
		{ID: ModerateForcing, SeverityRank: 2, TrendMultiplier: 1.0, DynamicsWeight: 0.5},
	}
}

func TestNewConfigOrdersProfilesBySeverity(t *testing.T) {
	cfg, err := NewConfig(Config{
		Profiles:            validProfiles(),
		BaselineWindowYears: 2,
		SmoothWindow:        3,
	})
	require.NoError(t, err)

	assert.Equal(t, []ID{LowForcing, ModerateForcing, HighForcing}, cfg.Ranking())
}

func TestNewConfigRejectsDuplicateRanks(t *testing.T) {
	profiles := validProfiles()
	profiles[1].SeverityRank = 3

	_, err := NewConfig(Config{Profiles: profiles, BaselineWindowYears: 2, SmoothWindow: 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDuplicateSeverity))
}

func TestNewConfigRejectsUnrankedCorrectionTable(t *testing.T) {
	_, err := NewConfig(Config{
		Profiles: validProfiles(),
		CorrectionTable: map[ID]float64{
			LowForcing:      1.40, // higher than the high-forcing multiplier
			ModerateForcing: 1.00,
			HighForcing:     0.70,
		},
		BaselineWindowYears: 2,
		SmoothWindow:        3,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnrankedCorrection))
}

func TestNewConfigRejectsIncompleteCorrectionTable(t *testing.T) {
	_, err := NewConfig(Config{
		Profiles:            validProfiles(),
		CorrectionTable:     map[ID]float64{LowForcing: 0.7},
		BaselineWindowYears: 2,
		SmoothWindow:        3,
	})
	assert.Error(t, err)
}

func TestNewConfigRejectsOutOfRangeWeight(t *testing.T) {
	profiles := validProfiles()
	profiles[0].DynamicsWeight = 1.5

	_, err := NewConfig(Config{Profiles: profiles, BaselineWindowYears: 2, SmoothWindow: 3})
	assert.Error(t, err)
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, []ID{LowForcing, ModerateForcing, HighForcing}, cfg.Ranking())
	assert.Equal(t, GrowthLinear, cfg.GrowthOrLinear())
	assert.InDelta(t, 0.5, cfg.Profiles[0].DynamicsWeight, 1e-12)
}

func TestWithCorrectedMultipliers(t *testing.T) {
	cfg := DefaultConfig()
	corrected := cfg.WithCorrectedMultipliers()

	high, err := corrected.Profile(HighForcing)
	require.NoError(t, err)
	assert.Equal(t, 1.40, high.TrendMultiplier)

	// Original config untouched
	origHigh, _ := cfg.Profile(HighForcing)
	assert.Equal(t, 1.2, origHigh.TrendMultiplier)

	// Dynamics weights are never substituted
	assert.Equal(t, origHigh.DynamicsWeight, high.DynamicsWeight)
}

func TestConfigHashStableAcrossCalls(t *testing.T) {
	a := DefaultConfig().Hash()
	b := DefaultConfig().Hash()
	assert.Equal(t, a, b)

	changed := DefaultConfig()
	changed.SmoothWindow = 7
	assert.NotEqual(t, a, changed.Hash())
}

func TestProfileLookupUnknownScenario(t *testing.T) {
	cfg := DefaultConfig()
	_, err := cfg.Profile("extreme")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrScenarioNotFound))
}
