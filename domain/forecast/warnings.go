package forecast

import (
	"fmt"

	"ecocast/domain/core"
	"ecocast/domain/scenario"
)

// WarningCode represents structured, recoverable diagnostic signals.
// None of these abort a run; they are collected on the run manifest so
// callers can audit how often the mechanistic source misbehaved.
type WarningCode string

const (
	// WarningBaselineFallback: the baseline window contained no forecast
	// points, so the whole-series mean was used instead.
	WarningBaselineFallback WarningCode = "BASELINE_FALLBACK"
	// WarningRankingViolation: the realized scenario ordering at the
	// reference horizon contradicted the declared severity ordering.
	// Emitted even when correction succeeds.
	WarningRankingViolation WarningCode = "RANKING_VIOLATION"
	// WarningContinuityDrift: numerical drift moved the first blended point
	// off the anchor; an explicit anchor point was inserted.
	WarningContinuityDrift WarningCode = "CONTINUITY_DRIFT"
	// WarningSparseForecast: a scenario's forecast covers under half of the
	// requested horizon, so its dynamics component is mostly zero.
	WarningSparseForecast WarningCode = "SPARSE_FORECAST"
)

// Warning attaches context to a warning code
type Warning struct {
	Code     WarningCode `json:"code"`
	Scenario scenario.ID `json:"scenario,omitempty"`
	Detail   string      `json:"detail,omitempty"`
}

func (w Warning) String() string {
	if w.Scenario != "" {
		return fmt.Sprintf("%s[%s]: %s", w.Code, w.Scenario, w.Detail)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Detail)
}

// RunManifest captures the audit trail of one reconciliation run
type RunManifest struct {
	RunID      core.RunID      `json:"run_id"`
	ConfigHash core.ConfigHash `json:"config_hash"`

	AnchorYear  core.Year `json:"anchor_year"`
	AnchorValue float64   `json:"anchor_value"`
	TrendSlope  float64   `json:"trend_slope"`

	ScenarioCount  int `json:"scenario_count"`
	HistoryPoints  int `json:"history_points"`
	ForecastPoints int `json:"forecast_points"`

	Corrected        bool `json:"corrected"` // True when the correction table was substituted
	CorrectionPasses int  `json:"correction_passes"`

	Warnings  []Warning      `json:"warnings,omitempty"`
	RuntimeMs int64          `json:"runtime_ms"`
	CreatedAt core.Timestamp `json:"created_at"`
}

// NewRunManifest creates a manifest stamped with run identity and config
func NewRunManifest(runID core.RunID, configHash core.ConfigHash) *RunManifest {
	return &RunManifest{
		RunID:      runID,
		ConfigHash: configHash,
		Warnings:   []Warning{},
		CreatedAt:  core.Now(),
	}
}

// AddWarning appends a structured warning
func (m *RunManifest) AddWarning(code WarningCode, sc scenario.ID, detail string) {
	m.Warnings = append(m.Warnings, Warning{Code: code, Scenario: sc, Detail: detail})
}

// HasWarning reports whether any warning with the code was recorded
func (m *RunManifest) HasWarning(code WarningCode) bool {
	for _, w := range m.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// WarningCounts tallies warnings by code for audit summaries
func (m *RunManifest) WarningCounts() map[WarningCode]int {
	counts := make(map[WarningCode]int)
	for _, w := range m.Warnings {
		counts[w.Code]++
	}
	return counts
}
