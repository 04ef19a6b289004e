package reconcile

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"ecocast/adapters/stats/dynamics"
	"ecocast/adapters/stats/trend"
	"ecocast/domain/core"
	"ecocast/domain/forecast"
	"ecocast/domain/scenario"
	"ecocast/domain/series"
	"ecocast/internal"

	"golang.org/x/sync/errgroup"
)

// ============================================================================
// RECONCILIATION PIPELINE
// ============================================================================
// history + raw mechanistic forecast
//     -> trend fit
//     -> per-scenario dynamics extraction   (concurrent, scenarios independent)
//     -> blend, anchored at the last observation
//     -> plausibility correction at the reference horizon
//     -> uncertainty band
//     -> smoothing + anchor re-pin
//     -> projection table + run manifest
// ============================================================================

// Input is an immutable snapshot of everything a run consumes
type Input struct {
	History *series.Series
	Raw     []forecast.RawPoint
}

// Result is the complete output of one reconciliation run
type Result struct {
	Table    *forecast.Table
	Manifest *forecast.RunManifest
	Fit      trend.Fit
}

// Pipeline executes reconciliation runs under one validated configuration
type Pipeline struct {
	cfg *scenario.Config
	log *internal.Logger

	// Strict turns an uncorrectable ranking into an error instead of a
	// manifest warning. Off by default: recoverable failures never abort.
	Strict bool
}

// NewPipeline creates a pipeline
func NewPipeline(cfg *scenario.Config, logger *internal.Logger) *Pipeline {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Pipeline{cfg: cfg, log: logger}
}

// Run executes one reconciliation. Only structurally invalid historical
// input is fatal; everything else degrades to manifest warnings.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	started := time.Now()

	fit, err := trend.Estimate(in.History)
	if err != nil {
		return nil, err
	}
	anchor := in.History.Anchor()

	lastYear := lastForecastYear(in.Raw, anchor.Year)
	grid := BuildGrid(anchor.Year, lastYear)
	if len(grid) < 2 {
		return nil, fmt.Errorf("%w: forecast horizon ends at %v, anchor is %v",
			core.ErrEmptyForecast, lastYear, anchor.Year)
	}

	manifest := forecast.NewRunManifest(core.RunID(core.NewID()), p.cfg.Hash())
	manifest.AnchorYear = anchor.Year
	manifest.AnchorValue = anchor.Value
	manifest.TrendSlope = fit.Slope
	manifest.HistoryPoints = in.History.Len()
	manifest.ForecastPoints = len(in.Raw)
	manifest.ScenarioCount = len(p.cfg.Profiles)

	// Dynamics extraction is done once; correction only re-scales the
	// blend, never the deviation signal.
	window := dynamics.Window{Start: anchor.Year, Span: p.cfg.BaselineWindowYears}
	extractions, err := p.extractAll(ctx, in.Raw, window, len(grid), manifest)
	if err != nil {
		return nil, err
	}

	blend := func(cfg *scenario.Config) (*forecast.Table, error) {
		return p.blendAll(ctx, cfg, anchor, fit, extractions, grid, manifest)
	}

	corrector := &Corrector{Config: p.cfg, MaxRetries: p.cfg.MaxCorrectionRetries}
	outcome, err := corrector.Run(blend, p.referenceHorizon(grid))
	if err != nil {
		return nil, err
	}
	if outcome.Violated {
		for _, v := range outcome.Violations {
			manifest.AddWarning(forecast.WarningRankingViolation, v.More, v.String())
		}
		p.log.Warn("scenario ranking violated at reference horizon (%d pair(s)); corrected=%v resolved=%v",
			len(outcome.Violations), outcome.Corrected, outcome.Resolved)
	}
	if !outcome.Resolved {
		if p.Strict {
			return nil, fmt.Errorf("%w after %d pass(es)", core.ErrRankingUncorrectable, outcome.Passes)
		}
		manifest.AddWarning(forecast.WarningRankingViolation, "",
			fmt.Sprintf("still violated after %d pass(es)", outcome.Passes))
	}
	manifest.Corrected = outcome.Corrected
	manifest.CorrectionPasses = outcome.Passes

	// Band, then smooth, then re-pin the anchor: smoothing with a partial
	// or non-adaptive window can pull the first point off the anchor.
	estimator := UncertaintyEstimator{
		GrowthRate: p.cfg.UncertaintyGrowthRate,
		Model:      p.cfg.GrowthOrLinear(),
	}
	smoother := Smoother{Window: p.cfg.SmoothWindow, Adaptive: p.cfg.AdaptiveSmoothing}

	final := forecast.NewTable()
	for _, id := range outcome.Table.Scenarios() {
		tr := outcome.Table.Trajectories[id]
		estimator.Apply(&tr, anchor)
		tr = smoother.Smooth(tr)
		p.repinAnchor(&tr, anchor, manifest)
		final.Put(tr)
	}

	manifest.RuntimeMs = time.Since(started).Milliseconds()
	p.log.Info("reconciliation run %s: %d scenarios, %d grid years, corrected=%v, %d warning(s), %dms",
		manifest.RunID, len(final.Trajectories), len(grid), manifest.Corrected,
		len(manifest.Warnings), manifest.RuntimeMs)

	return &Result{Table: final, Manifest: manifest, Fit: fit}, nil
}

// extractAll runs dynamics extraction for every configured scenario
// concurrently. Scenarios are fully independent; the merge at the end is
// the only synchronization.
func (p *Pipeline) extractAll(
	ctx context.Context,
	raw []forecast.RawPoint,
	window dynamics.Window,
	gridLen int,
	manifest *forecast.RunManifest,
) (map[scenario.ID]*dynamics.Extraction, error) {
	results := make([]*dynamics.Extraction, len(p.cfg.Profiles))

	g, _ := errgroup.WithContext(ctx)
	for i, profile := range p.cfg.Profiles {
		i, profile := i, profile
		g.Go(func() error {
			ext, err := dynamics.Extract(profile.ID, raw, window)
			if errors.Is(err, core.ErrEmptyForecast) {
				// No mechanistic output for this scenario: degrade to a
				// trend-only projection instead of aborting the run.
				results[i] = dynamics.Empty(profile.ID)
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = ext
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[scenario.ID]*dynamics.Extraction, len(results))
	for _, ext := range results {
		out[ext.Scenario] = ext
		if ext.FellBack {
			manifest.AddWarning(forecast.WarningBaselineFallback, ext.Scenario,
				"baseline window empty, used whole-series mean")
			p.log.Warn("scenario %s: baseline window empty, fell back to whole-series mean", ext.Scenario)
		}
		if ext.CoveredYears()*2 < gridLen {
			manifest.AddWarning(forecast.WarningSparseForecast, ext.Scenario,
				fmt.Sprintf("forecast covers %d of %d grid years", ext.CoveredYears(), gridLen))
		}
	}
	return out, nil
}

// blendAll blends every scenario concurrently under the given config
func (p *Pipeline) blendAll(
	ctx context.Context,
	cfg *scenario.Config,
	anchor series.Observation,
	fit trend.Fit,
	extractions map[scenario.ID]*dynamics.Extraction,
	grid []core.Year,
	manifest *forecast.RunManifest,
) (*forecast.Table, error) {
	results := make([]BlendResult, len(cfg.Profiles))

	g, _ := errgroup.WithContext(ctx)
	for i, profile := range cfg.Profiles {
		i, profile := i, profile
		g.Go(func() error {
			ext, ok := extractions[profile.ID]
			if !ok {
				return fmt.Errorf("%w: %q", core.ErrEmptyForecast, profile.ID)
			}
			results[i] = BlendScenario(anchor, fit, ext, profile, grid)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table := forecast.NewTable()
	for _, res := range results {
		if res.Drifted {
			manifest.AddWarning(forecast.WarningContinuityDrift, res.Trajectory.Scenario,
				fmt.Sprintf("anchor drift %.2e, synthetic anchor point inserted", res.DriftAmount))
		}
		table.Put(res.Trajectory)
	}
	return table, nil
}

// repinAnchor restores exact continuity at t0 after smoothing
func (p *Pipeline) repinAnchor(tr *forecast.Trajectory, anchor series.Observation, manifest *forecast.RunManifest) {
	if len(tr.Points) == 0 {
		return
	}
	first := &tr.Points[0]
	drift := math.Abs(first.Value - anchor.Value)
	if drift <= continuityTolerance {
		return
	}
	shift := anchor.Value - first.Value
	first.Value = anchor.Value
	first.Lower = forecast.ClampIndex(first.Lower + shift)
	first.Upper = forecast.ClampIndex(first.Upper + shift)
	manifest.AddWarning(forecast.WarningContinuityDrift, tr.Scenario,
		fmt.Sprintf("post-smoothing drift %.2e, anchor re-pinned", drift))
}

// referenceHorizon resolves the configured horizon, defaulting to the
// midpoint of the forecast grid.
func (p *Pipeline) referenceHorizon(grid []core.Year) core.Year {
	if p.cfg.ReferenceHorizon != 0 {
		return p.cfg.ReferenceHorizon
	}
	return grid[len(grid)/2]
}

func lastForecastYear(raw []forecast.RawPoint, fallback core.Year) core.Year {
	last := fallback
	for _, p := range raw {
		if p.Year > last {
			last = p.Year
		}
	}
	return last
}
