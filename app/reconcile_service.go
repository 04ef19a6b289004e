package app

import (
	"context"

	"ecocast/domain/core"
	"ecocast/domain/forecast"
	"ecocast/domain/scenario"
	"ecocast/internal"
	"ecocast/internal/errors"
	"ecocast/internal/reconcile"
	"ecocast/ports"
)

// ReconcileService orchestrates reconciliation runs: ingest the two input
// tables, run the pipeline, persist the result.
type ReconcileService struct {
	pipeline *reconcile.Pipeline
	reader   ports.TableReader
	repo     ports.ProjectionRepository
	log      *internal.Logger
}

// RunRequest names the two input tables for a run
type RunRequest struct {
	HistoryPath  string `json:"history_path"`
	ForecastPath string `json:"forecast_path"`
}

// RunSummary is the caller-facing digest of a completed run
type RunSummary struct {
	RunID            core.RunID         `json:"run_id"`
	AnchorYear       core.Year          `json:"anchor_year"`
	AnchorValue      float64            `json:"anchor_value"`
	TrendSlope       float64            `json:"trend_slope"`
	Scenarios        []scenario.ID      `json:"scenarios"`
	Corrected        bool               `json:"corrected"`
	CorrectionPasses int                `json:"correction_passes"`
	Warnings         []forecast.Warning `json:"warnings"`
	RuntimeMs        int64              `json:"runtime_ms"`
}

// NewReconcileService creates a reconcile service. The repository may be
// nil for batch runs that only write file output.
func NewReconcileService(
	cfg *scenario.Config,
	reader ports.TableReader,
	repo ports.ProjectionRepository,
	logger *internal.Logger,
) *ReconcileService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ReconcileService{
		pipeline: reconcile.NewPipeline(cfg, logger),
		reader:   reader,
		repo:     repo,
		log:      logger,
	}
}

// SetStrict makes an uncorrectable scenario ranking fatal
func (s *ReconcileService) SetStrict(strict bool) {
	s.pipeline.Strict = strict
}

// Run ingests both tables, reconciles, and persists the projection
func (s *ReconcileService) Run(ctx context.Context, req RunRequest) (*reconcile.Result, error) {
	if req.HistoryPath == "" || req.ForecastPath == "" {
		return nil, errors.InvalidInput("history_path and forecast_path are required")
	}

	history, err := s.reader.ReadHistory(req.HistoryPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read history table")
	}
	raw, err := s.reader.ReadForecast(req.ForecastPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read forecast table")
	}

	result, err := s.pipeline.Run(ctx, reconcile.Input{History: history, Raw: raw})
	if err != nil {
		return nil, err
	}

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, result.Manifest, result.Table); err != nil {
			return nil, errors.WithCode(errors.CodeDatabaseError,
				errors.Wrapf(err, "failed to persist run %s", result.Manifest.RunID))
		}
		s.log.Info("run %s persisted", result.Manifest.RunID)
	}

	return result, nil
}

// GetManifest retrieves a stored run manifest
func (s *ReconcileService) GetManifest(ctx context.Context, runID core.RunID) (*forecast.RunManifest, error) {
	if s.repo == nil {
		return nil, errors.DatabaseError("no projection repository configured")
	}
	return s.repo.GetManifest(ctx, runID)
}

// GetTable retrieves a stored projection table
func (s *ReconcileService) GetTable(ctx context.Context, runID core.RunID) (*forecast.Table, error) {
	if s.repo == nil {
		return nil, errors.DatabaseError("no projection repository configured")
	}
	return s.repo.GetTable(ctx, runID)
}

// ListRuns returns recent run manifests, newest first
func (s *ReconcileService) ListRuns(ctx context.Context, limit int) ([]*forecast.RunManifest, error) {
	if s.repo == nil {
		return nil, errors.DatabaseError("no projection repository configured")
	}
	return s.repo.ListManifests(ctx, limit)
}

// Summarize digests a pipeline result for API and CLI callers
func Summarize(result *reconcile.Result) RunSummary {
	m := result.Manifest
	return RunSummary{
		RunID:            m.RunID,
		AnchorYear:       m.AnchorYear,
		AnchorValue:      m.AnchorValue,
		TrendSlope:       m.TrendSlope,
		Scenarios:        result.Table.Scenarios(),
		Corrected:        m.Corrected,
		CorrectionPasses: m.CorrectionPasses,
		Warnings:         m.Warnings,
		RuntimeMs:        m.RuntimeMs,
	}
}
