package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"ecocast/domain/core"
	"ecocast/domain/forecast"
	"ecocast/ports"

	"github.com/jmoiron/sqlx"
)

// ProjectionRepositoryImpl implements ProjectionRepository for PostgreSQL
type ProjectionRepositoryImpl struct {
	db *sqlx.DB
}

// NewProjectionRepository creates a new PostgreSQL projection repository
func NewProjectionRepository(db *sqlx.DB) ports.ProjectionRepository {
	return &ProjectionRepositoryImpl{db: db}
}

// EnsureSchema creates the runs table if it does not exist
func (r *ProjectionRepositoryImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS reconciliation_runs (
			run_id            TEXT PRIMARY KEY,
			config_hash       TEXT NOT NULL,
			anchor_year       DOUBLE PRECISION NOT NULL,
			anchor_value      DOUBLE PRECISION NOT NULL,
			trend_slope       DOUBLE PRECISION NOT NULL,
			scenario_count    INTEGER NOT NULL,
			history_points    INTEGER NOT NULL,
			forecast_points   INTEGER NOT NULL,
			corrected         BOOLEAN NOT NULL,
			correction_passes INTEGER NOT NULL,
			warnings          JSONB NOT NULL DEFAULT '[]',
			projection_table  JSONB NOT NULL,
			runtime_ms        BIGINT NOT NULL,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure reconciliation_runs table: %w", err)
	}
	return nil
}

// SaveRun stores a manifest and its projection table in one upsert
func (r *ProjectionRepositoryImpl) SaveRun(ctx context.Context, manifest *forecast.RunManifest, table *forecast.Table) error {
	warningsJSON, err := json.Marshal(manifest.Warnings)
	if err != nil {
		return fmt.Errorf("failed to marshal warnings: %w", err)
	}
	tableJSON, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to marshal projection table: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO reconciliation_runs (
			run_id, config_hash, anchor_year, anchor_value, trend_slope,
			scenario_count, history_points, forecast_points,
			corrected, correction_passes, warnings, projection_table,
			runtime_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (run_id) DO UPDATE SET
			config_hash = EXCLUDED.config_hash,
			anchor_year = EXCLUDED.anchor_year,
			anchor_value = EXCLUDED.anchor_value,
			trend_slope = EXCLUDED.trend_slope,
			scenario_count = EXCLUDED.scenario_count,
			history_points = EXCLUDED.history_points,
			forecast_points = EXCLUDED.forecast_points,
			corrected = EXCLUDED.corrected,
			correction_passes = EXCLUDED.correction_passes,
			warnings = EXCLUDED.warnings,
			projection_table = EXCLUDED.projection_table,
			runtime_ms = EXCLUDED.runtime_ms`,
		manifest.RunID.String(), string(manifest.ConfigHash),
		manifest.AnchorYear.Float(), manifest.AnchorValue, manifest.TrendSlope,
		manifest.ScenarioCount, manifest.HistoryPoints, manifest.ForecastPoints,
		manifest.Corrected, manifest.CorrectionPasses, warningsJSON, tableJSON,
		manifest.RuntimeMs, manifest.CreatedAt.Time())

	return err
}

// GetManifest retrieves a run manifest by ID
func (r *ProjectionRepositoryImpl) GetManifest(ctx context.Context, runID core.RunID) (*forecast.RunManifest, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT run_id, config_hash, anchor_year, anchor_value, trend_slope,
			   scenario_count, history_points, forecast_points,
			   corrected, correction_passes, warnings, runtime_ms, created_at
		FROM reconciliation_runs
		WHERE run_id = $1`, runID.String())

	manifest, err := scanManifest(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, runID)
		}
		return nil, err
	}
	return manifest, nil
}

// GetTable retrieves the projection table for a run
func (r *ProjectionRepositoryImpl) GetTable(ctx context.Context, runID core.RunID) (*forecast.Table, error) {
	var tableJSON []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT projection_table FROM reconciliation_runs
		WHERE run_id = $1`, runID.String()).Scan(&tableJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", core.ErrProjectionNotFound, runID)
		}
		return nil, err
	}

	var table forecast.Table
	if err := json.Unmarshal(tableJSON, &table); err != nil {
		return nil, fmt.Errorf("failed to unmarshal projection table: %w", err)
	}
	return &table, nil
}

// ListManifests returns recent manifests, newest first
func (r *ProjectionRepositoryImpl) ListManifests(ctx context.Context, limit int) ([]*forecast.RunManifest, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, config_hash, anchor_year, anchor_value, trend_slope,
			   scenario_count, history_points, forecast_points,
			   corrected, correction_passes, warnings, runtime_ms, created_at
		FROM reconciliation_runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var manifests []*forecast.RunManifest
	for rows.Next() {
		manifest, err := scanManifest(rows)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, manifest)
	}
	return manifests, rows.Err()
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanManifest(row rowScanner) (*forecast.RunManifest, error) {
	var m forecast.RunManifest
	var runID, configHash string
	var anchorYear float64
	var warningsJSON []byte
	var createdAt time.Time

	err := row.Scan(
		&runID, &configHash, &anchorYear, &m.AnchorValue, &m.TrendSlope,
		&m.ScenarioCount, &m.HistoryPoints, &m.ForecastPoints,
		&m.Corrected, &m.CorrectionPasses, &warningsJSON, &m.RuntimeMs, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	m.RunID = core.RunID(runID)
	m.ConfigHash = core.ConfigHash(configHash)
	m.AnchorYear = core.Year(anchorYear)
	m.CreatedAt = core.NewTimestamp(createdAt)

	if len(warningsJSON) > 0 {
		if err := json.Unmarshal(warningsJSON, &m.Warnings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal warnings: %w", err)
		}
	}
	return &m, nil
}
