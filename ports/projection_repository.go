package ports

import (
	"context"

	"ecocast/domain/core"
	"ecocast/domain/forecast"
)

// ProjectionRepository persists reconciliation outputs: the blended
// projection table and its run manifest.
type ProjectionRepository interface {
	// SaveRun stores a manifest and its projection table atomically
	SaveRun(ctx context.Context, manifest *forecast.RunManifest, table *forecast.Table) error

	// GetManifest retrieves a run manifest by ID
	GetManifest(ctx context.Context, runID core.RunID) (*forecast.RunManifest, error)

	// GetTable retrieves the projection table for a run
	GetTable(ctx context.Context, runID core.RunID) (*forecast.Table, error)

	// ListManifests returns recent manifests, newest first
	ListManifests(ctx context.Context, limit int) ([]*forecast.RunManifest, error)
}
