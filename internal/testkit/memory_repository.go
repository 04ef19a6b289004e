package testkit

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ecocast/domain/core"
	"ecocast/domain/forecast"
	"ecocast/ports"
)

// MemoryRepository is an in-memory ProjectionRepository for tests and
// demo servers that run without a database.
type MemoryRepository struct {
	mu        sync.RWMutex
	manifests map[core.RunID]*forecast.RunManifest
	tables    map[core.RunID]*forecast.Table
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		manifests: make(map[core.RunID]*forecast.RunManifest),
		tables:    make(map[core.RunID]*forecast.Table),
	}
}

var _ ports.ProjectionRepository = (*MemoryRepository)(nil)

func (r *MemoryRepository) SaveRun(ctx context.Context, manifest *forecast.RunManifest, table *forecast.Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manifests[manifest.RunID] = manifest
	r.tables[manifest.RunID] = table
	return nil
}

func (r *MemoryRepository) GetManifest(ctx context.Context, runID core.RunID) (*forecast.RunManifest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	manifest, ok := r.manifests[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, runID)
	}
	return manifest, nil
}

func (r *MemoryRepository) GetTable(ctx context.Context, runID core.RunID) (*forecast.Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	table, ok := r.tables[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrProjectionNotFound, runID)
	}
	return table, nil
}

func (r *MemoryRepository) ListManifests(ctx context.Context, limit int) ([]*forecast.RunManifest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	manifests := make([]*forecast.RunManifest, 0, len(r.manifests))
	for _, m := range r.manifests {
		manifests = append(manifests, m)
	}
	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].CreatedAt.Time().After(manifests[j].CreatedAt.Time())
	})

	if limit > 0 && len(manifests) > limit {
		manifests = manifests[:limit]
	}
	return manifests, nil
}
