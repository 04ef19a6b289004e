package forecast

import (
	"fmt"
	"sort"

	"ecocast/domain/core"
	"ecocast/domain/scenario"
)

// IndexMin and IndexMax bound the biological stress index. All emitted
// values and band edges are clamped into this range; clamping is part of
// the contract, not an error.
const (
	IndexMin = 0.0
	IndexMax = 100.0
)

// ClampIndex clamps a value into the valid index range
func ClampIndex(v float64) float64 {
	if v < IndexMin {
		return IndexMin
	}
	if v > IndexMax {
		return IndexMax
	}
	return v
}

// RawPoint is one output row of the external mechanistic model.
// The model reports one value per integer year and may contain gaps.
type RawPoint struct {
	Scenario scenario.ID `json:"scenario"`
	Year     core.Year   `json:"year"`
	Value    float64     `json:"value"`
}

// DeviationPoint expresses a raw forecast value relative to the scenario's
// own baseline: shape without the mechanistic model's absolute-level bias.
type DeviationPoint struct {
	Scenario  scenario.ID `json:"scenario"`
	Year      core.Year   `json:"year"`
	Deviation float64     `json:"deviation"`
}

// BlendedPoint is one row of the final projection table
type BlendedPoint struct {
	Scenario scenario.ID `json:"scenario"`
	Year     core.Year   `json:"year"`
	Value    float64     `json:"value"`
	Lower    float64     `json:"lower"`
	Upper    float64     `json:"upper"`
}

// Trajectory is one scenario's blended forecast, ordered by year
type Trajectory struct {
	Scenario scenario.ID    `json:"scenario"`
	Points   []BlendedPoint `json:"points"`
}

// ValueAt returns the trajectory value at a year, joined on the discrete
// year key. The bool reports whether the year is covered.
func (tr *Trajectory) ValueAt(year core.Year) (float64, bool) {
	key := year.Key()
	for _, p := range tr.Points {
		if p.Year.Key() == key {
			return p.Value, true
		}
	}
	return 0, false
}

// Table is the complete projection output, one trajectory per scenario.
// This is the sole artifact the plotting and export layers consume.
type Table struct {
	Trajectories map[scenario.ID]Trajectory `json:"trajectories"`
}

// NewTable builds an empty projection table
func NewTable() *Table {
	return &Table{Trajectories: make(map[scenario.ID]Trajectory)}
}

// Put stores a scenario trajectory
func (t *Table) Put(tr Trajectory) {
	t.Trajectories[tr.Scenario] = tr
}

// Get returns a scenario trajectory
func (t *Table) Get(id scenario.ID) (Trajectory, error) {
	tr, ok := t.Trajectories[id]
	if !ok {
		return Trajectory{}, fmt.Errorf("%w: %q", core.ErrScenarioNotFound, id)
	}
	return tr, nil
}

// Rows flattens the table into export order: by scenario id, then year
func (t *Table) Rows() []BlendedPoint {
	ids := make([]scenario.ID, 0, len(t.Trajectories))
	for id := range t.Trajectories {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var rows []BlendedPoint
	for _, id := range ids {
		rows = append(rows, t.Trajectories[id].Points...)
	}
	return rows
}

// Scenarios returns the scenario ids present in the table, sorted
func (t *Table) Scenarios() []scenario.ID {
	ids := make([]scenario.ID, 0, len(t.Trajectories))
	for id := range t.Trajectories {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
