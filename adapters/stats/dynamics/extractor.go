package dynamics

import (
	"fmt"
	"sort"

	"ecocast/domain/core"
	"ecocast/domain/forecast"
	"ecocast/domain/scenario"

	"github.com/montanaflynn/stats"
)

// ============================================================================
// SCENARIO DYNAMICS EXTRACTOR
// ============================================================================
// Converts a scenario's raw mechanistic forecast into a deviation-from-its-
// own-baseline signal. The mechanistic model's absolute level was judged
// unreliable, so only the shape survives: deviation = value - baseline,
// where baseline is the scenario's own mean over an early reference window.
//
// All lookups join on the discrete calendar-year key. The mechanistic
// source reports integer years; joining on the fractional field-survey axis
// matches nothing but exact boundaries and returns deviation 0 almost
// everywhere.
// ============================================================================

// Window is the early-forecast reference window used to compute the baseline.
// Start is normally the anchor year, so deviation at the anchor is ~0 and
// the blended trajectory stays continuous without a special case.
type Window struct {
	Start core.Year
	Span  float64 // Years, inclusive of Start
}

// Contains reports whether a year key falls inside the window
func (w Window) Contains(y core.Year) bool {
	k := y.Key()
	return k >= w.Start.Key() && float64(k) < float64(w.Start.Key())+w.Span
}

// Extraction is one scenario's deviation signal
type Extraction struct {
	Scenario scenario.ID
	Baseline float64
	// FellBack is set when the window held no points and the whole-series
	// mean was used instead (recoverable; callers log a warning).
	FellBack bool

	points []forecast.DeviationPoint
	byKey  map[core.YearKey]float64
}

// Extract computes the baseline and deviation series for one scenario.
// Raw points are filtered to the scenario, so a mixed multi-scenario slice
// is safe to pass.
func Extract(sc scenario.ID, raw []forecast.RawPoint, window Window) (*Extraction, error) {
	values := make(map[core.YearKey][]float64)
	for _, p := range raw {
		if p.Scenario != sc {
			continue
		}
		key := p.Year.Key()
		values[key] = append(values[key], p.Value)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %q", core.ErrEmptyForecast, sc)
	}

	// One value per year key; duplicate rows for a year are averaged
	keys := make([]core.YearKey, 0, len(values))
	perYear := make(map[core.YearKey]float64, len(values))
	for key, vs := range values {
		keys = append(keys, key)
		m, _ := stats.Mean(vs)
		perYear[key] = m
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	baseline, fellBack := computeBaseline(keys, perYear, window)

	ext := &Extraction{
		Scenario: sc,
		Baseline: baseline,
		FellBack: fellBack,
		byKey:    make(map[core.YearKey]float64, len(keys)),
	}
	for _, key := range keys {
		dev := perYear[key] - baseline
		ext.byKey[key] = dev
		ext.points = append(ext.points, forecast.DeviationPoint{
			Scenario:  sc,
			Year:      core.Year(key),
			Deviation: dev,
		})
	}
	return ext, nil
}

// Empty returns an extraction with no deviation signal: every lookup
// yields zero dynamics. Used when a configured scenario has no mechanistic
// output at all, degrading it to a trend-only projection.
func Empty(sc scenario.ID) *Extraction {
	return &Extraction{Scenario: sc, byKey: map[core.YearKey]float64{}}
}

// computeBaseline averages values inside the window, falling back to the
// whole-series mean when the window is empty (gappy mechanistic output).
func computeBaseline(keys []core.YearKey, perYear map[core.YearKey]float64, window Window) (float64, bool) {
	var inWindow []float64
	for _, key := range keys {
		if window.Contains(core.Year(key)) {
			inWindow = append(inWindow, perYear[key])
		}
	}
	if len(inWindow) > 0 {
		m, _ := stats.Mean(inWindow)
		return m, false
	}

	all := make([]float64, 0, len(keys))
	for _, key := range keys {
		all = append(all, perYear[key])
	}
	m, _ := stats.Mean(all)
	return m, true
}

// DeviationAt returns the deviation for a (possibly fractional) year,
// joined on the year key. Missing years contribute zero dynamics.
func (e *Extraction) DeviationAt(year core.Year) float64 {
	return e.byKey[year.Key()]
}

// Points returns the deviation series in year order
func (e *Extraction) Points() []forecast.DeviationPoint {
	out := make([]forecast.DeviationPoint, len(e.points))
	copy(out, e.points)
	return out
}

// CoveredYears returns how many distinct forecast years the scenario has
func (e *Extraction) CoveredYears() int {
	return len(e.byKey)
}
