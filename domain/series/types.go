package series

import (
	"fmt"
	"sort"

	"ecocast/domain/core"
)

// Observation is a single historical measurement of the stress index.
// Immutable once loaded.
// INVARIANTS:
// - StdDev >= 0
// - Value within the index range [0, 100]
type Observation struct {
	Year   core.Year `json:"year"`
	Value  float64   `json:"value"`
	StdDev float64   `json:"stdev"`
}

// Validate checks observation invariants
func (o Observation) Validate() error {
	if o.StdDev < 0 {
		return core.NewValidationError("stdev", fmt.Sprintf("must be >= 0, got %v", o.StdDev))
	}
	if o.Value < 0 || o.Value > 100 {
		return core.NewValidationError("value", fmt.Sprintf("index must be in [0, 100], got %v", o.Value))
	}
	return nil
}

// Series is an ordered historical series of stress-index observations.
// Construct via NewSeries so ordering and invariants hold.
type Series struct {
	observations []Observation
}

// NewSeries builds an ordered series from raw observations.
// Input order is not trusted; observations are sorted by year.
func NewSeries(observations []Observation) (*Series, error) {
	if len(observations) == 0 {
		return nil, fmt.Errorf("%w: empty historical series", core.ErrInsufficientData)
	}

	sorted := make([]Observation, len(observations))
	copy(sorted, observations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Year < sorted[j].Year
	})

	for _, obs := range sorted {
		if err := obs.Validate(); err != nil {
			return nil, err
		}
	}

	return &Series{observations: sorted}, nil
}

// MustNewSeries builds a series and panics on invalid input.
// Use only in tests and development.
func MustNewSeries(observations []Observation) *Series {
	s, err := NewSeries(observations)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of observations
func (s *Series) Len() int {
	return len(s.observations)
}

// Observations returns a defensive copy of the ordered observations
func (s *Series) Observations() []Observation {
	out := make([]Observation, len(s.observations))
	copy(out, s.observations)
	return out
}

// At returns the i-th observation in year order
func (s *Series) At(i int) Observation {
	return s.observations[i]
}

// Anchor returns the most recent observation. Every forecast trajectory
// must start exactly at this point.
func (s *Series) Anchor() Observation {
	return s.observations[len(s.observations)-1]
}

// Span returns the first and last year of the series
func (s *Series) Span() (core.Year, core.Year) {
	return s.observations[0].Year, s.observations[len(s.observations)-1].Year
}

// Years returns the year coordinates as a float slice (for regression)
func (s *Series) Years() []float64 {
	out := make([]float64, len(s.observations))
	for i, obs := range s.observations {
		out[i] = obs.Year.Float()
	}
	return out
}

// Values returns the observed values as a float slice
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.observations))
	for i, obs := range s.observations {
		out[i] = obs.Value
	}
	return out
}
