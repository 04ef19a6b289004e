package core

import (
	"math"
	"time"
)

// Timestamp represents a point in wall-clock time (run metadata only; the
// scientific time axis uses Year below)
type Timestamp time.Time

// NewTimestamp creates a new timestamp from time.Time
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t)
}

// Now returns the current timestamp
func Now() Timestamp {
	return Timestamp(time.Now())
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// IsZero checks if the timestamp is zero
func (t Timestamp) IsZero() bool {
	return time.Time(t).IsZero()
}

// JSON marshaling for Timestamp
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tm time.Time
	if err := tm.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = Timestamp(tm)
	return nil
}

// Year is the scientific time axis: a continuous decimal year
// (e.g. 2023.5 = mid-2023). Field campaigns are sub-annual, so the axis
// is fractional even though the mechanistic model reports whole years.
type Year float64

// YearKey is the discrete calendar-year key used for joins against the
// mechanistic forecast, which reports one value per integer year.
// Joining on the fractional Year axis against integer-year data silently
// drops everything except exact boundary matches, so all deviation lookups
// go through YearKey.
type YearKey int

// Key truncates a continuous year to its discrete join key.
func (y Year) Key() YearKey {
	return YearKey(math.Floor(float64(y)))
}

// Float returns the underlying float64
func (y Year) Float() float64 { return float64(y) }

// Before returns true if y is strictly earlier than u
func (y Year) Before(u Year) bool { return y < u }

// Elapsed returns the (possibly fractional) number of years since start.
func (y Year) Elapsed(start Year) float64 {
	return float64(y) - float64(start)
}
