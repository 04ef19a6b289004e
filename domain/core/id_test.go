package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestYearKey tests truncation of continuous years to discrete join keys
func TestYearKey(t *testing.T) {
	cases := []struct {
		year Year
		want YearKey
	}{
		{2023.0, 2023},
		{2023.5, 2023},
		{2023.999, 2023},
		{2024.0, 2024},
	}

	for _, c := range cases {
		if got := c.year.Key(); got != c.want {
			t.Errorf("Year(%v).Key() = %d, want %d", c.year, got, c.want)
		}
	}
}

// TestYearElapsed tests fractional elapsed-year arithmetic
func TestYearElapsed(t *testing.T) {
	anchor := Year(2023.5)
	if got := Year(2030).Elapsed(anchor); got != 6.5 {
		t.Errorf("Elapsed = %v, want 6.5", got)
	}
	if got := anchor.Elapsed(anchor); got != 0 {
		t.Errorf("Elapsed at anchor = %v, want 0", got)
	}
}

// TestComputeConfigHashDeterministic verifies map order does not affect the fingerprint
func TestComputeConfigHashDeterministic(t *testing.T) {
	a := ComputeConfigHash(map[string]interface{}{"growth": 0.4, "window": 5})
	b := ComputeConfigHash(map[string]interface{}{"window": 5, "growth": 0.4})
	if !Hash(a).Equals(Hash(b)) {
		t.Errorf("config hash not deterministic: %s != %s", a, b)
	}
}
