package reconcile

import (
	"math"
	"testing"

	"ecocast/domain/core"
	"ecocast/domain/forecast"
	"ecocast/domain/scenario"
)

// ============================================================================
// TEST: Smoother
// ============================================================================

func noisyTrajectory(values ...float64) forecast.Trajectory {
	tr := forecast.Trajectory{Scenario: scenario.HighForcing}
	for i, v := range values {
		tr.Points = append(tr.Points, forecast.BlendedPoint{
			Scenario: scenario.HighForcing,
			Year:     core.Year(2020 + i),
			Value:    v,
			Lower:    v - 2,
			Upper:    v + 2,
		})
	}
	return tr
}

func TestSmootherWindowOneIsIdentity(t *testing.T) {
	tr := noisyTrajectory(50, 57, 49, 60, 52)
	out := Smoother{Window: 1}.Smooth(tr)

	for i := range tr.Points {
		if out.Points[i] != tr.Points[i] {
			t.Errorf("Point %d changed under W=1: %+v != %+v", i, out.Points[i], tr.Points[i])
		}
	}
}

func TestSmootherDoesNotMutateInput(t *testing.T) {
	tr := noisyTrajectory(50, 57, 49)
	_ = Smoother{Window: 3}.Smooth(tr)

	if tr.Points[1].Value != 57 {
		t.Errorf("Input trajectory mutated: got %v", tr.Points[1].Value)
	}
}

func TestSmootherCenteredAverage(t *testing.T) {
	tr := noisyTrajectory(50, 56, 62)
	out := Smoother{Window: 3}.Smooth(tr)

	// Middle point: mean(50, 56, 62) = 56
	if math.Abs(out.Points[1].Value-56) > 1e-9 {
		t.Errorf("Expected centered mean 56, got %v", out.Points[1].Value)
	}
	// Boundaries use partial windows, never undefined values
	if math.Abs(out.Points[0].Value-53) > 1e-9 {
		t.Errorf("Expected partial-window mean 53 at start, got %v", out.Points[0].Value)
	}
	if math.Abs(out.Points[2].Value-59) > 1e-9 {
		t.Errorf("Expected partial-window mean 59 at end, got %v", out.Points[2].Value)
	}
}

func TestSmootherKeepsEndpoints(t *testing.T) {
	tr := noisyTrajectory(50, 57, 49, 60, 52, 58, 51)
	out := Smoother{Window: 5}.Smooth(tr)

	if len(out.Points) != len(tr.Points) {
		t.Fatalf("Smoothing dropped points: %d -> %d", len(tr.Points), len(out.Points))
	}
}

func TestSmootherAdaptivePreservesAnchor(t *testing.T) {
	tr := noisyTrajectory(55.2, 61, 49, 63, 50, 62, 48)
	out := Smoother{Window: 5, Adaptive: true}.Smooth(tr)

	// Window collapses to 1 at the anchor: the transition stays sharp
	if out.Points[0].Value != 55.2 {
		t.Errorf("Adaptive smoothing moved the anchor: %v", out.Points[0].Value)
	}
	// Away from the anchor the full window applies
	want := (61.0 + 49 + 63 + 50 + 62) / 5
	if math.Abs(out.Points[3].Value-want) > 1e-9 {
		t.Errorf("Expected full-window mean %v at index 3, got %v", want, out.Points[3].Value)
	}
}

func TestSmootherPreservesBandOrdering(t *testing.T) {
	tr := noisyTrajectory(50, 80, 20, 70, 30, 60)
	out := Smoother{Window: 5, Adaptive: true}.Smooth(tr)

	for i, p := range out.Points {
		if p.Lower > p.Value || p.Value > p.Upper {
			t.Errorf("Point %d lost band ordering: %v not in [%v, %v]", i, p.Value, p.Lower, p.Upper)
		}
	}
}

func TestSmootherPreservesScenarioOrdering(t *testing.T) {
	low := noisyTrajectory(40, 44, 41, 46, 43)
	high := noisyTrajectory(50, 54, 51, 56, 53)
	s := Smoother{Window: 3}

	sLow, sHigh := s.Smooth(low), s.Smooth(high)
	for i := range sLow.Points {
		if sLow.Points[i].Value > sHigh.Points[i].Value {
			t.Errorf("Smoothing inverted scenario ordering at index %d", i)
		}
	}
}

func TestSmootherEvenWindowRoundsDown(t *testing.T) {
	tr := noisyTrajectory(50, 56, 62, 44, 58)
	// W=4 behaves like the nearest odd centered window (3)
	a := Smoother{Window: 4}.Smooth(tr)
	b := Smoother{Window: 3}.Smooth(tr)

	for i := range a.Points {
		if a.Points[i].Value != b.Points[i].Value {
			t.Errorf("Even window mismatch at %d: %v != %v", i, a.Points[i].Value, b.Points[i].Value)
		}
	}
}
