package reconcile

import (
	"ecocast/domain/forecast"
)

// ============================================================================
// SMOOTHER
// ============================================================================
// Centered moving average over value/lower/upper. Boundaries use partial
// windows (the average of whatever points exist) so the first and last
// points are never dropped. The adaptive mode narrows the window near the
// anchor: a single wide window smears the sharp historical-to-forecast
// transition into an artificial ramp, while far from the anchor a wide
// window is what suppresses the mechanistic model's year-to-year noise.
// ============================================================================

// Smoother applies a centered moving average to a trajectory
type Smoother struct {
	// Window is the nominal window width in time steps; 1 is the identity.
	// Even widths round down to the nearest odd centered window.
	Window int
	// Adaptive caps the half-window by the distance from the anchor point
	Adaptive bool
}

// Smooth returns a smoothed copy of the trajectory. All three channels are
// averaged with identical weights, which preserves lower <= value <= upper
// and the cross-scenario ordering of values.
func (s Smoother) Smooth(tr forecast.Trajectory) forecast.Trajectory {
	n := len(tr.Points)
	half := (s.Window - 1) / 2
	if half <= 0 || n == 0 {
		return copyTrajectory(tr)
	}

	out := copyTrajectory(tr)
	for i := 0; i < n; i++ {
		h := half
		if s.Adaptive && i < h {
			h = i
		}
		lo := i - h
		hi := i + h
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}

		var sumV, sumL, sumU float64
		count := float64(hi - lo + 1)
		for j := lo; j <= hi; j++ {
			sumV += tr.Points[j].Value
			sumL += tr.Points[j].Lower
			sumU += tr.Points[j].Upper
		}
		out.Points[i].Value = sumV / count
		out.Points[i].Lower = sumL / count
		out.Points[i].Upper = sumU / count
	}
	return out
}

func copyTrajectory(tr forecast.Trajectory) forecast.Trajectory {
	points := make([]forecast.BlendedPoint, len(tr.Points))
	copy(points, tr.Points)
	return forecast.Trajectory{Scenario: tr.Scenario, Points: points}
}
