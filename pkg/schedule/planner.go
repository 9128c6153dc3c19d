// Package schedule converts an hourly load forecast into a generation
// commitment plan using a deterministic policy (unit size, reserve margin,
// ramp clamps).
package schedule

import (
	"math"
)

// Policy defines how forecasted load is translated into committed units.
type Policy struct {
	// UnitCapacityMW is the sustained output one committed generation unit
	// covers. Must be > 0.
	UnitCapacityMW float64

	// ReserveMargin is a multiplicative safety factor over the point
	// forecast (e.g., 1.1 for +10% spinning reserve).
	// Must be >= 1.0
	ReserveMargin float64

	// Min/Max committed unit bounds. MinUnits models must-run baseload;
	// MaxUnits == 0 means "no upper bound".
	MinUnits int
	MaxUnits int

	// RampUpFactorPerHour caps how fast commitment can grow relative to the
	// previous hour. Example: 2.0 allows doubling per hour at most.
	// If <= 0, defaults to 2.0.
	RampUpFactorPerHour float64

	// RampDownPercentPerHour caps how fast commitment can shed (percentage
	// of the previous hour). Example: 50 means at most half the fleet comes
	// offline in one hour. Clamped to [0,100].
	RampDownPercentPerHour int

	// LookaheadHours defines how many hours ahead to consider when sizing
	// each hour. 0 = single point (tight). N>0 = max over [h .. h+N], which
	// brings slow-start units online before a coming peak.
	LookaheadHours int

	// RoundingMode controls how fractional units are turned into integers.
	// "ceil" (default), "round", or "floor".
	RoundingMode string
}

// Commit converts a forecasted load curve into committed units per hour,
// applying the policy. prev is the commitment in force for the hour before
// the plan starts; forecastMW holds the predicted load for each plan hour.
func Commit(prev int, forecastMW []float64, p Policy) []int {
	if len(forecastMW) == 0 {
		return nil
	}
	if p.UnitCapacityMW <= 0 {
		p.UnitCapacityMW = 1
	}
	if p.ReserveMargin < 1 {
		p.ReserveMargin = 1
	}
	if p.MinUnits < 0 {
		p.MinUnits = 0
	}
	if p.MaxUnits > 0 && p.MaxUnits < p.MinUnits {
		p.MaxUnits = p.MinUnits
	}
	if p.RampUpFactorPerHour <= 0 {
		p.RampUpFactorPerHour = 2.0
	}
	if p.RampDownPercentPerHour < 0 {
		p.RampDownPercentPerHour = 0
	}
	if p.RampDownPercentPerHour > 100 {
		p.RampDownPercentPerHour = 100
	}
	if p.LookaheadHours < 0 {
		p.LookaheadHours = 0
	}

	need := make([]float64, len(forecastMW))
	for h, mw := range forecastMW {
		if mw < 0 {
			mw = 0
		}
		need[h] = mw * p.ReserveMargin / p.UnitCapacityMW
	}

	plan := make([]int, len(forecastMW))
	prevOut := clampBounds(prev, p.MinUnits, p.MaxUnits)

	for h := range forecastMW {
		last := h + p.LookaheadHours
		if last >= len(need) {
			last = len(need) - 1
		}
		peak := 0.0
		for j := h; j <= last; j++ {
			if need[j] > peak {
				peak = need[j]
			}
		}

		units := roundUnits(peak, p.RoundingMode)

		// Apply bounds, then ramp clamps, then bounds again.
		units = clampBounds(units, p.MinUnits, p.MaxUnits)
		units = clampRamp(prevOut, units, p.RampUpFactorPerHour, p.RampDownPercentPerHour)
		units = clampBounds(units, p.MinUnits, p.MaxUnits)

		plan[h] = units
		prevOut = units
	}
	return plan
}

func roundUnits(x float64, mode string) int {
	switch mode {
	case "floor":
		return int(math.Floor(x))
	case "round":
		return int(math.Round(x))
	default: // "ceil" or anything else
		return int(math.Ceil(x))
	}
}

func clampBounds(x, lo, hi int) int {
	if hi > 0 && x > hi {
		return hi
	}
	if x < lo {
		return lo
	}
	return x
}

func clampRamp(prev, next int, upFactor float64, downPct int) int {
	if prev < 0 {
		prev = 0
	}
	// With nothing online, allow the requested commitment directly, but
	// still guard absurd jumps with upFactor if provided.
	if prev == 0 {
		if upFactor > 0 {
			maxUp := int(math.Ceil(upFactor))
			if next > maxUp {
				return maxUp
			}
		}
		return next
	}
	maxUp := int(math.Ceil(float64(prev) * upFactor))
	minDown := int(math.Floor(float64(prev) * (1.0 - float64(downPct)/100.0)))
	if next > maxUp {
		return maxUp
	}
	if next < minDown {
		return minDown
	}
	return next
}
