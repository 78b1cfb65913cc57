package heading

import "math"

// Wrap reduces x modulo 1.0 into [0.0, 1.0) regardless of the sign of x.
func Wrap(x float64) float64 {
	m := math.Mod(x, 1.0)
	if m < 0 {
		m += 1.0
	}
	// -1e-20 + 1.0 rounds up to exactly 1.0
	if m >= 1.0 {
		m = 0
	}
	return m
}

// Distance is the angular distance between two headings along the shorter
// path, in [0.0, 0.5].
func Distance(a, b float64) float64 {
	d := Wrap(a - b)
	return math.Min(d, 1.0-d)
}

// Shape maps a wrapped error diff = (curr - target) mod 1 to a signed duty
// cycle. The magnitude is triangular in diff: zero at 0 and 1, maxSpeed at
// 0.5. diff <= 0.5 drives the heading down, otherwise up.
func Shape(diff, maxSpeed float64) float64 {
	if diff <= 0.5 {
		return -maxSpeed * diff
	}
	return maxSpeed * (1.0 - diff)
}
