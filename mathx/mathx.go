// Package mathx provides numerically stable scalar transforms used for
// log-domain likelihood work. The branch thresholds follow Machler's
// "Accurately Computing log(1-exp(-|a|))" note, which is also where the
// usual log1pexp/log1mexp library routines come from.
package mathx

import "math"

// Log1mExpm returns log(1 - exp(-x)) for x > 0. The evaluation switches
// at x = log(2): below it expm1 keeps the small difference accurate,
// above it log1p does.
func Log1mExpm(x float64) float64 {
	if x <= math.Ln2 {
		return math.Log(-math.Expm1(-x))
	}
	return math.Log1p(-math.Exp(-x))
}

// Log1pExp returns log(1 + exp(x)) without overflow for large x and
// without losing the tiny result for very negative x.
func Log1pExp(x float64) float64 {
	switch {
	case x <= -37:
		return math.Exp(x)
	case x <= 18:
		return math.Log1p(math.Exp(x))
	case x <= 33.3:
		return x + math.Exp(-x)
	default:
		return x
	}
}

// Sigmoid returns 1/(1+exp(-x)), evaluated through Log1pExp so that
// large |x| saturates cleanly instead of overflowing.
func Sigmoid(x float64) float64 {
	return math.Exp(-Log1pExp(-x))
}
