package rand

import (
	"math"

	"github.com/pkg/errors"
)

// MaxRejectionRounds bounds the batch loops in the truncated normal
// samplers. Acceptance rates for both branches are bounded well away
// from zero, so hitting this limit means something is broken upstream
// (e.g. a NaN bound). Package-level so tests can tighten it.
var MaxRejectionRounds = 1000

// LeftTruncNorm0 draws n standard normal variates conditioned to exceed
// lower. Each rejection round proposes a batch of ceil(ratio*remaining)
// candidates; accepted values beyond the n still needed are dropped.
// For lower <= 0 plain rejection against the untruncated normal is
// cheap. For lower > 0 proposals come from a shifted exponential with
// rate alphaStar = (lower+sqrt(lower^2+4))/2 and are accepted with
// probability exp(-(z-alphaStar)^2/2) (Robert's algorithm), which stays
// efficient even for extreme bounds.
func LeftTruncNorm0(gen *Generator, n int, lower, ratio float64) ([]float64, error) {
	if n < 1 {
		return nil, errors.Errorf("Sample count must be at least 1, got %d", n)
	}
	if !(ratio >= 1) {
		return nil, errors.Errorf("Batch ratio must be at least 1, got %v", ratio)
	}
	if math.IsNaN(lower) {
		return nil, errors.Errorf("Truncation bound is NaN")
	}

	y := make([]float64, n)
	m := 0

	if lower <= 0 {
		for round := 0; m < n; round++ {
			if round >= MaxRejectionRounds {
				return nil, errors.Errorf("Truncated normal sampling stalled after %d rounds (lower=%v)", MaxRejectionRounds, lower)
			}
			batch := int(math.Ceil(ratio * float64(n-m)))
			for i := 0; i < batch && m < n; i++ {
				z := gen.NormFloat64()
				if z > lower {
					y[m] = z
					m++
				}
			}
		}
		return y, nil
	}

	alphaStar := 0.5 * (lower + math.Sqrt(lower*lower+4.0))
	for round := 0; m < n; round++ {
		if round >= MaxRejectionRounds {
			return nil, errors.Errorf("Truncated normal sampling stalled after %d rounds (lower=%v)", MaxRejectionRounds, lower)
		}
		batch := int(math.Ceil(ratio * float64(n-m)))
		for i := 0; i < batch && m < n; i++ {
			z := lower - math.Log(gen.Float64())/alphaStar
			d := z - alphaStar
			if math.Log(gen.Float64()) < -0.5*d*d {
				y[m] = z
				m++
			}
		}
	}
	return y, nil
}

// LeftTruncNorm draws n variates from a Normal(mu, sigma^2) conditioned
// to exceed lower, by standardizing the bound and rescaling the
// standard draws.
func LeftTruncNorm(gen *Generator, n int, mu, sigma, lower, ratio float64) ([]float64, error) {
	if !(sigma > 0) {
		return nil, errors.Errorf("Scale must be positive, got %v", sigma)
	}

	lower0 := (lower - mu) / sigma
	y, err := LeftTruncNorm0(gen, n, lower0, ratio)
	if err != nil {
		return nil, err
	}
	for i := range y {
		y[i] = y[i]*sigma + mu
	}
	return y, nil
}

// RightTruncNorm draws n variates from a Normal(mu, sigma^2)
// conditioned to stay below upper. Defined as the negation of the
// left-truncated draw with mu and the bound sign-flipped.
func RightTruncNorm(gen *Generator, n int, mu, sigma, upper, ratio float64) ([]float64, error) {
	y, err := LeftTruncNorm(gen, n, -mu, sigma, -upper, ratio)
	if err != nil {
		return nil, err
	}
	for i := range y {
		y[i] = -y[i]
	}
	return y, nil
}
