// Package pg draws Polya-Gamma PG(1, c) random variates, the latent
// scales behind the logistic-likelihood samplers. The implementation is
// Devroye's alternating-series rejection method as popularized by the
// BayesLogit sampler: a PG(1, c) draw is J*(1, c/2)/4, where J* is
// sampled from a two-piece proposal (truncated inverse-Gaussian body,
// exponential tail) and accepted against partial sums of the Jacobi
// theta series. Exact for every c, including c = 0.
package pg

import (
	"math"

	"github.com/fastbayes/fastbayes/rand"
)

// trunc is the body/tail split point of the proposal density.
const (
	trunc      = 0.64
	truncRecip = 1.0 / trunc
	pi2Over8   = math.Pi * math.Pi / 8.0
)

// Sampler draws PG(1, c) variates from an injected generator stream.
type Sampler struct {
	gen *rand.Generator
}

// NewSampler returns a Polya-Gamma sampler drawing from gen.
func NewSampler(gen *rand.Generator) *Sampler {
	return &Sampler{gen: gen}
}

// Draw returns one PG(1, c) variate.
func (s *Sampler) Draw(c float64) float64 {
	z := 0.5 * math.Abs(c)
	fz := pi2Over8 + 0.5*z*z
	ratio := tailMass(z, fz)

	for {
		var x float64
		if s.gen.Float64() < ratio {
			x = trunc + s.gen.ExpFloat64()/fz
		} else {
			x = s.truncInvGauss(z)
		}

		// Accept/reject against the alternating series around the
		// dominating term aCoef(0, x).
		sn := aCoef(0, x)
		y := s.gen.Float64() * sn
		for n := 1; ; n++ {
			if n%2 == 1 {
				sn -= aCoef(n, x)
				if y <= sn {
					return 0.25 * x
				}
			} else {
				sn += aCoef(n, x)
				if y > sn {
					break
				}
			}
		}
	}
}

// DrawVec fills dst with PG(1, c[i]) draws. The slices must have equal
// length.
func (s *Sampler) DrawVec(dst, c []float64) {
	if len(dst) != len(c) {
		panic("pg: dimension mismatch")
	}
	for i, v := range c {
		dst[i] = s.Draw(v)
	}
}

// aCoef is the n-th coefficient of the alternating series for the
// Jacobi density, with the form switching at the truncation point.
func aCoef(n int, x float64) float64 {
	k := (float64(n) + 0.5) * math.Pi
	if x > trunc {
		return k * math.Exp(-0.5*k*k*x)
	}
	expnt := -1.5*(math.Log(0.5*math.Pi)+math.Log(x)) + math.Log(k) - 2.0*(float64(n)+0.5)*(float64(n)+0.5)/x
	return math.Exp(expnt)
}

// tailMass returns the probability that a proposal should come from the
// exponential tail piece rather than the inverse-Gaussian body. As z
// grows the mass collapses onto the body, and the saturating arithmetic
// here (exp overflow to +Inf) lands on exactly that limit.
func tailMass(z, fz float64) float64 {
	b := math.Sqrt(truncRecip) * (trunc*z - 1)
	a := -math.Sqrt(truncRecip) * (trunc*z + 1)

	x0 := math.Log(fz) + fz*trunc
	xb := x0 - z + logNormCDF(b)
	xa := x0 + z + logNormCDF(a)

	qdivp := 4.0 / math.Pi * (math.Exp(xb) + math.Exp(xa))
	return 1.0 / (1.0 + qdivp)
}

func logNormCDF(x float64) float64 {
	return math.Log(0.5 * math.Erfc(-x/math.Sqrt2))
}

// truncInvGauss draws from an inverse-Gaussian(1/z, 1) restricted to
// (0, trunc). When the mean exceeds the truncation point the draw
// comes from the Levy body via a truncated-normal-style exponential
// proposal; otherwise plain inverse-Gaussian draws are repeated until
// one lands inside.
func (s *Sampler) truncInvGauss(z float64) float64 {
	if z < truncRecip {
		for {
			e1, e2 := s.gen.ExpFloat64(), s.gen.ExpFloat64()
			for e1*e1 > 2*e2/trunc {
				e1, e2 = s.gen.ExpFloat64(), s.gen.ExpFloat64()
			}
			x := trunc / ((1 + trunc*e1) * (1 + trunc*e1))
			if s.gen.Float64() <= math.Exp(-0.5*z*z*x) {
				return x
			}
		}
	}

	mu := 1.0 / z
	for {
		y := s.gen.NormFloat64()
		y *= y
		muY := mu * y
		x := mu + 0.5*mu*muY - 0.5*mu*math.Sqrt(4*muY+muY*muY)
		if s.gen.Float64() > mu/(mu+x) {
			x = mu * mu / x
		}
		if x < trunc {
			return x
		}
	}
}
