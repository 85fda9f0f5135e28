// Package rand provides the seedable pseudorandom stream behind every
// sampler in fastbayes, plus rejection samplers for truncated normal
// draws. A fit uses exactly one Generator, injected by the caller, so
// runs are reproducible from the seed alone.
package rand

import (
	mrand "math/rand/v2"

	"github.com/pkg/errors"
	"github.com/seehuhn/mt19937"
	"gonum.org/v1/gonum/stat/distuv"
)

// A Generator is a single Mersenne Twister stream. It implements
// math/rand/v2.Source, so gonum distributions can draw from it directly
// via their Src field. Access is strictly sequential: a Generator must
// never be shared by concurrent fits.
type Generator struct {
	mt  *mt19937.MT19937
	rnd *mrand.Rand
}

// NewGenerator returns a new stream seeded with the given seed.
func NewGenerator(seed int64) *Generator {
	mt := mt19937.New()
	mt.Seed(seed)

	g := &Generator{mt: mt}
	g.rnd = mrand.New(g)
	return g
}

// NewGeneratorSlice seeds the stream from a key array, using the
// reference mt19937-64 init_by_array initialization.
func NewGeneratorSlice(key []uint64) (*Generator, error) {
	if len(key) < 1 {
		return nil, errors.Errorf("Seed key must not be empty")
	}

	mt := mt19937.New()
	mt.SeedFromSlice(key)

	g := &Generator{mt: mt}
	g.rnd = mrand.New(g)
	return g, nil
}

// Uint64 implements math/rand/v2.Source.
func (g *Generator) Uint64() uint64 {
	return g.mt.Uint64()
}

// Float64 returns a uniform draw from [0, 1).
func (g *Generator) Float64() float64 {
	return g.rnd.Float64()
}

// NormFloat64 returns a standard normal draw.
func (g *Generator) NormFloat64() float64 {
	return g.rnd.NormFloat64()
}

// ExpFloat64 returns a unit-rate exponential draw. Note that
// Gamma(shape=1, rate) is ExpFloat64()/rate, which the update routines
// use for all shape-1 draws.
func (g *Generator) ExpFloat64() float64 {
	return g.rnd.ExpFloat64()
}

// Norm fills dst with independent standard normal draws.
func (g *Generator) Norm(dst []float64) {
	for i := range dst {
		dst[i] = g.rnd.NormFloat64()
	}
}

// Gamma returns a draw from a Gamma distribution with the given shape
// and rate. Rate, not scale: Gamma(shape, rate) has mean shape/rate.
func (g *Generator) Gamma(shape, rate float64) float64 {
	return distuv.Gamma{Alpha: shape, Beta: rate, Src: g}.Rand()
}
