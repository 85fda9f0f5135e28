package rand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMTBadSeed(t *testing.T) {
	assert := assert.New(t)

	gen, err := NewGeneratorSlice([]uint64{})
	assert.Nil(gen)
	assert.Error(err)
}

func TestMTCanonicalSeed(t *testing.T) {
	assert := assert.New(t)

	gen, err := NewGeneratorSlice([]uint64{0x12345, 0x23456, 0x34567, 0x45678})
	assert.NotNil(gen)
	assert.NoError(err)

	// First outputs of the mt19937-64 reference implementation under
	// init_by_array with the key above.
	origTestSeq := []uint64{
		7266447313870364031,
		4946485549665804864,
		16945909448695747420,
		16394063075524226720,
		4873882236456199058,
	}

	for _, exp := range origTestSeq {
		assert.Equal(exp, gen.Uint64())
	}
}

func TestGeneratorDeterminism(t *testing.T) {
	assert := assert.New(t)

	g1 := NewGenerator(42)
	g2 := NewGenerator(42)
	g3 := NewGenerator(43)

	same := true
	diff := false
	for i := 0; i < 1000; i++ {
		a, b, c := g1.Float64(), g2.Float64(), g3.Float64()
		same = same && (a == b)
		diff = diff || (a != c)
	}
	assert.True(same)
	assert.True(diff)

	// Normal and gamma draws ride the same stream and must agree too
	g1, g2 = NewGenerator(7), NewGenerator(7)
	for i := 0; i < 100; i++ {
		assert.Equal(g1.NormFloat64(), g2.NormFloat64())
		assert.Equal(g1.Gamma(2.5, 1.5), g2.Gamma(2.5, 1.5))
	}
}

func TestGammaMoments(t *testing.T) {
	assert := assert.New(t)

	gen := NewGenerator(1234)

	const (
		shape = 3.0
		rate  = 2.0
		draws = 200000
	)

	sum, sum2 := 0.0, 0.0
	for i := 0; i < draws; i++ {
		x := gen.Gamma(shape, rate)
		assert.True(x > 0)
		sum += x
		sum2 += x * x
	}
	mean := sum / draws
	variance := sum2/draws - mean*mean

	// mean shape/rate = 1.5, variance shape/rate^2 = 0.75
	assert.InDelta(1.5, mean, 0.01)
	assert.InDelta(0.75, variance, 0.03)
}
