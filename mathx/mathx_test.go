package mathx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Reference values computed with 60-digit decimal arithmetic. The x
// values include the branch thresholds themselves and points just on
// either side of them.
func TestLog1pExpReference(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		x    float64
		want float64
	}{
		{-37.0, 8.53304762574406543021e-17},
		{-36.9, 9.43047607852680736905e-17},
		{-37.1, 7.72102078165612430223e-17},
		{1e-08, 6.93147185559945321917e-1},
		{0.5, 9.74076984180106680873e-1},
		{1.0, 1.31326168751822283405e+0},
		{2.0, 2.12692801104297249644e+0},
		{10.0, 1.00000453988992168646e+1},
		{17.9999, 1.79999000152315029359e+1},
		{18.0, 1.80000000152299796287e+1},
		{18.0001, 1.80001000152284564739e+1},
		{30.0, 3.00000000000000935762e+1},
		{33.2999, 3.32999000000000043953e+1},
		{33.3, 3.33000000000000006092e+1},
		{33.3001, 3.33001000000000039285e+1},
		{50.0, 50.0},
		{100.0, 100.0},
	}

	for _, c := range cases {
		assert.InDelta(c.want, Log1pExp(c.x), 1e-10, "x=%v", c.x)
	}
}

func TestLog1mExpmReference(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		x    float64
		want float64
	}{
		{1e-08, -1.84206807489523654471e+1},
		{0.0001, -9.21039037155951602152e+0},
		{0.01, -4.61016601932489689737e+0},
		{0.1, -2.35216846104409075614e+0},
		{0.5, -9.32752129567188571895e-1},
		{math.Ln2, -6.93147180559945332608e-1},
		{0.7, -6.86341002808385153499e-1},
		{1.0, -4.58675145387081891022e-1},
		{2.0, -1.45413457868859056973e-1},
		{5.0, -6.76074944948855782592e-3},
		{10.0, -4.54009603704892095044e-5},
		{20.0, -2.06115362456273495853e-9},
		{50.0, -1.92874984796391778302e-22},
		{100.0, -3.72007597602083600000e-44},
	}

	for _, c := range cases {
		assert.InDelta(c.want, Log1mExpm(c.x), 1e-10, "x=%v", c.x)
	}
}

// Both transforms must stay monotone across their branch boundaries; a
// discontinuity there would poison any likelihood built on top.
func TestMonotoneAcrossThresholds(t *testing.T) {
	assert := assert.New(t)

	prev := math.Inf(-1)
	for x := -45.0; x <= 45.0; x += 0.001 {
		v := Log1pExp(x)
		assert.True(v >= prev, "Log1pExp not monotone at x=%v", x)
		prev = v
	}

	prev = math.Inf(-1)
	for x := 1e-6; x <= 25.0; x += 0.0005 {
		v := Log1mExpm(x)
		assert.True(v >= prev, "Log1mExpm not monotone at x=%v", x)
		prev = v
	}
}

func TestSigmoid(t *testing.T) {
	assert := assert.New(t)

	assert.InDelta(0.5, Sigmoid(0), 1e-15)
	assert.InDelta(1.0, Sigmoid(40), 1e-15)
	assert.InDelta(0.0, Sigmoid(-40), 1e-15)

	for x := -8.0; x <= 8.0; x += 0.25 {
		naive := 1.0 / (1.0 + math.Exp(-x))
		assert.InDelta(naive, Sigmoid(x), 1e-12, "x=%v", x)
	}

	// Complementary pair
	for _, x := range []float64{-3.7, -0.2, 0.9, 5.4} {
		assert.InDelta(1.0, Sigmoid(x)+Sigmoid(-x), 1e-12)
	}
}
