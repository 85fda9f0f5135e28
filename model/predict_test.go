package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/fastbayes/fastbayes/mathx"
)

// tinyFit has a 2-draw, 1-coefficient trace with draws 1 and 3.
func tinyFit() *Fit {
	return &Fit{
		Model: NormalLinear,
		Trace: Trace{
			Beta: mat.NewDense(2, 1, []float64{1, 3}),
			Tau2: []float64{1, 1},
		},
	}
}

func TestPredictLinearHandComputed(t *testing.T) {
	assert := assert.New(t)

	fit := tinyFit()
	xtest := mat.NewDense(1, 1, []float64{2})

	// draws for the single test row are {2, 6}
	pred, err := PredictLinear(fit, xtest, 0.5)
	assert.NoError(err)
	assert.InDelta(4.0, pred.Mean[0], 1e-12)
	assert.InDelta(2*math.Sqrt2, pred.SD[0], 1e-12)
	assert.Equal(2.0, pred.Median[0])
	assert.Equal(2.0, pred.Lower[0])
	assert.Equal(6.0, pred.Upper[0])
	assert.Nil(pred.Class)
}

func TestPredictLogitHandComputed(t *testing.T) {
	assert := assert.New(t)

	fit := tinyFit()
	xtest := mat.NewDense(2, 1, []float64{2, -2})

	pred, err := PredictLogit(fit, xtest, 0.9, 0.5)
	assert.NoError(err)

	wantMean := (mathx.Sigmoid(2) + mathx.Sigmoid(6)) / 2
	assert.InDelta(wantMean, pred.Mean[0], 1e-12)
	assert.Equal([]int{1, 0}, pred.Class)

	// second row mirrors the first through the sigmoid
	wantMean2 := (mathx.Sigmoid(-2) + mathx.Sigmoid(-6)) / 2
	assert.InDelta(wantMean2, pred.Mean[1], 1e-12)
}

func TestPredictBadArgs(t *testing.T) {
	assert := assert.New(t)

	fit := tinyFit()
	xtest := mat.NewDense(1, 1, []float64{2})

	_, err := PredictLinear(fit, xtest, 0)
	assert.Error(err)
	_, err = PredictLinear(fit, xtest, 1)
	assert.Error(err)
	_, err = PredictLinear(fit, mat.NewDense(1, 2, nil), 0.95)
	assert.Error(err)

	_, err = PredictLogit(fit, xtest, 0.95, 0)
	assert.Error(err)
	_, err = PredictLogit(fit, xtest, 0.95, 1)
	assert.Error(err)

	broken := &Fit{Model: NormalLinear, Trace: Trace{Beta: mat.NewDense(2, 1, nil), Tau2: []float64{1}}}
	_, err = PredictLinear(broken, xtest, 0.95)
	assert.Error(err)
}
