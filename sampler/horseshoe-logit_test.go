package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fastbayes/fastbayes/model"
	"github.com/fastbayes/fastbayes/rand"
)

func TestHorseshoeLogitInit(t *testing.T) {
	assert := assert.New(t)

	prior := model.HorseshoeLogitPrior{ATau: 2, ALambda: 1}

	// p < n starts the global scale at the prior scale squared
	ds, _, err := model.SimLogit(rand.NewGenerator(107), 50, 6, 2, 0.1, 1, 2)
	assert.NoError(err)
	upd, err := NewHorseshoeLogit(rand.NewGenerator(109), ds, prior, nil)
	assert.NoError(err)

	s := &State{}
	assert.NoError(upd.Init(s))
	assert.Equal(4.0, s.Tau2)
	assert.Equal(4.0, s.BTau)
	assert.Equal(0.0, s.Sigma2)
	ones := make([]float64, 6)
	for j := range ones {
		ones[j] = 1
	}
	assert.Equal(ones, s.Lambda)
	assert.Equal(ones, s.BLambda)
	assert.Len(s.Omega, 50)
	for _, w := range s.Omega {
		assert.True(w > 0)
	}

	// p >= n shrinks the starting global scale to 1/p
	wide, _, err := model.SimLogit(rand.NewGenerator(113), 20, 25, 2, 0.1, 1, 2)
	assert.NoError(err)
	upd, err = NewHorseshoeLogit(rand.NewGenerator(127), wide, prior, nil)
	assert.NoError(err)

	s = &State{}
	assert.NoError(upd.Init(s))
	assert.Equal(1.0/25.0, s.Tau2)
	assert.Equal(4.0, s.BTau)
	assert.Len(s.Lambda, 25)
}

func TestHorseshoeLogitRecovery(t *testing.T) {
	assert := assert.New(t)

	gen := rand.NewGenerator(131)
	ds, truth, err := model.SimLogit(gen, 400, 10, 2, 0.1, 4, 3)
	assert.NoError(err)

	ctl := model.Control{Samples: 400, Burnin: 600, Thinning: 1}
	fit, err := FitHorseshoeLogit(gen, ds, ctl, model.DefaultHorseshoeLogitPrior(), nil)
	assert.NoError(err)
	assert.True(fit.Logit)
	assert.Equal(model.HorseshoeLogit, fit.Model)

	rs, err := model.NewRecoverySuite(truth.Beta, fit.PostMean.Beta)
	assert.NoError(err)
	assert.Equal(2, rs.SignHits)
	assert.True(trainAccuracy(fit.PostMean.Prob, ds.Y) > 0.8)

	assert.NotNil(fit.Trace.Lambda)
	assert.Nil(fit.Trace.Sigma2)
	assert.Len(fit.PostMean.Lambda, 10)
	for _, l := range fit.PostMean.Lambda {
		assert.True(l > 0)
	}
}

func TestHorseshoeLogitHighDim(t *testing.T) {
	assert := assert.New(t)

	gen := rand.NewGenerator(137)
	ds, truth, err := model.SimLogit(gen, 60, 90, 2, 0.1, 9, 4)
	assert.NoError(err)

	ctl := model.Control{Samples: 300, Burnin: 300, Thinning: 1}
	fit, err := FitHorseshoeLogit(gen, ds, ctl, model.DefaultHorseshoeLogitPrior(), nil)
	assert.NoError(err)

	rs, err := model.NewRecoverySuite(truth.Beta, fit.PostMean.Beta)
	assert.NoError(err)
	assert.Equal(2, rs.SignHits)

	// shrinkage keeps the 88 null coordinates near zero
	assert.True(rs.ZeroSSE < 2.0)
}

func TestHorseshoeLogitValidation(t *testing.T) {
	assert := assert.New(t)

	gen := rand.NewGenerator(139)
	ds, _, err := model.SimLinear(gen, 40, 4, 2, 0.8, 0, 1)
	assert.NoError(err)

	_, err = FitHorseshoeLogit(gen, ds, model.DefaultControl(), model.DefaultHorseshoeLogitPrior(), nil)
	assert.Error(err)
	assert.Contains(err.Error(), "0/1")

	binary, _, err := model.SimLogit(gen, 40, 4, 2, 0.1, 1, 2)
	assert.NoError(err)
	_, err = FitHorseshoeLogit(gen, binary, model.DefaultControl(), model.HorseshoeLogitPrior{ATau: 1, ALambda: -1}, nil)
	assert.Error(err)
}
