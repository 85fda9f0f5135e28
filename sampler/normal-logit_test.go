package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fastbayes/fastbayes/model"
	"github.com/fastbayes/fastbayes/pg"
	"github.com/fastbayes/fastbayes/rand"
)

// trainAccuracy scores the posterior probabilities against the
// observed outcomes at the 1/2 cutoff.
func trainAccuracy(prob, y []float64) float64 {
	hits := 0
	for i, pr := range prob {
		c := 0.0
		if pr >= 0.5 {
			c = 1
		}
		if c == y[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(prob))
}

func TestNormalLogitRecovery(t *testing.T) {
	assert := assert.New(t)

	gen := rand.NewGenerator(73)
	ds, truth, err := model.SimLogit(gen, 400, 8, 2, 0.1, 4, 3)
	assert.NoError(err)

	ctl := model.Control{Samples: 400, Burnin: 600, Thinning: 1}
	fit, err := FitNormalLogit(gen, ds, ctl, model.DefaultLogitPrior(), nil)
	assert.NoError(err)
	assert.True(fit.Logit)
	assert.Equal(model.NormalLogit, fit.Model)

	rs, err := model.NewRecoverySuite(truth.Beta, fit.PostMean.Beta)
	assert.NoError(err)
	assert.Equal(2, rs.SignHits)

	assert.Len(fit.PostMean.Prob, 400)
	for _, pr := range fit.PostMean.Prob {
		assert.True(pr > 0 && pr < 1)
	}
	assert.True(trainAccuracy(fit.PostMean.Prob, ds.Y) > 0.8)

	// logistic chains carry no observation variance
	assert.Nil(fit.Trace.Sigma2)
	assert.Equal(0.0, fit.PostMean.Sigma2)
	assert.Nil(fit.PostMean.Lambda)
}

func TestNormalLogitHighDim(t *testing.T) {
	assert := assert.New(t)

	gen := rand.NewGenerator(79)
	ds, truth, err := model.SimLogit(gen, 60, 80, 2, 0.1, 9, 4)
	assert.NoError(err)

	ctl := model.Control{Samples: 300, Burnin: 300, Thinning: 1}
	fit, err := FitNormalLogit(gen, ds, ctl, model.DefaultLogitPrior(), nil)
	assert.NoError(err)

	rs, err := model.NewRecoverySuite(truth.Beta, fit.PostMean.Beta)
	assert.NoError(err)
	assert.Equal(2, rs.SignHits)
	assert.True(fit.PostMean.Tau2 > 0)
}

func TestNormalLogitInit(t *testing.T) {
	assert := assert.New(t)

	ds, _, err := model.SimLogit(rand.NewGenerator(83), 50, 6, 2, 0.1, 1, 2)
	assert.NoError(err)

	prior := model.LogitPrior{ATau: 3}
	upd, err := NewNormalLogit(rand.NewGenerator(89), ds, prior, nil)
	assert.NoError(err)

	s := &State{}
	assert.NoError(upd.Init(s))
	assert.Equal(make([]float64, 6), s.Beta)
	assert.Equal(9.0, s.Tau2)
	assert.Equal(9.0, s.BTau)
	assert.Equal(0.0, s.Sigma2)
	assert.Nil(s.Lambda)
	assert.Len(s.Omega, 50)
	for _, w := range s.Omega {
		assert.True(w > 0)
	}
}

// countingPG wraps the exact sampler and counts vector draws, which
// pins down how often a chain refreshes the latent scales.
type countingPG struct {
	inner *pg.Sampler
	calls int
}

func (c *countingPG) Draw(v float64) float64 {
	c.calls++
	return c.inner.Draw(v)
}

func (c *countingPG) DrawVec(dst, v []float64) {
	c.calls++
	c.inner.DrawVec(dst, v)
}

func TestLogitSweepAccounting(t *testing.T) {
	assert := assert.New(t)

	ds, _, err := model.SimLogit(rand.NewGenerator(97), 40, 4, 2, 0.1, 1, 2)
	assert.NoError(err)

	gen := rand.NewGenerator(101)
	cpg := &countingPG{inner: pg.NewSampler(gen)}
	upd, err := NewNormalLogit(gen, ds, model.DefaultLogitPrior(), cpg)
	assert.NoError(err)

	ctl := model.Control{Samples: 5, Burnin: 3, Thinning: 2}
	ch, err := NewChain(upd, ctl, 4)
	assert.NoError(err)
	assert.NoError(ch.Run())

	// one refresh at init plus one per sweep
	assert.Equal(1+ctl.Sweeps(), cpg.calls)
}

func TestNormalLogitValidation(t *testing.T) {
	assert := assert.New(t)

	gen := rand.NewGenerator(103)
	ds, _, err := model.SimLinear(gen, 40, 4, 2, 0.8, 0, 1)
	assert.NoError(err)

	// continuous outcomes are not a logistic problem
	_, err = FitNormalLogit(gen, ds, model.DefaultControl(), model.DefaultLogitPrior(), nil)
	assert.Error(err)
	assert.Contains(err.Error(), "0/1")

	binary, _, err := model.SimLogit(gen, 40, 4, 2, 0.1, 1, 2)
	assert.NoError(err)
	_, err = FitNormalLogit(gen, binary, model.DefaultControl(), model.LogitPrior{ATau: 0}, nil)
	assert.Error(err)
}
