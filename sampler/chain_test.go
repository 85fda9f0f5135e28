package sampler

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/fastbayes/fastbayes/buffer"
	"github.com/fastbayes/fastbayes/model"
	"github.com/fastbayes/fastbayes/rand"
)

func testChainDataset(t *testing.T, seed int64) *model.Dataset {
	t.Helper()
	ds, _, err := model.SimLinear(rand.NewGenerator(seed), 30, 3, 2, 0.8, 0, 1)
	assert.NoError(t, err)
	return ds
}

func TestChainBookkeeping(t *testing.T) {
	assert := assert.New(t)

	ds := testChainDataset(t, 1)
	upd, err := NewNormalLinear(rand.NewGenerator(2), ds, model.DefaultNormalPrior())
	assert.NoError(err)

	ctl := model.Control{Samples: 12, Burnin: 7, Thinning: 3}
	ch, err := NewChain(upd, ctl, 8)
	assert.NoError(err)

	// burn-in already happened in the constructor
	assert.Equal(int64(7), ch.TotalSweeps)
	assert.Equal(0, ch.Kept())
	assert.False(ch.Done())

	assert.NoError(ch.Run())
	assert.True(ch.Done())
	assert.Equal(12, ch.Kept())
	assert.Equal(int64(ctl.Sweeps()), ch.TotalSweeps)

	tr := ch.Trace()
	assert.NoError(tr.Check())
	assert.Equal(12, tr.Samples())
	assert.Equal(3, tr.P())
	assert.Nil(tr.Lambda)
	for i, v := range tr.Tau2 {
		assert.True(v > 0)
		assert.True(tr.Sigma2[i] > 0)
	}

	// history windows saw every kept draw
	assert.Equal(int64(12), ch.Tau2History.TotalSeen)
	assert.True(ch.Tau2History.Full())
	assert.True(ch.Sigma2History.Full())

	err = ch.Step()
	assert.Error(err)
	assert.Contains(err.Error(), "already holds")
}

func TestChainDeterminism(t *testing.T) {
	assert := assert.New(t)

	ds := testChainDataset(t, 3)
	ctl := model.Control{Samples: 25, Burnin: 10, Thinning: 2}

	run := func() model.Trace {
		upd, err := NewNormalLinear(rand.NewGenerator(99), ds, model.DefaultNormalPrior())
		assert.NoError(err)
		ch, err := NewChain(upd, ctl, 10)
		assert.NoError(err)
		assert.NoError(ch.Run())
		return ch.Trace()
	}

	one, two := run(), run()
	assert.True(mat.Equal(one.Beta, two.Beta))
	assert.Equal(one.Tau2, two.Tau2)
	assert.Equal(one.Sigma2, two.Sigma2)
}

func TestChainFit(t *testing.T) {
	assert := assert.New(t)

	ds := testChainDataset(t, 4)
	upd, err := NewNormalLinear(rand.NewGenerator(5), ds, model.DefaultNormalPrior())
	assert.NoError(err)

	ctl := model.Control{Samples: 20, Burnin: 10, Thinning: 1}
	ch, err := NewChain(upd, ctl, 10)
	assert.NoError(err)

	// no summary before the chain finishes
	_, err = ch.Fit(model.NormalLinear, ds, time.Second)
	assert.Error(err)

	assert.NoError(ch.Run())
	fit, err := ch.Fit(model.NormalLinear, ds, time.Second)
	assert.NoError(err)
	assert.Equal(model.NormalLinear, fit.Model)
	assert.False(fit.Logit)
	assert.Equal(time.Second, fit.Elapsed)
	assert.Len(fit.PostMean.Beta, 3)
	assert.Len(fit.PostMean.Mu, 30)
	assert.Nil(fit.PostMean.Prob)
	assert.Nil(fit.PostMean.Lambda)
	assert.True(fit.PostMean.Sigma2 > 0)

	// posterior means are the column means of the trace
	sum := 0.0
	for i := 0; i < 20; i++ {
		sum += fit.Trace.Beta.At(i, 0)
	}
	assert.InDelta(sum/20, fit.PostMean.Beta[0], 1e-12)

	// summarizing against a differently shaped dataset is refused
	wide, _, err := model.SimLinear(rand.NewGenerator(7), 30, 5, 2, 0.8, 0, 1)
	assert.NoError(err)
	_, err = ch.Fit(model.NormalLinear, wide, time.Second)
	assert.Error(err)
}

func TestChainValidation(t *testing.T) {
	assert := assert.New(t)

	ds := testChainDataset(t, 8)
	upd, err := NewNormalLinear(rand.NewGenerator(9), ds, model.DefaultNormalPrior())
	assert.NoError(err)

	ctl := model.Control{Samples: 5, Burnin: 2, Thinning: 1}

	_, err = NewChain(nil, ctl, 8)
	assert.Error(err)

	_, err = NewChain(upd, model.Control{Samples: 0, Burnin: 2, Thinning: 1}, 8)
	assert.Error(err)

	_, err = NewChain(upd, model.Control{Samples: 5, Burnin: 2, Thinning: 0}, 8)
	assert.Error(err)

	_, err = NewChain(upd, ctl, 1)
	assert.Error(err)
}

func TestSplitCheck(t *testing.T) {
	assert := assert.New(t)

	h := buffer.NewCircularFloat(8)
	for i := 0; i < 7; i++ {
		h.Add(5)
		_, ok := SplitCheck(h)
		assert.False(ok)
	}
	h.Add(5)

	// constant history: perfectly stationary
	score, ok := SplitCheck(h)
	assert.True(ok)
	assert.Equal(0.0, score)

	// step change between halves with within-half wiggle
	h = buffer.NewCircularFloat(8)
	for _, v := range []float64{0, 1, 0, 1, 5, 6, 5, 6} {
		h.Add(v)
	}
	score, ok = SplitCheck(h)
	assert.True(ok)
	assert.InDelta(5/math.Sqrt(1.0/3.0), score, 1e-10)

	// constant halves at different levels degenerate to +Inf
	h = buffer.NewCircularFloat(8)
	for _, v := range []float64{1, 1, 1, 1, 2, 2, 2, 2} {
		h.Add(v)
	}
	score, ok = SplitCheck(h)
	assert.True(ok)
	assert.True(math.IsInf(score, 1))

	_, ok = SplitCheck(nil)
	assert.False(ok)
}
