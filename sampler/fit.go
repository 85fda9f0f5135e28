package sampler

import (
	"time"

	"github.com/fastbayes/fastbayes/model"
	"github.com/fastbayes/fastbayes/rand"
)

// The Fit functions are the one-call API around the updater and chain
// machinery: validate, bind the regime, burn in, sample, summarize.
// Each reports total wall-clock time including factorization setup.

// FitNormalLinear runs the Gaussian-prior linear model.
func FitNormalLinear(gen *rand.Generator, ds *model.Dataset, ctl model.Control, prior model.NormalPrior) (*model.Fit, error) {
	start := time.Now()
	upd, err := NewNormalLinear(gen, ds, prior)
	if err != nil {
		return nil, err
	}
	return runChain(model.NormalLinear, upd, ds, ctl, start)
}

// FitHorseshoeLinear runs the horseshoe linear model with the
// SVD-backed coefficient draw in both regimes.
func FitHorseshoeLinear(gen *rand.Generator, ds *model.Dataset, ctl model.Control, prior model.HorseshoePrior) (*model.Fit, error) {
	start := time.Now()
	upd, err := NewHorseshoeLinear(gen, ds, prior)
	if err != nil {
		return nil, err
	}
	return runChain(model.HorseshoeLinear, upd, ds, ctl, start)
}

// FitHorseshoeLinearHD runs the horseshoe linear model with the direct
// kernel draw for p >= n. This is the production entry point for
// high-dimensional fits; below p = n it is the same exact rotated
// update as FitHorseshoeLinear.
func FitHorseshoeLinearHD(gen *rand.Generator, ds *model.Dataset, ctl model.Control, prior model.HorseshoePrior) (*model.Fit, error) {
	start := time.Now()
	upd, err := NewHorseshoeLinearHD(gen, ds, prior)
	if err != nil {
		return nil, err
	}
	return runChain(model.HorseshoeHD, upd, ds, ctl, start)
}

// FitHorseshoeLinearSS runs the horseshoe linear model with the
// slice-sampled shrinkage updates for p >= n.
func FitHorseshoeLinearSS(gen *rand.Generator, ds *model.Dataset, ctl model.Control, prior model.HorseshoePrior) (*model.Fit, error) {
	start := time.Now()
	upd, err := NewHorseshoeLinearSS(gen, ds, prior)
	if err != nil {
		return nil, err
	}
	return runChain(model.HorseshoeSS, upd, ds, ctl, start)
}

// FitNormalLogit runs the Gaussian-prior logistic model. pgs supplies
// the Polya-Gamma draws; nil selects the exact Devroye sampler.
func FitNormalLogit(gen *rand.Generator, ds *model.Dataset, ctl model.Control, prior model.LogitPrior, pgs PolyaGamma) (*model.Fit, error) {
	start := time.Now()
	upd, err := NewNormalLogit(gen, ds, prior, pgs)
	if err != nil {
		return nil, err
	}
	return runChain(model.NormalLogit, upd, ds, ctl, start)
}

// FitHorseshoeLogit runs the horseshoe logistic model. pgs supplies
// the Polya-Gamma draws; nil selects the exact Devroye sampler.
func FitHorseshoeLogit(gen *rand.Generator, ds *model.Dataset, ctl model.Control, prior model.HorseshoeLogitPrior, pgs PolyaGamma) (*model.Fit, error) {
	start := time.Now()
	upd, err := NewHorseshoeLogit(gen, ds, prior, pgs)
	if err != nil {
		return nil, err
	}
	return runChain(model.HorseshoeLogit, upd, ds, ctl, start)
}

func runChain(name string, upd Updater, ds *model.Dataset, ctl model.Control, start time.Time) (*model.Fit, error) {
	ch, err := NewChain(upd, ctl, DefaultConvergenceWindow)
	if err != nil {
		return nil, err
	}
	if err := ch.Run(); err != nil {
		return nil, err
	}
	return ch.Fit(name, ds, time.Since(start))
}
