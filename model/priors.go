package model

import (
	"math"

	"github.com/pkg/errors"
)

// NormalPrior parameterizes the Gaussian-coefficient linear model: an
// inverse-gamma(ASigma, BSigma) prior on the noise variance and a
// half-Cauchy(ATau) prior on the ratio between the coefficient variance
// and the noise variance.
type NormalPrior struct {
	ASigma float64
	BSigma float64
	ATau   float64
}

// DefaultNormalPrior is a diffuse inverse-gamma noise prior with a
// wide half-Cauchy scale on the global shrinkage.
func DefaultNormalPrior() NormalPrior {
	return NormalPrior{ASigma: 0.01, BSigma: 0.01, ATau: 10}
}

// Check returns an error if there is a problem with the prior. The
// normal linear model starts its chain at BSigma/ASigma, so both must
// be strictly positive here.
func (pr NormalPrior) Check() error {
	if pr.ASigma <= 0 || math.IsNaN(pr.ASigma) || math.IsInf(pr.ASigma, 0) {
		return errors.Errorf("Inverse-gamma shape a_sigma is %v - need a finite value > 0", pr.ASigma)
	}
	if pr.BSigma <= 0 || math.IsNaN(pr.BSigma) || math.IsInf(pr.BSigma, 0) {
		return errors.Errorf("Inverse-gamma rate b_sigma is %v - need a finite value > 0", pr.BSigma)
	}
	return checkScale("A_tau", pr.ATau)
}

// HorseshoePrior parameterizes the horseshoe linear model: the
// NormalPrior pieces plus a half-Cauchy(ALambda) prior on each local
// shrinkage scale.
type HorseshoePrior struct {
	ASigma  float64
	BSigma  float64
	ATau    float64
	ALambda float64
}

// DefaultHorseshoePrior uses unit half-Cauchy scales for both
// shrinkage levels. ASigma = BSigma = 0 selects the flat noise prior
// and a starting noise variance of one.
func DefaultHorseshoePrior() HorseshoePrior {
	return HorseshoePrior{ASigma: 0, BSigma: 0, ATau: 1, ALambda: 1}
}

// Check returns an error if there is a problem with the prior
func (pr HorseshoePrior) Check() error {
	if err := checkShapeRate(pr.ASigma, pr.BSigma); err != nil {
		return err
	}
	if err := checkScale("A_tau", pr.ATau); err != nil {
		return err
	}
	return checkScale("A_lambda", pr.ALambda)
}

// LogitPrior parameterizes the Gaussian-coefficient logistic model.
// The Polya-Gamma augmentation absorbs the noise scale, so only the
// global shrinkage scale remains.
type LogitPrior struct {
	ATau float64
}

// DefaultLogitPrior uses a unit half-Cauchy scale on the global
// shrinkage.
func DefaultLogitPrior() LogitPrior {
	return LogitPrior{ATau: 1}
}

// Check returns an error if there is a problem with the prior
func (pr LogitPrior) Check() error {
	return checkScale("A_tau", pr.ATau)
}

// HorseshoeLogitPrior parameterizes the horseshoe logistic model.
type HorseshoeLogitPrior struct {
	ATau    float64
	ALambda float64
}

// DefaultHorseshoeLogitPrior uses unit half-Cauchy scales for both
// shrinkage levels.
func DefaultHorseshoeLogitPrior() HorseshoeLogitPrior {
	return HorseshoeLogitPrior{ATau: 1, ALambda: 1}
}

// Check returns an error if there is a problem with the prior
func (pr HorseshoeLogitPrior) Check() error {
	if err := checkScale("A_tau", pr.ATau); err != nil {
		return err
	}
	return checkScale("A_lambda", pr.ALambda)
}

// Control bundles the MCMC run-length parameters: Samples kept draws,
// after Burnin discarded sweeps, keeping every Thinning-th sweep.
type Control struct {
	Samples  int
	Burnin   int
	Thinning int
}

// DefaultControl returns 500 kept draws after 500 burn-in sweeps with
// no thinning.
func DefaultControl() Control {
	return Control{Samples: 500, Burnin: 500, Thinning: 1}
}

// Check returns an error if there is a problem with the control parameters
func (c Control) Check() error {
	if c.Samples < 1 {
		return errors.Errorf("Kept sample count is %d - need at least 1", c.Samples)
	}
	if c.Burnin < 0 {
		return errors.Errorf("Burn-in count is %d - may not be negative", c.Burnin)
	}
	if c.Thinning < 1 {
		return errors.Errorf("Thinning interval is %d - need at least 1", c.Thinning)
	}
	return nil
}

// Sweeps returns the total number of Gibbs sweeps the control implies.
func (c Control) Sweeps() int {
	return c.Burnin + c.Samples*c.Thinning
}

func checkShapeRate(a, b float64) error {
	if a < 0 || math.IsNaN(a) || math.IsInf(a, 0) {
		return errors.Errorf("Inverse-gamma shape a_sigma is %v - need a finite value >= 0", a)
	}
	if b < 0 || math.IsNaN(b) || math.IsInf(b, 0) {
		return errors.Errorf("Inverse-gamma rate b_sigma is %v - need a finite value >= 0", b)
	}
	if a > 0 && b == 0 {
		return errors.Errorf("Inverse-gamma rate b_sigma is 0 with shape %v - starting variance would be 0", a)
	}
	return nil
}

func checkScale(name string, v float64) error {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.Errorf("Half-Cauchy scale %s is %v - need a finite value > 0", name, v)
	}
	return nil
}
