package model

import (
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Model name constants - one per sampler variant
const (
	NormalLinear    = "normal-lm"
	HorseshoeLinear = "horseshoe-lm"
	HorseshoeHD     = "horseshoe-hd-lm"
	HorseshoeSS     = "horseshoe-ss-lm"
	NormalLogit     = "normal-logit"
	HorseshoeLogit  = "horseshoe-logit"
)

// PostMean is the posterior-mean summary of a fit. Lambda is only set
// for horseshoe variants, Sigma2 only for linear variants, and Prob
// only for logistic variants.
type PostMean struct {
	Mu     []float64
	Beta   []float64
	Lambda []float64
	Prob   []float64
	Sigma2 float64
	Tau2   float64
}

// Trace holds the kept MCMC draws: one row per kept sweep. Lambda is
// only set for horseshoe variants and Sigma2 only for linear variants.
type Trace struct {
	Beta   *mat.Dense // M x p
	Lambda *mat.Dense // M x p, horseshoe only
	Sigma2 []float64  // length M, linear only
	Tau2   []float64  // length M
}

// Samples returns the number of kept draws in the trace.
func (tr *Trace) Samples() int {
	m, _ := tr.Beta.Dims()
	return m
}

// P returns the coefficient count of the trace.
func (tr *Trace) P() int {
	_, p := tr.Beta.Dims()
	return p
}

// Check returns an error if the trace components disagree on shape
func (tr *Trace) Check() error {
	if tr.Beta == nil {
		return errors.Errorf("Trace has no coefficient draws")
	}
	m, p := tr.Beta.Dims()
	if len(tr.Tau2) != m {
		return errors.Errorf("Trace tau2 length %d != sample count %d", len(tr.Tau2), m)
	}
	if tr.Sigma2 != nil && len(tr.Sigma2) != m {
		return errors.Errorf("Trace sigma2 length %d != sample count %d", len(tr.Sigma2), m)
	}
	if tr.Lambda != nil {
		lm, lp := tr.Lambda.Dims()
		if lm != m || lp != p {
			return errors.Errorf("Trace lambda shape %dx%d != %dx%d", lm, lp, m, p)
		}
	}
	return nil
}

// Fit is the complete result of one MCMC run.
type Fit struct {
	Model    string
	Logit    bool
	PostMean PostMean
	Trace    Trace
	Elapsed  time.Duration
}
