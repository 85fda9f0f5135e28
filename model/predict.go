package model

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/fastbayes/fastbayes/mathx"
)

// Prediction summarizes the posterior predictive draws for each row of
// a test design matrix. For logistic fits the summaries are over
// probabilities and Class holds the cutoff labels; otherwise Class is
// nil and the summaries are over the linear predictor.
type Prediction struct {
	Mean   []float64
	Median []float64
	Lower  []float64
	Upper  []float64
	SD     []float64
	Class  []int
	Level  float64
}

// PredictLinear multiplies the test design against the stored
// coefficient trace and reduces each row of draws to mean, median,
// central credible bounds at the given level, and standard deviation.
func PredictLinear(fit *Fit, xtest *mat.Dense, level float64) (*Prediction, error) {
	draws, err := predictiveDraws(fit, xtest, level)
	if err != nil {
		return nil, err
	}
	return summarize(draws, level), nil
}

// PredictLogit is PredictLinear with every draw mapped through the
// sigmoid, plus class labels from thresholding the mean probability at
// cutoff.
func PredictLogit(fit *Fit, xtest *mat.Dense, level, cutoff float64) (*Prediction, error) {
	if cutoff <= 0 || cutoff >= 1 || math.IsNaN(cutoff) {
		return nil, errors.Errorf("Probability cutoff is %v - need a value in (0,1)", cutoff)
	}

	draws, err := predictiveDraws(fit, xtest, level)
	if err != nil {
		return nil, err
	}

	raw := draws.RawMatrix()
	for i := range raw.Data {
		raw.Data[i] = mathx.Sigmoid(raw.Data[i])
	}

	pred := summarize(draws, level)
	pred.Class = make([]int, len(pred.Mean))
	for i, m := range pred.Mean {
		if m > cutoff {
			pred.Class[i] = 1
		}
	}
	return pred, nil
}

// predictiveDraws returns the m x M matrix Xtest * Beta'.
func predictiveDraws(fit *Fit, xtest *mat.Dense, level float64) (*mat.Dense, error) {
	if level <= 0 || level >= 1 || math.IsNaN(level) {
		return nil, errors.Errorf("Credible level is %v - need a value in (0,1)", level)
	}
	if err := fit.Trace.Check(); err != nil {
		return nil, errors.Wrapf(err, "Fit %s has an unusable trace", fit.Model)
	}

	m, p := xtest.Dims()
	if p != fit.Trace.P() {
		return nil, errors.Errorf("Test design has %d columns but the fit has %d coefficients", p, fit.Trace.P())
	}
	if m < 1 {
		return nil, errors.Errorf("Test design has no rows")
	}

	var draws mat.Dense
	draws.Mul(xtest, fit.Trace.Beta.T())
	return &draws, nil
}

func summarize(draws *mat.Dense, level float64) *Prediction {
	m, samples := draws.Dims()
	pred := &Prediction{
		Mean:   make([]float64, m),
		Median: make([]float64, m),
		Lower:  make([]float64, m),
		Upper:  make([]float64, m),
		SD:     make([]float64, m),
		Level:  level,
	}

	tail := (1 - level) * 0.5
	sorted := make([]float64, samples)
	for i := 0; i < m; i++ {
		row := draws.RawRowView(i)
		pred.Mean[i] = stat.Mean(row, nil)
		pred.SD[i] = stat.StdDev(row, nil)

		copy(sorted, row)
		sort.Float64s(sorted)
		pred.Lower[i] = stat.Quantile(tail, stat.Empirical, sorted, nil)
		pred.Upper[i] = stat.Quantile(1-tail, stat.Empirical, sorted, nil)
		pred.Median[i] = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	}
	return pred
}
