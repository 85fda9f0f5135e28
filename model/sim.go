package model

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/fastbayes/fastbayes/mathx"
	"github.com/fastbayes/fastbayes/rand"
)

// SimTruth carries the generating parameters behind a simulated
// dataset, for scoring fits against the ground truth.
type SimTruth struct {
	Beta   []float64 // true coefficients, length p (zero off the support)
	R2     float64
	Sigma2 float64   // linear only: noise variance implied by the target R2
	Prob   []float64 // logit only: true success probabilities
}

// SimLinear simulates a sparse linear regression problem: an
// equicorrelated Gaussian design (pairwise correlation cor via a shared
// factor), alternating +/-betaSize coefficients on the first q columns,
// and Gaussian noise sized so the predictors explain an r2 share of the
// outcome variance.
func SimLinear(gen *rand.Generator, n, p, q int, r2, cor, betaSize float64) (*Dataset, *SimTruth, error) {
	if err := checkSimArgs(n, p, q, cor, betaSize); err != nil {
		return nil, nil, err
	}
	if r2 <= 0 || r2 >= 1 || math.IsNaN(r2) {
		return nil, nil, errors.Errorf("Target R2 is %v - need a value in (0,1)", r2)
	}

	x := simDesign(gen, n, p, cor)
	beta := alternatingBeta(p, q, betaSize)
	mu := partialProduct(x, beta, q)

	varY := stat.Variance(mu, nil)
	sigma2 := varY * (1 - r2) / r2
	sd := math.Sqrt(sigma2)

	y := make([]float64, n)
	for i := range y {
		y[i] = mu[i] + sd*gen.NormFloat64()
	}

	ds := &Dataset{Y: y, X: x}
	truth := &SimTruth{Beta: beta, R2: r2, Sigma2: sigma2}
	return ds, truth, nil
}

// SimLogit simulates a sparse logistic regression problem on the same
// equicorrelated design, scaled to per-column variance xVar. The
// returned truth reports the realized R2, var(prob)/var(y), which is 0
// when the outcome is constant.
func SimLogit(gen *rand.Generator, n, p, q int, cor, xVar, betaSize float64) (*Dataset, *SimTruth, error) {
	if err := checkSimArgs(n, p, q, cor, betaSize); err != nil {
		return nil, nil, err
	}
	if xVar <= 0 || math.IsNaN(xVar) {
		return nil, nil, errors.Errorf("Design variance X_var is %v - need a value > 0", xVar)
	}

	x := simDesign(gen, n, p, cor)
	x.Scale(math.Sqrt(xVar), x)
	beta := alternatingBeta(p, q, betaSize)
	mu := partialProduct(x, beta, q)

	prob := make([]float64, n)
	y := make([]float64, n)
	for i := range prob {
		prob[i] = mathx.Sigmoid(mu[i])
		if gen.Float64() < prob[i] {
			y[i] = 1
		}
	}

	r2 := 0.0
	if varY := stat.Variance(y, nil); varY > 0 {
		r2 = stat.Variance(prob, nil) / varY
	}

	ds := &Dataset{Y: y, X: x}
	truth := &SimTruth{Beta: beta, R2: r2, Prob: prob}
	return ds, truth, nil
}

func checkSimArgs(n, p, q int, cor, betaSize float64) error {
	if n < 2 {
		return errors.Errorf("Sample size is %d - need at least 2", n)
	}
	if p < 1 {
		return errors.Errorf("Predictor count is %d - need at least 1", p)
	}
	if q < 1 || q > p {
		return errors.Errorf("Support size is %d - need a value in [1, %d]", q, p)
	}
	if cor < 0 || cor >= 1 || math.IsNaN(cor) {
		return errors.Errorf("Design correlation is %v - need a value in [0,1)", cor)
	}
	if betaSize <= 0 || math.IsNaN(betaSize) {
		return errors.Errorf("Effect size is %v - need a value > 0", betaSize)
	}
	return nil
}

// simDesign fills an n x p matrix with sqrt(1-cor)*N(0,1) entries and
// adds a shared sqrt(cor)*N(0,1) factor to every column of a row, which
// makes every pair of columns correlate at cor.
func simDesign(gen *rand.Generator, n, p int, cor float64) *mat.Dense {
	data := make([]float64, n*p)
	gen.Norm(data)

	z := make([]float64, n)
	gen.Norm(z)

	w := math.Sqrt(1 - cor)
	f := math.Sqrt(cor)
	for i := 0; i < n; i++ {
		zi := f * z[i]
		row := data[i*p : (i+1)*p]
		for j := range row {
			row[j] = w*row[j] + zi
		}
	}
	return mat.NewDense(n, p, data)
}

// alternatingBeta places +size, -size, +size, ... on the first q
// coordinates and zero elsewhere.
func alternatingBeta(p, q int, size float64) []float64 {
	beta := make([]float64, p)
	for j := 0; j < q; j++ {
		if j%2 == 0 {
			beta[j] = size
		} else {
			beta[j] = -size
		}
	}
	return beta
}

// partialProduct returns X[:, :q] * beta[:q].
func partialProduct(x *mat.Dense, beta []float64, q int) []float64 {
	n, _ := x.Dims()
	mu := make([]float64, n)
	for i := 0; i < n; i++ {
		row := x.RawRowView(i)
		s := 0.0
		for j := 0; j < q; j++ {
			s += row[j] * beta[j]
		}
		mu[i] = s
	}
	return mu
}
