package sampler

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/fastbayes/fastbayes/buffer"
	"github.com/fastbayes/fastbayes/mathx"
	"github.com/fastbayes/fastbayes/model"
)

// DefaultConvergenceWindow is the chain-history window the Fit helpers
// use for the split-half stationarity check.
const DefaultConvergenceWindow = 100

// Chain provides the run machinery around an Updater: state
// initialization and burn-in at construction, then thinned sweeps
// recorded into a preallocated trace. A chain binds exactly one
// updater and owns the parameter state for the whole run.
type Chain struct {
	Updater Updater
	State   *State
	Ctl     model.Control

	// Split-half history for the scalar parameters. Sigma2History is
	// nil for logistic chains, which carry no observation variance.
	Tau2History   *buffer.CircularFloat
	Sigma2History *buffer.CircularFloat

	// TotalSweeps counts every Gibbs sweep taken, burn-in included.
	TotalSweeps int64

	kept   int
	beta   *mat.Dense
	lambda *mat.Dense
	sigma2 []float64
	tau2   []float64
}

// NewChain binds an updater, seeds its state, and runs the burn-in
// sweeps. cw is the window size for the split-half history.
func NewChain(upd Updater, ctl model.Control, cw int) (*Chain, error) {
	if upd == nil {
		return nil, errors.Errorf("An update strategy is required")
	}
	if err := ctl.Check(); err != nil {
		return nil, err
	}
	if cw < 2 {
		return nil, errors.Errorf("Convergence window is %d - need at least 2", cw)
	}

	s := &State{}
	if err := upd.Init(s); err != nil {
		return nil, errors.Wrap(err, "Could not initialize sampler state")
	}

	p := len(s.Beta)
	c := &Chain{
		Updater:     upd,
		State:       s,
		Ctl:         ctl,
		Tau2History: buffer.NewCircularFloat(cw),
		beta:        mat.NewDense(ctl.Samples, p, nil),
		tau2:        make([]float64, ctl.Samples),
	}
	if s.Lambda != nil {
		c.lambda = mat.NewDense(ctl.Samples, p, nil)
	}
	if s.Sigma2 > 0 {
		c.sigma2 = make([]float64, ctl.Samples)
		c.Sigma2History = buffer.NewCircularFloat(cw)
	}

	for i := 0; i < ctl.Burnin; i++ {
		if err := upd.Update(s); err != nil {
			return nil, errors.Wrap(err, "Failure during chain burn in")
		}
		c.TotalSweeps++
	}

	return c, nil
}

// Kept returns the number of samples recorded so far.
func (c *Chain) Kept() int {
	return c.kept
}

// Done is true once every requested sample has been recorded.
func (c *Chain) Done() bool {
	return c.kept >= c.Ctl.Samples
}

// Step performs one outer sweep: Thinning update calls, then records
// the resulting state as one kept sample.
func (c *Chain) Step() error {
	if c.Done() {
		return errors.Errorf("Chain already holds all %d samples", c.Ctl.Samples)
	}

	for t := 0; t < c.Ctl.Thinning; t++ {
		if err := c.Updater.Update(c.State); err != nil {
			return errors.Wrapf(err, "Failure on sweep %d", c.TotalSweeps)
		}
		c.TotalSweeps++
	}

	s := c.State
	c.beta.SetRow(c.kept, s.Beta)
	c.tau2[c.kept] = s.Tau2
	c.Tau2History.Add(s.Tau2)
	if c.lambda != nil {
		c.lambda.SetRow(c.kept, s.Lambda)
	}
	if c.sigma2 != nil {
		c.sigma2[c.kept] = s.Sigma2
		c.Sigma2History.Add(s.Sigma2)
	}
	c.kept++

	return nil
}

// Run steps the chain to completion.
func (c *Chain) Run() error {
	for !c.Done() {
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Trace returns the recorded draws. Rows past Kept are still zero on a
// chain that has not finished.
func (c *Chain) Trace() model.Trace {
	return model.Trace{Beta: c.beta, Lambda: c.lambda, Sigma2: c.sigma2, Tau2: c.tau2}
}

// Fit reduces a finished chain to its posterior-mean summary and
// packages it with the full trace. The linear predictor is recomputed
// at the posterior-mean coefficients; logistic chains also report the
// sigmoid probabilities. elapsed is the caller's wall clock for the
// whole run, factorization setup included.
func (c *Chain) Fit(name string, ds *model.Dataset, elapsed time.Duration) (*model.Fit, error) {
	if !c.Done() {
		return nil, errors.Errorf("Chain has %d of %d samples - cannot summarize", c.kept, c.Ctl.Samples)
	}
	p := len(c.State.Beta)
	if ds.P() != p {
		return nil, errors.Errorf("Dataset has %d predictors but the chain sampled %d coefficients", ds.P(), p)
	}

	pm := model.PostMean{
		Beta: colMeans(c.beta),
		Tau2: stat.Mean(c.tau2, nil),
	}
	if c.lambda != nil {
		pm.Lambda = colMeans(c.lambda)
	}
	if c.sigma2 != nil {
		pm.Sigma2 = stat.Mean(c.sigma2, nil)
	}

	pm.Mu = make([]float64, ds.N())
	mulVec(pm.Mu, ds.X, pm.Beta)

	logit := c.State.Omega != nil
	if logit {
		pm.Prob = make([]float64, len(pm.Mu))
		for i, v := range pm.Mu {
			pm.Prob[i] = mathx.Sigmoid(v)
		}
	}

	return &model.Fit{
		Model:    name,
		Logit:    logit,
		PostMean: pm,
		Trace:    c.Trace(),
		Elapsed:  elapsed,
	}, nil
}

func colMeans(d *mat.Dense) []float64 {
	m, p := d.Dims()
	out := make([]float64, p)
	for i := 0; i < m; i++ {
		floats.Add(out, d.RawRowView(i))
	}
	floats.Scale(1.0/float64(m), out)
	return out
}

// SplitCheck is the split-half stationarity score over a chain history
// buffer: the absolute difference between the first- and second-half
// means, scaled by the pooled standard deviation. Scores staying below
// a small multiple of one suggest the window looks stationary. The
// bool is false until the buffer has filled once.
func SplitCheck(h *buffer.CircularFloat) (float64, bool) {
	if h == nil || !h.Full() {
		return 0, false
	}

	half := h.BufSize / 2
	a := make([]float64, 0, half)
	for it := h.FirstHalf(); it.Next(); {
		a = append(a, it.Value())
	}
	b := make([]float64, 0, half)
	for it := h.SecondHalf(); it.Next(); {
		b = append(b, it.Value())
	}

	meanA, meanB := stat.Mean(a, nil), stat.Mean(b, nil)
	sd := math.Sqrt(0.5 * (stat.Variance(a, nil) + stat.Variance(b, nil)))
	if sd == 0 {
		if meanA == meanB {
			return 0, true
		}
		return math.Inf(1), true
	}
	return math.Abs(meanA-meanB) / sd, true
}
