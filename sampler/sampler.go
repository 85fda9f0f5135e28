// Package sampler implements the Gibbs samplers behind every fastbayes
// model family: Gaussian and horseshoe priors over linear and logistic
// likelihoods. Each family is driven by an Updater that performs one
// full conditional sweep, with the n-vs-p update strategy fixed once at
// construction, and a Chain that handles burn-in, thinning, and trace
// recording around it.
package sampler

// State is the full set of sampled parameters a Gibbs sweep mutates.
// Slice fields a model family does not use stay nil (Lambda for
// Gaussian priors, Omega and Mu for linear likelihoods), and Sigma2
// stays zero for logistic models, which have no observation variance.
type State struct {
	Beta    []float64 // regression coefficients
	Lambda  []float64 // horseshoe local shrinkage scales
	BLambda []float64 // rate hyperparameters paired with Lambda
	Omega   []float64 // Polya-Gamma latent scales, logistic only
	Mu      []float64 // linear predictor at the current Beta, logistic only
	Sigma2  float64   // observation variance, linear only
	Tau2    float64   // global shrinkage variance
	BTau    float64   // rate hyperparameter paired with Tau2
}

// An Updater is one conditional-update strategy: Init seeds the state
// for its model family and Update performs a full Gibbs sweep in place.
// The concrete strategy, and with it the n-vs-p regime, is chosen at
// construction and never re-examined during a run.
type Updater interface {
	Init(s *State) error
	Update(s *State) error
}

// PolyaGamma is the PG(1, c) draw capability the logistic updaters
// consume. *pg.Sampler satisfies it.
type PolyaGamma interface {
	Draw(c float64) float64
	DrawVec(dst, c []float64)
}
