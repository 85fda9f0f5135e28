package sampler

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/fastbayes/fastbayes/model"
	"github.com/fastbayes/fastbayes/rand"
)

// NewNormalLinear creates the updater for the Gaussian-prior linear
// model, selecting the exact rotated update when p < n and the
// Bhattacharya identity otherwise.
func NewNormalLinear(gen *rand.Generator, ds *model.Dataset, prior model.NormalPrior) (Updater, error) {
	if err := checkLinearArgs(gen, ds); err != nil {
		return nil, err
	}
	if err := prior.Check(); err != nil {
		return nil, err
	}

	if ds.P() < ds.N() {
		return newNormalLinearBigN(gen, ds, prior)
	}
	return newNormalLinearBigP(gen, ds, prior)
}

func checkLinearArgs(gen *rand.Generator, ds *model.Dataset) error {
	if gen == nil {
		return errors.Errorf("A random generator is required")
	}
	if ds == nil {
		return errors.Errorf("A dataset is required")
	}
	return ds.Check()
}

// initNormalLinear seeds the chain at the prior means: the noise
// variance at BSigma/ASigma and the global shrinkage variance at the
// squared half-Cauchy scale.
func initNormalLinear(s *State, p int, prior model.NormalPrior) {
	a2 := prior.ATau * prior.ATau
	s.Beta = make([]float64, p)
	s.Sigma2 = prior.BSigma / prior.ASigma
	s.Tau2 = a2
	s.BTau = a2
}

// normalLinearBigN updates the Gaussian/Gaussian model in the rotated
// coordinates of the design SVD, where the posterior precision is
// diagonal and the coefficient block is p independent scalar draws.
type normalLinearBigN struct {
	gen   *rand.Generator
	prior model.NormalPrior
	a2    float64
	basis *svdBasis
	p     int
	theta []float64 // rotated coefficients V'beta
}

func newNormalLinearBigN(gen *rand.Generator, ds *model.Dataset, prior model.NormalPrior) (*normalLinearBigN, error) {
	basis, err := newSVDBasis(ds.X, ds.Y)
	if err != nil {
		return nil, err
	}

	p := ds.P()
	return &normalLinearBigN{
		gen:   gen,
		prior: prior,
		a2:    prior.ATau * prior.ATau,
		basis: basis,
		p:     p,
		theta: make([]float64, p),
	}, nil
}

func (u *normalLinearBigN) Init(s *State) error {
	initNormalLinear(s, u.p, u.prior)
	return nil
}

func (u *normalLinearBigN) Update(s *State) error {
	b := u.basis
	invTau2 := 1.0 / s.Tau2

	for j := 0; j < u.p; j++ {
		prec := b.d2[j] + invTau2
		u.theta[j] = b.d[j]*b.ys[j]/prec + u.gen.NormFloat64()*math.Sqrt(s.Sigma2/prec)
	}
	mulVec(s.Beta, b.v, u.theta)

	// Residuals live entirely in the rotated coordinates when p < n:
	// the orthogonal complement of the column space never moves.
	sumTheta2 := floats.Dot(u.theta, u.theta)
	sumEps2 := 0.0
	for j := 0; j < u.p; j++ {
		e := b.ys[j] - b.d[j]*u.theta[j]
		sumEps2 += e * e
	}

	invTau2 = u.gen.Gamma(0.5*(1.0+float64(u.p)), s.BTau+0.5*sumTheta2/s.Sigma2)
	s.Tau2 = 1.0 / invTau2
	s.BTau = u.gen.ExpFloat64() / (1.0/u.a2 + invTau2)

	invSigma2 := u.gen.Gamma(u.prior.ASigma+float64(u.p), u.prior.BSigma+0.5*sumTheta2*invTau2+0.5*sumEps2)
	s.Sigma2 = 1.0 / invSigma2

	return nil
}

// normalLinearBigP draws the coefficient block through the Bhattacharya
// identity: two prior-distributed Gaussian vectors corrected by a
// k-dimensional solve against the diagonal rotated kernel. Exact for
// any shape, linear cost in p.
type normalLinearBigP struct {
	gen     *rand.Generator
	prior   model.NormalPrior
	a2      float64
	basis   *svdBasis
	x       *mat.Dense
	y       []float64
	n, p, k int
	alpha1  []float64 // p: prior draw on the coefficients
	alpha2  []float64 // k: prior draw on the rotated noise
	vta     []float64 // k: V'alpha1
	betaS   []float64 // k: kernel solution
	vbs     []float64 // p: V*betaS
	mu      []float64 // n
}

func newNormalLinearBigP(gen *rand.Generator, ds *model.Dataset, prior model.NormalPrior) (*normalLinearBigP, error) {
	basis, err := newSVDBasis(ds.X, ds.Y)
	if err != nil {
		return nil, err
	}

	n, p := ds.N(), ds.P()
	k := len(basis.d)
	return &normalLinearBigP{
		gen:    gen,
		prior:  prior,
		a2:     prior.ATau * prior.ATau,
		basis:  basis,
		x:      ds.X,
		y:      ds.Y,
		n:      n,
		p:      p,
		k:      k,
		alpha1: make([]float64, p),
		alpha2: make([]float64, k),
		vta:    make([]float64, k),
		betaS:  make([]float64, k),
		vbs:    make([]float64, p),
		mu:     make([]float64, n),
	}, nil
}

func (u *normalLinearBigP) Init(s *State) error {
	initNormalLinear(s, u.p, u.prior)
	return nil
}

func (u *normalLinearBigP) Update(s *State) error {
	b := u.basis
	sigma := math.Sqrt(s.Sigma2)
	sdPrior := sigma * math.Sqrt(s.Tau2)

	u.gen.Norm(u.alpha1)
	for j := range u.alpha1 {
		u.alpha1[j] *= sdPrior
	}
	u.gen.Norm(u.alpha2)
	for i := range u.alpha2 {
		u.alpha2[i] *= sigma
	}

	mulTVec(u.vta, b.v, u.alpha1)
	for i := 0; i < u.k; i++ {
		u.betaS[i] = (b.ys[i] - b.d[i]*u.vta[i] - u.alpha2[i]) * b.d[i] / (1.0 + s.Tau2*b.d2[i])
	}
	mulVec(u.vbs, b.v, u.betaS)
	for j := 0; j < u.p; j++ {
		s.Beta[j] = u.alpha1[j] + s.Tau2*u.vbs[j]
	}

	mulVec(u.mu, u.x, s.Beta)
	sumEps2 := 0.0
	for i, yv := range u.y {
		e := yv - u.mu[i]
		sumEps2 += e * e
	}
	sumBeta2 := floats.Dot(s.Beta, s.Beta)

	invTau2 := u.gen.Gamma(0.5*(1.0+float64(u.p)), s.BTau+0.5*sumBeta2/s.Sigma2)
	s.Tau2 = 1.0 / invTau2
	s.BTau = u.gen.ExpFloat64() / (1.0/u.a2 + invTau2)

	invSigma2 := u.gen.Gamma(u.prior.ASigma+0.5*float64(u.n+u.p), u.prior.BSigma+0.5*sumBeta2*invTau2+0.5*sumEps2)
	s.Sigma2 = 1.0 / invSigma2

	return nil
}
