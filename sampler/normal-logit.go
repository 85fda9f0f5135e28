package sampler

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/fastbayes/fastbayes/model"
	"github.com/fastbayes/fastbayes/pg"
	"github.com/fastbayes/fastbayes/rand"
)

// NewNormalLogit creates the updater for the Gaussian-prior logistic
// model under Polya-Gamma augmentation: the direct p x p conditional
// when p < n and the Woodbury draw against an n x n kernel otherwise.
// pgs supplies the PG(1, c) draws; nil selects the exact Devroye
// sampler.
func NewNormalLogit(gen *rand.Generator, ds *model.Dataset, prior model.LogitPrior, pgs PolyaGamma) (Updater, error) {
	if err := checkLogitArgs(gen, ds); err != nil {
		return nil, err
	}
	if err := prior.Check(); err != nil {
		return nil, err
	}
	if pgs == nil {
		pgs = pg.NewSampler(gen)
	}

	if ds.P() < ds.N() {
		return newNormalLogitBigN(gen, ds, prior, pgs), nil
	}
	return newNormalLogitBigP(gen, ds, prior, pgs), nil
}

func checkLogitArgs(gen *rand.Generator, ds *model.Dataset) error {
	if err := checkLinearArgs(gen, ds); err != nil {
		return err
	}
	return ds.CheckBinary()
}

// recenter maps the 0/1 outcome to the -1/2, +1/2 coding the
// Polya-Gamma working response is built from.
func recenter(y []float64) []float64 {
	ys := make([]float64, len(y))
	for i, v := range y {
		ys[i] = v - 0.5
	}
	return ys
}

// initLogit seeds the augmented state: coefficients at zero and the
// latent scales drawn at a zero linear predictor.
func initLogit(s *State, pgs PolyaGamma, n, p int) {
	s.Beta = make([]float64, p)
	s.Mu = make([]float64, n)
	s.Omega = make([]float64, n)
	pgs.DrawVec(s.Omega, s.Mu)
}

// normalLogitBigN draws the coefficient block from its exact Gaussian
// conditional given the latent scales: precision X'diag(omega)X +
// I/tau2, rebuilt every sweep because omega moves. The right-hand side
// X'(y - 1/2) never changes and is computed once.
type normalLogitBigN struct {
	gen       *rand.Generator
	pgs       PolyaGamma
	prior     model.LogitPrior
	a2        float64
	x         *mat.Dense
	xtys      []float64 // X'(y - 1/2), fixed across sweeps
	n, p      int
	sqrtOmega []float64
	scaled    *mat.Dense // diag(sqrt(omega))*X
	prec      *mat.SymDense
	draw      *gaussDraw
}

func newNormalLogitBigN(gen *rand.Generator, ds *model.Dataset, prior model.LogitPrior, pgs PolyaGamma) *normalLogitBigN {
	n, p := ds.N(), ds.P()
	xtys := make([]float64, p)
	mulTVec(xtys, ds.X, recenter(ds.Y))

	return &normalLogitBigN{
		gen:       gen,
		pgs:       pgs,
		prior:     prior,
		a2:        prior.ATau * prior.ATau,
		x:         ds.X,
		xtys:      xtys,
		n:         n,
		p:         p,
		sqrtOmega: make([]float64, n),
		scaled:    mat.NewDense(n, p, nil),
		prec:      mat.NewSymDense(p, nil),
		draw:      newGaussDraw(p),
	}
}

func (u *normalLogitBigN) Init(s *State) error {
	initLogit(s, u.pgs, u.n, u.p)
	s.Tau2 = u.a2
	s.BTau = u.a2
	return nil
}

func (u *normalLogitBigN) Update(s *State) error {
	invTau2 := 1.0 / s.Tau2

	for i, w := range s.Omega {
		u.sqrtOmega[i] = math.Sqrt(w)
	}
	rowScale(u.scaled, u.x, u.sqrtOmega)
	u.prec.SymOuterK(1, u.scaled.T())
	for j := 0; j < u.p; j++ {
		u.prec.SetSym(j, j, u.prec.At(j, j)+invTau2)
	}

	if err := u.draw.sample(u.gen, u.prec, u.xtys, s.Beta, 1); err != nil {
		return err
	}

	mulVec(s.Mu, u.x, s.Beta)
	u.pgs.DrawVec(s.Omega, s.Mu)

	sumBeta2 := floats.Dot(s.Beta, s.Beta)
	invTau2 = u.gen.Gamma(0.5*(1.0+float64(u.p)), s.BTau+0.5*sumBeta2)
	s.Tau2 = 1.0 / invTau2
	s.BTau = u.gen.ExpFloat64() / (1.0/u.a2 + invTau2)

	return nil
}

// normalLogitBigP draws the coefficient block through the Woodbury
// identity on the n x n kernel tau2*XX' + diag(1/omega). XX' is fixed
// across sweeps; only the diagonal and the prior scale move.
type normalLogitBigP struct {
	gen      *rand.Generator
	pgs      PolyaGamma
	prior    model.LogitPrior
	a2       float64
	x        *mat.Dense
	ys       []float64
	xxt      *mat.SymDense // XX', fixed across sweeps
	n, p     int
	invOmega []float64
	kern     *mat.SymDense
	chol     mat.Cholesky
	alpha1   []float64 // p: prior draw on the coefficients
	rhs      []float64 // n
	betaS    []float64 // n
	xtbs     []float64 // p: X'betaS
}

func newNormalLogitBigP(gen *rand.Generator, ds *model.Dataset, prior model.LogitPrior, pgs PolyaGamma) *normalLogitBigP {
	n, p := ds.N(), ds.P()
	xxt := mat.NewSymDense(n, nil)
	xxt.SymOuterK(1, ds.X)

	return &normalLogitBigP{
		gen:      gen,
		pgs:      pgs,
		prior:    prior,
		a2:       prior.ATau * prior.ATau,
		x:        ds.X,
		ys:       recenter(ds.Y),
		xxt:      xxt,
		n:        n,
		p:        p,
		invOmega: make([]float64, n),
		kern:     mat.NewSymDense(n, nil),
		alpha1:   make([]float64, p),
		rhs:      make([]float64, n),
		betaS:    make([]float64, n),
		xtbs:     make([]float64, p),
	}
}

func (u *normalLogitBigP) Init(s *State) error {
	initLogit(s, u.pgs, u.n, u.p)
	s.Tau2 = u.a2
	s.BTau = u.a2
	return nil
}

func (u *normalLogitBigP) Update(s *State) error {
	sdTau := math.Sqrt(s.Tau2)

	u.gen.Norm(u.alpha1)
	for j := range u.alpha1 {
		u.alpha1[j] *= sdTau
	}
	for i, w := range s.Omega {
		u.invOmega[i] = 1.0 / w
	}

	u.kern.ScaleSym(s.Tau2, u.xxt)
	for i := 0; i < u.n; i++ {
		u.kern.SetSym(i, i, u.kern.At(i, i)+u.invOmega[i])
	}

	// Working response (y - 1/2)/omega against the prior draws.
	mulVec(u.rhs, u.x, u.alpha1)
	for i := 0; i < u.n; i++ {
		u.rhs[i] = u.ys[i]*u.invOmega[i] - u.rhs[i] - u.gen.NormFloat64()*math.Sqrt(u.invOmega[i])
	}
	if err := solveSPD(&u.chol, u.kern, u.rhs, u.betaS); err != nil {
		return err
	}
	mulTVec(u.xtbs, u.x, u.betaS)
	for j := 0; j < u.p; j++ {
		s.Beta[j] = u.alpha1[j] + s.Tau2*u.xtbs[j]
	}

	mulVec(s.Mu, u.x, s.Beta)
	u.pgs.DrawVec(s.Omega, s.Mu)

	sumBeta2 := floats.Dot(s.Beta, s.Beta)
	invTau2 := u.gen.Gamma(0.5*(1.0+float64(u.p)), s.BTau+0.5*sumBeta2)
	s.Tau2 = 1.0 / invTau2
	s.BTau = u.gen.ExpFloat64() / (1.0/u.a2 + invTau2)

	return nil
}
