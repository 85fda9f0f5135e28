package sampler

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/fastbayes/fastbayes/model"
	"github.com/fastbayes/fastbayes/pg"
	"github.com/fastbayes/fastbayes/rand"
)

// NewHorseshoeLogit creates the updater for the horseshoe logistic
// model under Polya-Gamma augmentation: the direct p x p conditional
// when p < n and the Woodbury draw against the rescaled n x n kernel
// otherwise. pgs supplies the PG(1, c) draws; nil selects the exact
// Devroye sampler.
func NewHorseshoeLogit(gen *rand.Generator, ds *model.Dataset, prior model.HorseshoeLogitPrior, pgs PolyaGamma) (Updater, error) {
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
		return newHorseshoeLogitBigN(gen, ds, prior, pgs), nil
	}
	return newHorseshoeLogitBigP(gen, ds, prior, pgs), nil
}

// initHorseshoeLogit layers unit local scales over the augmented
// state. High-dimensional fits start at the heavily shrunk tau2 = 1/p,
// otherwise the global variance starts at the squared half-Cauchy
// scale.
func initHorseshoeLogit(s *State, pgs PolyaGamma, n, p int, prior model.HorseshoeLogitPrior, hd bool) {
	initLogit(s, pgs, n, p)
	s.Lambda = make([]float64, p)
	s.BLambda = make([]float64, p)
	for j := range s.Lambda {
		s.Lambda[j] = 1
		s.BLambda[j] = 1
	}
	a2 := prior.ATau * prior.ATau
	s.Tau2 = a2
	if hd {
		s.Tau2 = 1.0 / float64(p)
	}
	s.BTau = a2
}

// horseshoeLogitBigN draws the coefficient block from its exact
// conditional with precision X'diag(omega)X + diag(1/(tau2*lambda^2)),
// rebuilt every sweep because both the latent and the shrinkage scales
// move.
type horseshoeLogitBigN struct {
	gen        *rand.Generator
	pgs        PolyaGamma
	prior      model.HorseshoeLogitPrior
	a2Tau      float64
	a2Lambda   float64
	x          *mat.Dense
	xtys       []float64 // X'(y - 1/2), fixed across sweeps
	n, p       int
	sqrtOmega  []float64
	scaled     *mat.Dense // diag(sqrt(omega))*X
	prec       *mat.SymDense
	draw       *gaussDraw
	invLambda2 []float64
}

func newHorseshoeLogitBigN(gen *rand.Generator, ds *model.Dataset, prior model.HorseshoeLogitPrior, pgs PolyaGamma) *horseshoeLogitBigN {
	n, p := ds.N(), ds.P()
	xtys := make([]float64, p)
	mulTVec(xtys, ds.X, recenter(ds.Y))

	return &horseshoeLogitBigN{
		gen:        gen,
		pgs:        pgs,
		prior:      prior,
		a2Tau:      prior.ATau * prior.ATau,
		a2Lambda:   prior.ALambda * prior.ALambda,
		x:          ds.X,
		xtys:       xtys,
		n:          n,
		p:          p,
		sqrtOmega:  make([]float64, n),
		scaled:     mat.NewDense(n, p, nil),
		prec:       mat.NewSymDense(p, nil),
		draw:       newGaussDraw(p),
		invLambda2: make([]float64, p),
	}
}

func (u *horseshoeLogitBigN) Init(s *State) error {
	initHorseshoeLogit(s, u.pgs, u.n, u.p, u.prior, false)
	return nil
}

func (u *horseshoeLogitBigN) Update(s *State) error {
	invTau2 := 1.0 / s.Tau2
	for j, l := range s.Lambda {
		u.invLambda2[j] = 1.0 / (l * l)
	}

	for i, w := range s.Omega {
		u.sqrtOmega[i] = math.Sqrt(w)
	}
	rowScale(u.scaled, u.x, u.sqrtOmega)
	u.prec.SymOuterK(1, u.scaled.T())
	for j := 0; j < u.p; j++ {
		u.prec.SetSym(j, j, u.prec.At(j, j)+invTau2*u.invLambda2[j])
	}

	if err := u.draw.sample(u.gen, u.prec, u.xtys, s.Beta, 1); err != nil {
		return err
	}

	mulVec(s.Mu, u.x, s.Beta)
	u.pgs.DrawVec(s.Omega, s.Mu)

	// The local scales entering the tau2 rate are the pre-update ones;
	// the fresh tau2 then feeds the lambda block.
	sumBL := 0.0
	for j, bj := range s.Beta {
		sumBL += bj * bj * u.invLambda2[j]
	}
	invTau2 = u.gen.Gamma(0.5*(1.0+float64(u.p)), s.BTau+0.5*sumBL)
	s.Tau2 = 1.0 / invTau2
	s.BTau = u.gen.ExpFloat64() / (1.0/u.a2Tau + invTau2)

	for j, bj := range s.Beta {
		inv := u.gen.ExpFloat64() / (s.BLambda[j] + 0.5*bj*bj*invTau2)
		s.BLambda[j] = u.gen.ExpFloat64() / (1.0/u.a2Lambda + inv)
		s.Lambda[j] = 1.0 / math.Sqrt(inv)
	}

	return nil
}

// horseshoeLogitBigP draws the coefficient block through the Woodbury
// identity on the kernel XL(XL)' + diag(1/omega)/tau2 with
// XL = X*diag(lambda), re-formed every sweep because the local scales
// move.
type horseshoeLogitBigP struct {
	gen        *rand.Generator
	pgs        PolyaGamma
	prior      model.HorseshoeLogitPrior
	a2Tau      float64
	a2Lambda   float64
	x          *mat.Dense
	ys         []float64
	n, p       int
	invOmega   []float64
	xlam       *mat.Dense // X*diag(lambda)
	kern       *mat.SymDense
	chol       mat.Cholesky
	alpha1     []float64 // p: prior draw on the coefficients
	rhs        []float64 // n
	betaS      []float64 // n
	xltbs      []float64 // p: (XL)'betaS
	invLambda2 []float64
}

func newHorseshoeLogitBigP(gen *rand.Generator, ds *model.Dataset, prior model.HorseshoeLogitPrior, pgs PolyaGamma) *horseshoeLogitBigP {
	n, p := ds.N(), ds.P()

	return &horseshoeLogitBigP{
		gen:        gen,
		pgs:        pgs,
		prior:      prior,
		a2Tau:      prior.ATau * prior.ATau,
		a2Lambda:   prior.ALambda * prior.ALambda,
		x:          ds.X,
		ys:         recenter(ds.Y),
		n:          n,
		p:          p,
		invOmega:   make([]float64, n),
		xlam:       mat.NewDense(n, p, nil),
		kern:       mat.NewSymDense(n, nil),
		alpha1:     make([]float64, p),
		rhs:        make([]float64, n),
		betaS:      make([]float64, n),
		xltbs:      make([]float64, p),
		invLambda2: make([]float64, p),
	}
}

func (u *horseshoeLogitBigP) Init(s *State) error {
	initHorseshoeLogit(s, u.pgs, u.n, u.p, u.prior, true)
	return nil
}

func (u *horseshoeLogitBigP) Update(s *State) error {
	sdTau := math.Sqrt(s.Tau2)
	invTau2 := 1.0 / s.Tau2

	u.gen.Norm(u.alpha1)
	for j := range u.alpha1 {
		u.alpha1[j] *= s.Lambda[j] * sdTau
	}
	for i, w := range s.Omega {
		u.invOmega[i] = 1.0 / w
	}

	// Kernel XL(XL)' + diag(1/omega)/tau2, shared scale tau2 divided
	// out of both sides.
	colScale(u.xlam, u.x, s.Lambda)
	u.kern.SymOuterK(1, u.xlam)
	for i := 0; i < u.n; i++ {
		u.kern.SetSym(i, i, u.kern.At(i, i)+u.invOmega[i]*invTau2)
	}

	mulVec(u.rhs, u.x, u.alpha1)
	for i := 0; i < u.n; i++ {
		u.rhs[i] = u.ys[i]*u.invOmega[i] - u.rhs[i] - u.gen.NormFloat64()*math.Sqrt(u.invOmega[i])
	}
	if err := solveSPD(&u.chol, u.kern, u.rhs, u.betaS); err != nil {
		return err
	}
	mulTVec(u.xltbs, u.xlam, u.betaS)
	for j := 0; j < u.p; j++ {
		s.Beta[j] = u.alpha1[j] + s.Lambda[j]*u.xltbs[j]
	}

	mulVec(s.Mu, u.x, s.Beta)
	u.pgs.DrawVec(s.Omega, s.Mu)

	for j, l := range s.Lambda {
		u.invLambda2[j] = 1.0 / (l * l)
	}
	sumBL := 0.0
	for j, bj := range s.Beta {
		sumBL += bj * bj * u.invLambda2[j]
	}
	invTau2 = u.gen.Gamma(0.5*(1.0+float64(u.p)), s.BTau+0.5*sumBL)
	s.Tau2 = 1.0 / invTau2
	s.BTau = u.gen.ExpFloat64() / (1.0/u.a2Tau + invTau2)

	for j, bj := range s.Beta {
		inv := u.gen.ExpFloat64() / (s.BLambda[j] + 0.5*bj*bj*invTau2)
		s.BLambda[j] = u.gen.ExpFloat64() / (1.0/u.a2Lambda + inv)
		s.Lambda[j] = 1.0 / math.Sqrt(inv)
	}

	return nil
}
