package sampler

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/fastbayes/fastbayes/model"
	"github.com/fastbayes/fastbayes/rand"
)

// NewHorseshoeLinear creates the updater for the horseshoe linear
// model: the exact SVD-rotated update when p < n, and the Bhattacharya
// draw against the SVD-compressed kernel otherwise.
func NewHorseshoeLinear(gen *rand.Generator, ds *model.Dataset, prior model.HorseshoePrior) (Updater, error) {
	if err := checkLinearArgs(gen, ds); err != nil {
		return nil, err
	}
	if err := prior.Check(); err != nil {
		return nil, err
	}

	if ds.P() < ds.N() {
		return newHorseshoeBigN(gen, ds, prior)
	}
	return newHorseshoeBigP(gen, ds, prior)
}

// initHorseshoeLinear seeds the chain with unit local scales and a
// global variance of 1/p, so high-dimensional fits start heavily
// shrunk. The noise variance starts at the inverse-gamma prior mean
// when the prior is proper and at one for the flat default.
func initHorseshoeLinear(s *State, p int, prior model.HorseshoePrior) {
	s.Beta = make([]float64, p)
	s.Lambda = make([]float64, p)
	s.BLambda = make([]float64, p)
	for j := range s.Lambda {
		s.Lambda[j] = 1
		s.BLambda[j] = 1
	}
	s.Sigma2 = 1
	if prior.ASigma != 0 {
		s.Sigma2 = prior.BSigma / prior.ASigma
	}
	s.Tau2 = 1.0 / float64(p)
	s.BTau = 1
}

// horseshoeBigN runs the exact rotated update: the coefficient block is
// drawn from its full conditional in the SVD basis, where the prior
// precision contributes V'(diag(lambda*tau))^-2 V and the likelihood a
// diagonal d^2 term.
type horseshoeBigN struct {
	gen        *rand.Generator
	prior      model.HorseshoePrior
	a2Tau      float64
	a2Lambda   float64
	basis      *svdBasis
	x          *mat.Dense
	y          []float64
	n, p       int
	dys        []float64  // d o U'y
	scaled     *mat.Dense // V with row i divided by lambda_i*tau
	prec       *mat.SymDense
	draw       *gaussDraw
	theta      []float64
	invLambda2 []float64
	mu         []float64
}

func newHorseshoeBigN(gen *rand.Generator, ds *model.Dataset, prior model.HorseshoePrior) (*horseshoeBigN, error) {
	basis, err := newSVDBasis(ds.X, ds.Y)
	if err != nil {
		return nil, err
	}

	n, p := ds.N(), ds.P()
	dys := make([]float64, p)
	for j := range dys {
		dys[j] = basis.d[j] * basis.ys[j]
	}

	return &horseshoeBigN{
		gen:        gen,
		prior:      prior,
		a2Tau:      prior.ATau * prior.ATau,
		a2Lambda:   prior.ALambda * prior.ALambda,
		basis:      basis,
		x:          ds.X,
		y:          ds.Y,
		n:          n,
		p:          p,
		dys:        dys,
		scaled:     mat.NewDense(p, p, nil),
		prec:       mat.NewSymDense(p, nil),
		draw:       newGaussDraw(p),
		theta:      make([]float64, p),
		invLambda2: make([]float64, p),
		mu:         make([]float64, n),
	}, nil
}

func (u *horseshoeBigN) Init(s *State) error {
	initHorseshoeLinear(s, u.p, u.prior)
	return nil
}

func (u *horseshoeBigN) Update(s *State) error {
	b := u.basis
	sigma := math.Sqrt(s.Sigma2)
	tau := math.Sqrt(s.Tau2)

	// Rotated precision: V'(diag(lambda*tau))^-2 V + diag(d^2).
	for i := 0; i < u.p; i++ {
		row := b.v.RawRowView(i)
		out := u.scaled.RawRowView(i)
		f := 1.0 / (s.Lambda[i] * tau)
		for j := 0; j < u.p; j++ {
			out[j] = row[j] * f
		}
	}
	u.prec.SymOuterK(1, u.scaled.T())
	for j := 0; j < u.p; j++ {
		u.prec.SetSym(j, j, u.prec.At(j, j)+b.d2[j])
	}

	if err := u.draw.sample(u.gen, u.prec, u.dys, u.theta, sigma); err != nil {
		return err
	}
	mulVec(s.Beta, b.v, u.theta)

	tau2Sigma2 := s.Tau2 * s.Sigma2
	for j := 0; j < u.p; j++ {
		bj := s.Beta[j]
		inv := u.gen.ExpFloat64() / (s.BLambda[j] + 0.5*bj*bj/tau2Sigma2)
		s.Lambda[j] = 1.0 / math.Sqrt(inv)
		s.BLambda[j] = u.gen.ExpFloat64() / (1.0/u.a2Lambda + inv)
		u.invLambda2[j] = inv
	}

	mulVec(u.mu, u.x, s.Beta)
	sumEps2 := 0.0
	for i, yv := range u.y {
		e := yv - u.mu[i]
		sumEps2 += e * e
	}
	sumBL := 0.0
	for j, bj := range s.Beta {
		sumBL += bj * bj * u.invLambda2[j]
	}

	invTau2 := u.gen.Gamma(0.5*(1.0+float64(u.p)), s.BTau+0.5*sumBL/s.Sigma2)
	s.Tau2 = 1.0 / invTau2
	s.BTau = u.gen.ExpFloat64() / (1.0/u.a2Tau + invTau2)

	invSigma2 := u.gen.Gamma(u.prior.ASigma+0.5*float64(u.n+u.p), u.prior.BSigma+0.5*sumBL*invTau2+0.5*sumEps2)
	s.Sigma2 = 1.0 / invSigma2

	return nil
}

// horseshoeBigP draws the coefficient block through the Bhattacharya
// identity against the SVD-compressed kernel: a k x k solve instead of
// p x p, with k = min(n, p).
type horseshoeBigP struct {
	gen        *rand.Generator
	prior      model.HorseshoePrior
	a2Tau      float64
	a2Lambda   float64
	basis      *svdBasis
	x          *mat.Dense
	y          []float64
	n, p, k    int
	vd         *mat.Dense // V*diag(d), p x k
	lvd        *mat.Dense // diag(lambda)*VD, rescaled each sweep
	kern       *mat.SymDense
	chol       mat.Cholesky
	alpha1     []float64 // p
	alpha2     []float64 // k
	vdta       []float64 // k: VD'alpha1
	rhs        []float64 // k
	betaS      []float64 // k
	vdbs       []float64 // p: VD*betaS
	invLambda2 []float64
	mu         []float64
}

func newHorseshoeBigP(gen *rand.Generator, ds *model.Dataset, prior model.HorseshoePrior) (*horseshoeBigP, error) {
	basis, err := newSVDBasis(ds.X, ds.Y)
	if err != nil {
		return nil, err
	}

	n, p := ds.N(), ds.P()
	k := len(basis.d)
	vd := mat.NewDense(p, k, nil)
	colScale(vd, basis.v, basis.d)

	return &horseshoeBigP{
		gen:        gen,
		prior:      prior,
		a2Tau:      prior.ATau * prior.ATau,
		a2Lambda:   prior.ALambda * prior.ALambda,
		basis:      basis,
		x:          ds.X,
		y:          ds.Y,
		n:          n,
		p:          p,
		k:          k,
		vd:         vd,
		lvd:        mat.NewDense(p, k, nil),
		kern:       mat.NewSymDense(k, nil),
		alpha1:     make([]float64, p),
		alpha2:     make([]float64, k),
		vdta:       make([]float64, k),
		rhs:        make([]float64, k),
		betaS:      make([]float64, k),
		vdbs:       make([]float64, p),
		invLambda2: make([]float64, p),
		mu:         make([]float64, n),
	}, nil
}

func (u *horseshoeBigP) Init(s *State) error {
	initHorseshoeLinear(s, u.p, u.prior)
	return nil
}

func (u *horseshoeBigP) Update(s *State) error {
	b := u.basis
	sigma := math.Sqrt(s.Sigma2)
	sigmaTau := sigma * math.Sqrt(s.Tau2)

	u.gen.Norm(u.alpha1)
	for j := range u.alpha1 {
		u.alpha1[j] *= s.Lambda[j] * sigmaTau
	}
	u.gen.Norm(u.alpha2)
	for i := range u.alpha2 {
		u.alpha2[i] *= sigma
	}

	// Kernel (LambdaVD)'(LambdaVD) + I/tau2, shared scale sigma2*tau2
	// divided out of both sides.
	rowScale(u.lvd, u.vd, s.Lambda)
	u.kern.SymOuterK(1, u.lvd.T())
	invTau2 := 1.0 / s.Tau2
	for i := 0; i < u.k; i++ {
		u.kern.SetSym(i, i, u.kern.At(i, i)+invTau2)
	}

	mulTVec(u.vdta, u.vd, u.alpha1)
	for i := 0; i < u.k; i++ {
		u.rhs[i] = b.ys[i] - u.vdta[i] - u.alpha2[i]
	}
	if err := solveSPD(&u.chol, u.kern, u.rhs, u.betaS); err != nil {
		return err
	}
	mulVec(u.vdbs, u.vd, u.betaS)
	for j := 0; j < u.p; j++ {
		s.Beta[j] = u.alpha1[j] + s.Lambda[j]*s.Lambda[j]*u.vdbs[j]
	}

	tau2Sigma2 := s.Tau2 * s.Sigma2
	for j := 0; j < u.p; j++ {
		bj := s.Beta[j]
		inv := u.gen.ExpFloat64() / (s.BLambda[j] + 0.5*bj*bj/tau2Sigma2)
		s.BLambda[j] = u.gen.ExpFloat64() / (1.0/u.a2Lambda + inv)
		s.Lambda[j] = 1.0 / math.Sqrt(inv)
		u.invLambda2[j] = inv
	}

	sumBL := 0.0
	for j, bj := range s.Beta {
		sumBL += bj * bj * u.invLambda2[j]
	}
	invTau2 = u.gen.Gamma(0.5*(1.0+float64(u.p)), s.BTau+0.5*sumBL/s.Sigma2)
	s.Tau2 = 1.0 / invTau2
	s.BTau = u.gen.ExpFloat64() / (1.0/u.a2Tau + invTau2)

	mulVec(u.mu, u.x, s.Beta)
	sumEps2 := 0.0
	for i, yv := range u.y {
		e := yv - u.mu[i]
		sumEps2 += e * e
	}

	invSigma2 := u.gen.Gamma(u.prior.ASigma+0.5*float64(u.n+u.p), u.prior.BSigma+0.5*sumBL*invTau2+0.5*sumEps2)
	s.Sigma2 = 1.0 / invSigma2

	return nil
}
