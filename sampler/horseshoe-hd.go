package sampler

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext"

	"github.com/fastbayes/fastbayes/model"
	"github.com/fastbayes/fastbayes/rand"
)

// NewHorseshoeLinearHD creates the updater for the horseshoe linear
// model in its high-dimensional form: below p = n it is the same exact
// rotated update as NewHorseshoeLinear, above it the coefficient draw
// works against the raw n x n design kernel and the noise variance is
// refreshed before the global shrinkage rather than after.
func NewHorseshoeLinearHD(gen *rand.Generator, ds *model.Dataset, prior model.HorseshoePrior) (Updater, error) {
	if err := checkLinearArgs(gen, ds); err != nil {
		return nil, err
	}
	if err := prior.Check(); err != nil {
		return nil, err
	}

	if ds.P() < ds.N() {
		return newHorseshoeBigN(gen, ds, prior)
	}
	return newHorseshoeDirect(gen, ds, prior), nil
}

// NewHorseshoeLinearSS creates the slice-sampler variant: the same raw
// kernel coefficient draw above p = n, but with the local and global
// shrinkage updated by slice sampling instead of the exponential
// mixture pairs. No auxiliary rate parameters are kept.
func NewHorseshoeLinearSS(gen *rand.Generator, ds *model.Dataset, prior model.HorseshoePrior) (Updater, error) {
	if err := checkLinearArgs(gen, ds); err != nil {
		return nil, err
	}
	if err := prior.Check(); err != nil {
		return nil, err
	}

	if ds.P() < ds.N() {
		return newHorseshoeBigN(gen, ds, prior)
	}
	return newHorseshoeSlice(gen, ds, prior), nil
}

// rawKernel is the Bhattacharya coefficient draw against the raw
// design: solve (X Lambda)(X Lambda)' + I/tau2 once per sweep and
// correct two prior-distributed Gaussian vectors. Shared by the direct
// and slice-sampling strategies, which differ only in how they refresh
// the shrinkage scales afterwards.
type rawKernel struct {
	gen    *rand.Generator
	x      *mat.Dense
	y      []float64
	n, p   int
	xlam   *mat.Dense // X with column j scaled by lambda_j
	kern   *mat.SymDense
	chol   mat.Cholesky
	alpha1 []float64 // p
	rhs    []float64 // n
	betaS  []float64 // n
	xltbs  []float64 // p: (X Lambda)'betaS
	mu     []float64 // n
}

func newRawKernel(gen *rand.Generator, ds *model.Dataset) rawKernel {
	n, p := ds.N(), ds.P()
	return rawKernel{
		gen:    gen,
		x:      ds.X,
		y:      ds.Y,
		n:      n,
		p:      p,
		xlam:   mat.NewDense(n, p, nil),
		kern:   mat.NewSymDense(n, nil),
		alpha1: make([]float64, p),
		rhs:    make([]float64, n),
		betaS:  make([]float64, n),
		xltbs:  make([]float64, p),
		mu:     make([]float64, n),
	}
}

func (k *rawKernel) drawBeta(s *State) error {
	sigma := math.Sqrt(s.Sigma2)
	sigmaTau := sigma * math.Sqrt(s.Tau2)

	k.gen.Norm(k.alpha1)
	for j := range k.alpha1 {
		k.alpha1[j] *= s.Lambda[j] * sigmaTau
	}

	mulVec(k.rhs, k.x, k.alpha1)
	for i := range k.rhs {
		k.rhs[i] = k.y[i] - k.rhs[i] - sigma*k.gen.NormFloat64()
	}

	colScale(k.xlam, k.x, s.Lambda)
	k.kern.SymOuterK(1, k.xlam)
	invTau2 := 1.0 / s.Tau2
	for i := 0; i < k.n; i++ {
		k.kern.SetSym(i, i, k.kern.At(i, i)+invTau2)
	}

	if err := solveSPD(&k.chol, k.kern, k.rhs, k.betaS); err != nil {
		return err
	}
	mulTVec(k.xltbs, k.xlam, k.betaS)
	for j := 0; j < k.p; j++ {
		s.Beta[j] = k.alpha1[j] + s.Lambda[j]*k.xltbs[j]
	}
	return nil
}

// sumEps2 recomputes the linear predictor at beta and returns the
// residual sum of squares.
func (k *rawKernel) sumEps2(beta []float64) float64 {
	mulVec(k.mu, k.x, beta)
	t := 0.0
	for i, yv := range k.y {
		e := yv - k.mu[i]
		t += e * e
	}
	return t
}

// horseshoeDirect refreshes the shrinkage scales with the exponential
// mixture pairs, drawing the noise variance against the pre-update
// global precision and the global shrinkage against the fresh noise
// draw.
type horseshoeDirect struct {
	rawKernel
	prior      model.HorseshoePrior
	a2Tau      float64
	a2Lambda   float64
	invLambda2 []float64
}

func newHorseshoeDirect(gen *rand.Generator, ds *model.Dataset, prior model.HorseshoePrior) *horseshoeDirect {
	return &horseshoeDirect{
		rawKernel:  newRawKernel(gen, ds),
		prior:      prior,
		a2Tau:      prior.ATau * prior.ATau,
		a2Lambda:   prior.ALambda * prior.ALambda,
		invLambda2: make([]float64, ds.P()),
	}
}

func (u *horseshoeDirect) Init(s *State) error {
	initHorseshoeLinear(s, u.p, u.prior)
	return nil
}

func (u *horseshoeDirect) Update(s *State) error {
	if err := u.drawBeta(s); err != nil {
		return err
	}

	tau2Sigma2 := s.Tau2 * s.Sigma2
	for j := 0; j < u.p; j++ {
		bj := s.Beta[j]
		inv := u.gen.ExpFloat64() / (s.BLambda[j] + 0.5*bj*bj/tau2Sigma2)
		s.BLambda[j] = u.gen.ExpFloat64() / (1.0/u.a2Lambda + inv)
		s.Lambda[j] = 1.0 / math.Sqrt(inv)
		u.invLambda2[j] = inv
	}

	sumEps2 := u.sumEps2(s.Beta)
	sumBL := 0.0
	for j, bj := range s.Beta {
		sumBL += bj * bj * u.invLambda2[j]
	}

	invTau2 := 1.0 / s.Tau2
	invSigma2 := u.gen.Gamma(u.prior.ASigma+0.5*float64(u.n+u.p), u.prior.BSigma+0.5*sumBL*invTau2+0.5*sumEps2)
	s.Sigma2 = 1.0 / invSigma2

	invTau2 = u.gen.Gamma(0.5*(1.0+float64(u.p)), s.BTau+0.5*sumBL*invSigma2)
	s.Tau2 = 1.0 / invTau2
	s.BTau = u.gen.ExpFloat64() / (1.0/u.a2Tau + invTau2)

	return nil
}

// horseshoeSlice refreshes the shrinkage scales by slice sampling the
// half-Cauchy conditionals directly: a uniform slice variable bounds
// the scale from above, and the scale is drawn from the truncated
// exponential (local) or truncated gamma (global) that remains.
type horseshoeSlice struct {
	rawKernel
	prior    model.HorseshoePrior
	a2Tau    float64
	a2Lambda float64
}

func newHorseshoeSlice(gen *rand.Generator, ds *model.Dataset, prior model.HorseshoePrior) *horseshoeSlice {
	return &horseshoeSlice{
		rawKernel: newRawKernel(gen, ds),
		prior:     prior,
		a2Tau:     prior.ATau * prior.ATau,
		a2Lambda:  prior.ALambda * prior.ALambda,
	}
}

func (u *horseshoeSlice) Init(s *State) error {
	initHorseshoeLinear(s, u.p, u.prior)
	return nil
}

func (u *horseshoeSlice) Update(s *State) error {
	if err := u.drawBeta(s); err != nil {
		return err
	}

	tau2Sigma2 := s.Tau2 * s.Sigma2
	sumBL := 0.0
	for j := 0; j < u.p; j++ {
		bj := s.Beta[j]
		bCoef := 0.5 * bj * bj / tau2Sigma2

		invOld := 1.0 / (s.Lambda[j] * s.Lambda[j])
		uSlice := u.gen.Float64() * (u.a2Lambda / (1.0 + u.a2Lambda*invOld))
		c := 1.0/uSlice - 1.0/u.a2Lambda

		// Inverse-CDF draw from the exponential truncated to (0, c).
		w := -math.Expm1(-bCoef * c)
		inv := -math.Log1p(-u.gen.Float64()*w) / bCoef

		s.Lambda[j] = 1.0 / math.Sqrt(inv)
		sumBL += bj * bj * inv
	}

	bTau := 0.5 * sumBL / s.Sigma2
	invTauOld := 1.0 / s.Tau2
	uSlice := u.gen.Float64() * (u.a2Tau / (1.0 + u.a2Tau*invTauOld))
	c := 1.0/uSlice - 1.0/u.a2Tau

	// Inverse-CDF draw from the gamma truncated to (0, c).
	shape := 0.5 * (1.0 + float64(u.p))
	fc := mathext.GammaIncReg(shape, bTau*c)
	invTau2 := mathext.GammaIncRegInv(shape, u.gen.Float64()*fc) / bTau
	s.Tau2 = 1.0 / invTau2

	sumEps2 := u.sumEps2(s.Beta)
	invSigma2 := u.gen.Gamma(u.prior.ASigma+0.5*float64(u.n+u.p), u.prior.BSigma+0.5*sumBL*invTau2+0.5*sumEps2)
	s.Sigma2 = 1.0 / invSigma2

	return nil
}
