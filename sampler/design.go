package sampler

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/fastbayes/fastbayes/rand"
)

// svdBasis caches the thin SVD of the design matrix together with the
// rotated response. Every SVD-backed updater shares these pieces, and
// they are computed exactly once per fit.
type svdBasis struct {
	u  *mat.Dense // left singular vectors, n x k
	v  *mat.Dense // right singular vectors, p x k
	d  []float64  // singular values, k = min(n, p)
	d2 []float64  // squared singular values
	ys []float64  // rotated response U'y
}

func newSVDBasis(x *mat.Dense, y []float64) (*svdBasis, error) {
	n, p := x.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, errors.Errorf("SVD failed to converge for %d x %d design", n, p)
	}

	b := &svdBasis{u: &mat.Dense{}, v: &mat.Dense{}}
	svd.UTo(b.u)
	svd.VTo(b.v)
	b.d = svd.Values(nil)

	k := len(b.d)
	b.d2 = make([]float64, k)
	for i, dv := range b.d {
		b.d2[i] = dv * dv
	}

	b.ys = make([]float64, k)
	mulTVec(b.ys, b.u, y)

	return b, nil
}

// mulVec computes dst = a*x for slice-backed vectors.
func mulVec(dst []float64, a mat.Matrix, x []float64) {
	out := mat.NewVecDense(len(dst), dst)
	out.MulVec(a, mat.NewVecDense(len(x), x))
}

// mulTVec computes dst = a'*x.
func mulTVec(dst []float64, a mat.Matrix, x []float64) {
	out := mat.NewVecDense(len(dst), dst)
	out.MulVec(a.T(), mat.NewVecDense(len(x), x))
}

// rowScale sets dst row i to src row i times s[i]. Both matrices must
// already have the same shape.
func rowScale(dst, src *mat.Dense, s []float64) {
	r, c := src.Dims()
	for i := 0; i < r; i++ {
		row := src.RawRowView(i)
		out := dst.RawRowView(i)
		for j := 0; j < c; j++ {
			out[j] = row[j] * s[i]
		}
	}
}

// colScale sets dst column j to src column j times s[j].
func colScale(dst, src *mat.Dense, s []float64) {
	r, c := src.Dims()
	for i := 0; i < r; i++ {
		row := src.RawRowView(i)
		out := dst.RawRowView(i)
		for j := 0; j < c; j++ {
			out[j] = row[j] * s[j]
		}
	}
}

// gaussDraw holds the factorization scratch for precision-form
// multivariate normal draws of one fixed dimension.
type gaussDraw struct {
	dim   int
	chol  mat.Cholesky
	lower mat.TriDense
	mean  *mat.VecDense
	w     *mat.VecDense
	z     []float64
}

func newGaussDraw(dim int) *gaussDraw {
	return &gaussDraw{
		dim:  dim,
		mean: mat.NewVecDense(dim, nil),
		w:    mat.NewVecDense(dim, nil),
		z:    make([]float64, dim),
	}
}

// sample overwrites dst with mean + scale*noise, where the mean solves
// prec*mean = rhs and the noise has covariance prec^-1. With prec = LL'
// the noise is L'^-1 z for standard normal z.
func (g *gaussDraw) sample(gen *rand.Generator, prec *mat.SymDense, rhs, dst []float64, scale float64) error {
	if ok := g.chol.Factorize(prec); !ok {
		return errors.Errorf("Cholesky factorization failed for %d x %d precision matrix", g.dim, g.dim)
	}
	if err := g.chol.SolveVecTo(g.mean, mat.NewVecDense(len(rhs), rhs)); err != nil {
		return errors.Wrap(err, "Precision solve failed")
	}

	g.chol.LTo(&g.lower)
	gen.Norm(g.z)
	if err := g.w.SolveVec(g.lower.T(), mat.NewVecDense(g.dim, g.z)); err != nil {
		return errors.Wrap(err, "Triangular solve failed")
	}

	for i := range dst {
		dst[i] = g.mean.AtVec(i) + scale*g.w.AtVec(i)
	}
	return nil
}

// solveSPD solves kern*dst = rhs for a symmetric positive definite
// kernel via its Cholesky factorization.
func solveSPD(chol *mat.Cholesky, kern *mat.SymDense, rhs, dst []float64) error {
	n := len(rhs)
	if ok := chol.Factorize(kern); !ok {
		return errors.Errorf("Cholesky factorization failed for %d x %d kernel", n, n)
	}
	out := mat.NewVecDense(len(dst), dst)
	if err := chol.SolveVecTo(out, mat.NewVecDense(n, rhs)); err != nil {
		return errors.Wrap(err, "Kernel solve failed")
	}
	return nil
}
