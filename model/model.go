// Package model holds the data types shared by the samplers and the CLI:
// datasets, prior and control parameter bundles, fit results, simulation,
// prediction, and recovery scoring.
package model

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Dataset pairs an outcome vector with its design matrix. Y has one entry
// per row of X. The same type serves linear and logistic fits; logistic
// fits additionally require Y to be binary (see CheckBinary).
type Dataset struct {
	Y []float64  // outcome, length n
	X *mat.Dense // design, n rows by p columns
}

// NewDataset wraps an outcome vector and design matrix after validation.
func NewDataset(y []float64, x *mat.Dense) (*Dataset, error) {
	ds := &Dataset{Y: y, X: x}
	if err := ds.Check(); err != nil {
		return nil, err
	}
	return ds, nil
}

// N returns the number of observations.
func (ds *Dataset) N() int {
	n, _ := ds.X.Dims()
	return n
}

// P returns the number of predictors.
func (ds *Dataset) P() int {
	_, p := ds.X.Dims()
	return p
}

// Check returns an error if there is a problem with the dataset
func (ds *Dataset) Check() error {
	if ds.X == nil {
		return errors.Errorf("Dataset has no design matrix")
	}

	n, p := ds.X.Dims()
	if n < 1 || p < 1 {
		return errors.Errorf("Design matrix has degenerate shape %d x %d", n, p)
	}
	if len(ds.Y) != n {
		return errors.Errorf("Outcome length %d != design row count %d", len(ds.Y), n)
	}

	for i, v := range ds.Y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Errorf("Outcome %d is not finite (%v)", i, v)
		}
	}

	return nil
}

// CheckBinary returns an error unless every outcome is exactly 0 or 1.
// Logistic fits call this after Check.
func (ds *Dataset) CheckBinary() error {
	for i, v := range ds.Y {
		if v != 0 && v != 1 {
			return errors.Errorf("Outcome %d is %v - logistic fits need 0/1 outcomes", i, v)
		}
	}
	return nil
}
