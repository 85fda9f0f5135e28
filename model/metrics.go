package model

import (
	"github.com/pkg/errors"
)

// RecoverySuite scores a coefficient estimate against the generating
// truth, split over the true support and its complement. BaselineSSE is
// the error of the all-zero estimate, so BaselineSSE/SSE > 1 means the
// fit beat doing nothing.
type RecoverySuite struct {
	SSE         float64 // total squared error
	NonzeroSSE  float64 // squared error over the true support
	ZeroSSE     float64 // squared error off the support
	BaselineSSE float64 // squared error of the all-zero estimate
	SignHits    int     // support coefficients with the correct sign
	Support     int     // true support size
}

// NewRecoverySuite returns a RecoverySuite with all scores calculated
func NewRecoverySuite(truth []float64, est []float64) (*RecoverySuite, error) {
	if len(truth) != len(est) {
		return nil, errors.Errorf("Coefficient count mismatch %d != %d", len(truth), len(est))
	}
	if len(truth) < 1 {
		return nil, errors.Errorf("No coefficients to score")
	}

	rs := RecoverySuite{}
	for i, t := range truth {
		e := est[i]
		d := e - t
		rs.SSE += d * d
		rs.BaselineSSE += t * t

		if t == 0 {
			rs.ZeroSSE += d * d
			continue
		}

		rs.NonzeroSSE += d * d
		rs.Support++
		if (t > 0 && e > 0) || (t < 0 && e < 0) {
			rs.SignHits++
		}
	}

	return &rs, nil
}

// ClassAccuracy returns the share of predicted class labels matching
// the observed binary outcomes.
func ClassAccuracy(class []int, y []float64) (float64, error) {
	if len(class) != len(y) {
		return 0, errors.Errorf("Label count mismatch %d != %d", len(class), len(y))
	}
	if len(class) < 1 {
		return 0, errors.Errorf("No labels to score")
	}

	hits := 0
	for i, c := range class {
		if float64(c) == y[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(class)), nil
}
