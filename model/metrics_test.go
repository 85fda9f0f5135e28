package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoverySuite(t *testing.T) {
	assert := assert.New(t)

	truth := []float64{2, 0, -1}
	est := []float64{1.5, 0.3, 1}

	rs, err := NewRecoverySuite(truth, est)
	assert.NoError(err)
	assert.InDelta(4.34, rs.SSE, 1e-12)
	assert.InDelta(4.25, rs.NonzeroSSE, 1e-12)
	assert.InDelta(0.09, rs.ZeroSSE, 1e-12)
	assert.InDelta(5.0, rs.BaselineSSE, 1e-12)
	assert.Equal(2, rs.Support)
	assert.Equal(1, rs.SignHits)

	// perfect estimate
	rs, err = NewRecoverySuite(truth, truth)
	assert.NoError(err)
	assert.Equal(0.0, rs.SSE)
	assert.Equal(2, rs.SignHits)

	_, err = NewRecoverySuite(truth, []float64{1, 2})
	assert.Error(err)
	_, err = NewRecoverySuite(nil, nil)
	assert.Error(err)
}

func TestClassAccuracy(t *testing.T) {
	assert := assert.New(t)

	acc, err := ClassAccuracy([]int{1, 0, 1, 1}, []float64{1, 0, 0, 1})
	assert.NoError(err)
	assert.Equal(0.75, acc)

	acc, err = ClassAccuracy([]int{0, 0}, []float64{0, 0})
	assert.NoError(err)
	assert.Equal(1.0, acc)

	_, err = ClassAccuracy([]int{1}, []float64{1, 0})
	assert.Error(err)
	_, err = ClassAccuracy(nil, nil)
	assert.Error(err)
}
