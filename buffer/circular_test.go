package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCircularFloat(t *testing.T) {
	assert := assert.New(t)

	cf := NewCircularFloat(6)
	assert.Equal(6, cf.BufSize)
	assert.Equal(0, cf.Count)

	cf.Add(1)
	cf.Add(2)
	cf.Add(3)
	cf.Add(4)
	cf.Add(5)
	assert.Equal(6, cf.BufSize)
	assert.Equal(5, cf.Count)
	assert.False(cf.Full())
	assert.Nil(cf.FirstHalf())
	assert.Nil(cf.SecondHalf())

	cf.Add(6)
	assert.Equal(6, cf.BufSize)
	assert.Equal(6, cf.Count)
	assert.True(cf.Full())

	exp := 0.0
	for iter := cf.FirstHalf(); iter.Next(); {
		val := iter.Value()
		exp++
		assert.Equal(exp, val)
	}
	for iter := cf.SecondHalf(); iter.Next(); {
		val := iter.Value()
		exp++
		assert.Equal(exp, val)
	}

	// 1 2 3 4 5 6 add 8 add 8 => 8 8 3 4 5 6
	// So first=3,4,5 second=6,8,8
	cf.Add(8)
	cf.Add(8)
	expVals := []float64{3, 4, 5, 6, 8, 8}
	idx := 0
	for iter := cf.FirstHalf(); iter.Next(); {
		val := iter.Value()
		assert.Equal(expVals[idx], val)
		idx++
	}
	for iter := cf.SecondHalf(); iter.Next(); {
		val := iter.Value()
		assert.Equal(expVals[idx], val)
		idx++
	}
	assert.Equal(6, idx)
	assert.Equal(int64(8), cf.TotalSeen)
}

func TestCircularFloatOddSize(t *testing.T) {
	assert := assert.New(t)

	cf := NewCircularFloat(7)
	assert.Equal(6, cf.BufSize)

	for i := 0; i < 6; i++ {
		cf.Add(float64(i))
	}
	assert.True(cf.Full())

	n := 0
	for iter := cf.FirstHalf(); iter.Next(); {
		iter.Value()
		n++
	}
	assert.Equal(3, n)
}
