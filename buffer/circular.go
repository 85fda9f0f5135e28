// Package buffer provides the fixed-size history storage used for
// chain convergence checks.
package buffer

// CircularFloat is a circular buffer of float64 values with the ability
// to iterate over the first and second halves of the values collected,
// in the order that they were appended. Chains use one per tracked
// scalar parameter so that a split-half stationarity check is cheap at
// any point in a run.
type CircularFloat struct {
	buffer    []float64 // actual storage
	pos       int       // Current position in buffer
	BufSize   int       // BufSize is the fixed number of values maintained in memory
	Count     int       // Count is the number of values in memory. Will always be <= BufSize
	TotalSeen int64     // TotalSeen is the total number of times Add has been called
}

// NewCircularFloat creates a new circular buffer of totalSize. If
// totalSize is not a multiple of 2, it will be adjusted down.
func NewCircularFloat(totalSize int) *CircularFloat {
	half := totalSize / 2
	total := half + half

	return &CircularFloat{
		buffer:  make([]float64, total),
		pos:     0,
		BufSize: total,
		Count:   0,
	}
}

// Internal: return the next array position
func (c *CircularFloat) nextPos() int {
	return (c.pos + 1) % c.BufSize
}

// Add appends the given value to the buffer, overwriting the oldest
// entry once the buffer is full.
func (c *CircularFloat) Add(v float64) {
	c.TotalSeen++

	c.buffer[c.pos] = v
	c.pos = c.nextPos()

	c.Count++
	if c.Count > c.BufSize {
		c.Count = c.BufSize // max out
	}
}

// Full is true once the buffer holds BufSize values, which is the
// earliest point at which the half iterators are valid.
func (c *CircularFloat) Full() bool {
	return c.Count >= c.BufSize
}

// FirstHalf returns an iterator over the first (oldest) half of the
// stored values. Returns nil until Add has been called at least BufSize
// times.
func (c *CircularFloat) FirstHalf() *CircularFloatIterator {
	if !c.Full() {
		return nil
	}

	return &CircularFloatIterator{
		buf:    c,
		curr:   c.pos, // Oldest is the one we're about to write
		remain: c.BufSize / 2,
	}
}

// SecondHalf returns an iterator over the second (most recent) half of
// the stored values. Returns nil until Add has been called at least
// BufSize times.
func (c *CircularFloat) SecondHalf() *CircularFloatIterator {
	if !c.Full() {
		return nil
	}

	half := c.BufSize / 2
	pos := (c.pos + half) % c.BufSize

	return &CircularFloatIterator{
		buf:    c,
		curr:   pos,
		remain: half,
	}
}

// CircularFloatIterator provides an iterator over a CircularFloat
// buffer.
type CircularFloatIterator struct {
	buf    *CircularFloat
	curr   int
	remain int
}

// Next returns true when there are more values to read via Value.
func (i *CircularFloatIterator) Next() bool {
	return i.remain > 0
}

// Value returns the next value to be read. Should only be called if
// Next() is true.
func (i *CircularFloatIterator) Value() float64 {
	v := i.buf.buffer[i.curr]
	i.curr = (i.curr + 1) % i.buf.BufSize
	i.remain--
	return v
}
