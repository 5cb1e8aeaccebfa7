package sparse

// Cursor traverses every coordinate of a Matrix in the natural order of its
// layout, yielding the fill value at coordinates without a stored entry.
// It keeps three synchronized positions: an offset into data/indices, an
// offset into indptr, and the logical (col, row) position; isHit records
// whether the logical position coincides with a stored entry.
//
// Iteration never materializes a dense buffer; total cost is O(cols*rows)
// with O(1) amortized work per stored entry.
type Cursor[T Number] struct {
	m            *Matrix[T]
	max          [2]int64
	pos          [2]int64 // (col, row)
	leadingDim   int
	secondaryDim int

	entryPos    int64 // offset into data/indices, -1 before the first entry
	ptrPos      int64 // offset into indptr
	isHit       bool
	initialized bool
}

// HasNext reports whether any coordinate remains.
func (c *Cursor[T]) HasNext() bool {
	return c.pos[0] < c.max[0] || c.pos[1] < c.max[1]
}

// Fwd advances to the next coordinate. The leading dimension runs fastest
// and wraps into the next secondary-dimension slice at its bound.
func (c *Cursor[T]) Fwd() {
	if c.m.layout == Dense {
		c.fwdDense()
		return
	}

	if !c.initialized {
		c.initialized = true
		c.advanceToNextStoredEntry()
	} else if c.isHit {
		c.advanceToNextStoredEntry()
	}

	if c.pos[c.leadingDim] < c.max[c.leadingDim] {
		c.pos[c.leadingDim]++
	} else {
		c.pos[c.leadingDim] = 0
		c.pos[c.secondaryDim]++
	}

	c.isHit = c.entryPos >= 0 && c.entryPos < int64(len(c.m.indices)) &&
		c.m.indices[c.entryPos] == c.pos[c.leadingDim] &&
		c.ptrPos == c.pos[c.secondaryDim]
}

// Next advances the cursor and returns the value at the new coordinate.
func (c *Cursor[T]) Next() T {
	c.Fwd()
	return c.Get()
}

// Get returns the value at the current coordinate without mutating state.
func (c *Cursor[T]) Get() T {
	if c.m.layout == Dense {
		return c.m.data[c.pos[1]*c.m.cols+c.pos[0]]
	}
	if c.isHit {
		return c.m.data[c.entryPos]
	}
	var zero T
	return zero
}

// Position returns the current (col, row) coordinate.
func (c *Cursor[T]) Position() (col, row int64) {
	return c.pos[0], c.pos[1]
}

// Reset rewinds the cursor to just before the origin and rewinds all three
// sub-positions to their start offsets.
func (c *Cursor[T]) Reset() {
	c.pos[c.leadingDim] = -1
	c.pos[c.secondaryDim] = 0
	c.entryPos = -1
	c.ptrPos = 0
	c.isHit = false
	c.initialized = false
}

// advanceToNextStoredEntry moves the entry offset to the next stored entry
// and realigns the indptr offset to the slice containing it.
func (c *Cursor[T]) advanceToNextStoredEntry() {
	if c.entryPos+1 < int64(len(c.m.indices)) {
		c.entryPos++
	}
	current := c.entryPos
	c.ptrPos++
	for c.ptrPos < int64(len(c.m.indptr)) && c.m.indptr[c.ptrPos] <= current {
		c.ptrPos++
	}
	c.ptrPos--
}

func (c *Cursor[T]) fwdDense() {
	if !c.initialized {
		c.initialized = true
	}
	if c.pos[c.leadingDim] < c.max[c.leadingDim] {
		c.pos[c.leadingDim]++
	} else {
		c.pos[c.leadingDim] = 0
		c.pos[c.secondaryDim]++
	}
}
