package sparse

// RandomAccess is a positionable point-lookup cursor over a Matrix.
// Lookup for CSR and CSC is the same binary search over one slice of the
// indices buffer; only the leading dimension differs.
//
// A RandomAccess is not safe for concurrent use. Copies share the matrix
// buffers read-only but have independent positions.
type RandomAccess[T Number] struct {
	m   *Matrix[T]
	pos [2]int64 // (col, row)
}

// SetPosition moves the cursor to (col, row).
func (ra *RandomAccess[T]) SetPosition(col, row int64) {
	ra.pos[0] = col
	ra.pos[1] = row
}

// Fwd advances the position by one along dimension d.
func (ra *RandomAccess[T]) Fwd(d int) {
	ra.pos[d]++
}

// Bck moves the position back by one along dimension d.
func (ra *RandomAccess[T]) Bck(d int) {
	ra.pos[d]--
}

// Move shifts the position by distance along dimension d.
func (ra *RandomAccess[T]) Move(distance int64, d int) {
	ra.pos[d] += distance
}

// Position returns the current (col, row) position.
func (ra *RandomAccess[T]) Position() (col, row int64) {
	return ra.pos[0], ra.pos[1]
}

// Get returns the value at the current position. Coordinates without a
// stored entry yield the zero fill value; absence is never an error.
func (ra *RandomAccess[T]) Get() T {
	return ra.m.Get(ra.pos[0], ra.pos[1])
}

// GetAt positions the cursor at (col, row) and returns the value there.
func (ra *RandomAccess[T]) GetAt(col, row int64) T {
	ra.SetPosition(col, row)
	return ra.Get()
}

// Copy returns an independent cursor at the same position.
func (ra *RandomAccess[T]) Copy() *RandomAccess[T] {
	out := &RandomAccess[T]{m: ra.m}
	out.pos = ra.pos
	return out
}
