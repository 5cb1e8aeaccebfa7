package sparse

import (
	"fmt"
)

// Number constrains the value types a Matrix can hold.
type Number interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Layout identifies how a Matrix stores its entries.
type Layout int

const (
	// Dense stores every entry in a row-major buffer.
	Dense Layout = iota
	// CSR stores nonzero entries compressed by row: indices hold column
	// coordinates, indptr holds one offset per row.
	CSR
	// CSC stores nonzero entries compressed by column: indices hold row
	// coordinates, indptr holds one offset per column.
	CSC
)

// String returns the canonical name of the layout.
func (l Layout) String() string {
	switch l {
	case Dense:
		return "dense"
	case CSR:
		return "csr"
	case CSC:
		return "csc"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// Grid is the minimal read contract shared by dense and compressed
// matrices. Coordinates are (col, row); Dims returns (numCols, numRows).
type Grid[T Number] interface {
	Dims() (cols, rows int64)
	Get(col, row int64) T
}

// Matrix is a two-dimensional array of numeric values with a fixed layout.
// The shape convention is (numCols, numRows) and coordinates are (col, row),
// so dimension 0 is the column axis. For CSR the leading dimension is 0
// (indices store column coordinates, slices run along rows); for CSC it is
// dimension 1.
type Matrix[T Number] struct {
	cols   int64
	rows   int64
	layout Layout

	// data holds the row-major values for Dense, or the nonzero values
	// for CSR/CSC. indices and indptr are only set for compressed layouts.
	data    []T
	indices []int64
	indptr  []int64
}

// NewDense creates a dense matrix from row-major values of length cols*rows.
func NewDense[T Number](cols, rows int64, values []T) (*Matrix[T], error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("sparse: invalid shape (%d, %d)", cols, rows)
	}
	if int64(len(values)) != cols*rows {
		return nil, fmt.Errorf("sparse: dense buffer has %d values, shape (%d, %d) needs %d",
			len(values), cols, rows, cols*rows)
	}
	return &Matrix[T]{cols: cols, rows: rows, layout: Dense, data: values}, nil
}

// NewCSR creates a row-compressed matrix from validated buffers. indices
// hold the column coordinate of each value; indptr holds rows+1 offsets.
func NewCSR[T Number](cols, rows int64, data []T, indices, indptr []int64) (*Matrix[T], error) {
	return newCompressed(CSR, cols, rows, data, indices, indptr)
}

// NewCSC creates a column-compressed matrix from validated buffers. indices
// hold the row coordinate of each value; indptr holds cols+1 offsets.
func NewCSC[T Number](cols, rows int64, data []T, indices, indptr []int64) (*Matrix[T], error) {
	return newCompressed(CSC, cols, rows, data, indices, indptr)
}

func newCompressed[T Number](layout Layout, cols, rows int64, data []T, indices, indptr []int64) (*Matrix[T], error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("sparse: invalid shape (%d, %d)", cols, rows)
	}
	if len(data) != len(indices) {
		return nil, fmt.Errorf("sparse: data and indices must be the same length, got %d and %d",
			len(data), len(indices))
	}

	m := &Matrix[T]{cols: cols, rows: rows, layout: layout, data: data, indices: indices, indptr: indptr}

	wantPtr := m.secondaryExtent() + 1
	if int64(len(indptr)) != wantPtr {
		return nil, fmt.Errorf("sparse: indptr length %d does not fit %d %s slices",
			len(indptr), wantPtr-1, layout)
	}
	if indptr[0] != 0 {
		return nil, fmt.Errorf("sparse: indptr must start at 0, got %d", indptr[0])
	}
	if indptr[len(indptr)-1] != int64(len(data)) {
		return nil, fmt.Errorf("sparse: indptr must end at nnz=%d, got %d",
			len(data), indptr[len(indptr)-1])
	}
	for k := 1; k < len(indptr); k++ {
		if indptr[k] < indptr[k-1] {
			return nil, fmt.Errorf("sparse: indptr not monotonic at slice %d", k)
		}
	}

	lead := m.leadingExtent()
	for k := 0; k+1 < len(indptr); k++ {
		for i := indptr[k]; i < indptr[k+1]; i++ {
			if indices[i] < 0 || indices[i] >= lead {
				return nil, fmt.Errorf("sparse: index %d out of range [0, %d) in slice %d",
					indices[i], lead, k)
			}
			if i > indptr[k] && indices[i] <= indices[i-1] {
				return nil, fmt.Errorf("sparse: indices not strictly ascending in slice %d", k)
			}
		}
	}

	return m, nil
}

// Dims returns the shape as (numCols, numRows).
func (m *Matrix[T]) Dims() (cols, rows int64) {
	return m.cols, m.rows
}

// Layout returns the storage layout.
func (m *Matrix[T]) Layout() Layout {
	return m.layout
}

// NNZ returns the number of stored entries. For dense matrices this counts
// the entries that differ from the zero value.
func (m *Matrix[T]) NNZ() int64 {
	if m.layout == Dense {
		var zero T
		var n int64
		for _, v := range m.data {
			if v != zero {
				n++
			}
		}
		return n
	}
	return int64(len(m.data))
}

// Data returns the backing value buffer: row-major values for Dense,
// nonzero values for compressed layouts. The slice must not be modified.
func (m *Matrix[T]) Data() []T {
	return m.data
}

// Indices returns the leading-dimension coordinates of the stored entries,
// or nil for dense matrices. The slice must not be modified.
func (m *Matrix[T]) Indices() []int64 {
	return m.indices
}

// Indptr returns the per-slice offsets into Data and Indices, or nil for
// dense matrices. The slice must not be modified.
func (m *Matrix[T]) Indptr() []int64 {
	return m.indptr
}

// Get returns the value at (col, row), or the zero fill value if no entry
// is stored there. Compressed lookup is O(log s) in the slice size.
func (m *Matrix[T]) Get(col, row int64) T {
	if m.layout == Dense {
		return m.data[row*m.cols+col]
	}
	lead, secondary := m.split(col, row)
	return m.searchSlice(lead, secondary)
}

// searchSlice binary-searches the indices of one secondary-dimension slice
// for the leading coordinate. The loop terminates on midpoint stability so
// an absent coordinate falls out as the fill value instead of spinning on a
// two-element window.
func (m *Matrix[T]) searchSlice(lead, secondary int64) T {
	var zero T
	start := m.indptr[secondary]
	end := m.indptr[secondary+1]
	if start == end {
		return zero
	}

	for {
		mid := (start + end) / 2
		current := m.indices[mid]
		if current == lead {
			return m.data[mid]
		}
		if current < lead {
			start = mid
		} else {
			end = mid
		}
		if mid == start && end-start <= 1 {
			return zero
		}
	}
}

// split maps (col, row) onto (leading, secondary) coordinates for the
// matrix layout.
func (m *Matrix[T]) split(col, row int64) (lead, secondary int64) {
	if m.layout == CSC {
		return row, col
	}
	return col, row
}

// leadingDim returns the axis whose coordinates are stored in indices:
// 0 (columns) for CSR and Dense, 1 (rows) for CSC.
func (m *Matrix[T]) leadingDim() int {
	if m.layout == CSC {
		return 1
	}
	return 0
}

func (m *Matrix[T]) dim(d int) int64 {
	if d == 0 {
		return m.cols
	}
	return m.rows
}

func (m *Matrix[T]) leadingExtent() int64 {
	return m.dim(m.leadingDim())
}

func (m *Matrix[T]) secondaryExtent() int64 {
	return m.dim(1 - m.leadingDim())
}

// RandomAccess returns a point-lookup cursor over the matrix. The cursor
// shares the matrix buffers read-only and carries its own position state.
func (m *Matrix[T]) RandomAccess() *RandomAccess[T] {
	return &RandomAccess[T]{m: m}
}

// Cursor returns a sequential cursor that visits every coordinate of the
// matrix, including implicit zeros, in the natural order of the layout
// (row-major for Dense and CSR, column-major for CSC).
func (m *Matrix[T]) Cursor() *Cursor[T] {
	c := &Cursor[T]{
		m:            m,
		leadingDim:   m.leadingDim(),
		secondaryDim: 1 - m.leadingDim(),
	}
	c.max[0] = m.cols - 1
	c.max[1] = m.rows - 1
	c.Reset()
	return c
}

// Clone returns a structural copy with duplicated buffers.
func (m *Matrix[T]) Clone() *Matrix[T] {
	out := &Matrix[T]{cols: m.cols, rows: m.rows, layout: m.layout}
	out.data = append([]T(nil), m.data...)
	if m.indices != nil {
		out.indices = append([]int64(nil), m.indices...)
	}
	if m.indptr != nil {
		out.indptr = append([]int64(nil), m.indptr...)
	}
	return out
}
