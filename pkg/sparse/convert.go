package sparse

import (
	"fmt"
)

// CountNonzeros returns the number of entries of g that differ from the
// zero value, visiting every coordinate.
func CountNonzeros[T Number](g Grid[T]) int64 {
	if m, ok := g.(*Matrix[T]); ok && m.layout != Dense {
		return m.NNZ()
	}

	var zero T
	var nnz int64
	cols, rows := g.Dims()
	for row := int64(0); row < rows; row++ {
		for col := int64(0); col < cols; col++ {
			if g.Get(col, row) != zero {
				nnz++
			}
		}
	}
	return nnz
}

// Compress converts any 2-D source into a compressed matrix with the given
// layout. A *Matrix that already has the requested layout is returned
// unchanged rather than re-scanned.
//
// The conversion runs two passes: the first counts nonzero entries so the
// buffers are sized exactly, the second walks the secondary dimension outer
// and the leading dimension inner, appending each nonzero's value and
// leading coordinate and recording the running count into indptr once per
// slice. The monotone inner loop emits per-slice indices already sorted,
// which the binary search in Matrix.Get relies on.
func Compress[T Number](src Grid[T], layout Layout) (*Matrix[T], error) {
	if layout != CSR && layout != CSC {
		return nil, fmt.Errorf("sparse: compression layout must be csr or csc, got %s", layout)
	}
	if m, ok := src.(*Matrix[T]); ok && m.layout == layout {
		return m, nil
	}

	cols, rows := src.Dims()
	leadingDim := 0
	if layout == CSC {
		leadingDim = 1
	}
	dims := [2]int64{cols, rows}
	leadExtent := dims[leadingDim]
	secondaryExtent := dims[1-leadingDim]

	var zero T
	nnz := CountNonzeros(src)
	data := make([]T, 0, nnz)
	indices := make([]int64, 0, nnz)
	indptr := make([]int64, secondaryExtent+1)

	var pos [2]int64
	for j := int64(0); j < secondaryExtent; j++ {
		pos[1-leadingDim] = j
		for i := int64(0); i < leadExtent; i++ {
			pos[leadingDim] = i
			if v := src.Get(pos[0], pos[1]); v != zero {
				data = append(data, v)
				indices = append(indices, i)
			}
		}
		indptr[j+1] = int64(len(data))
	}

	return &Matrix[T]{
		cols:    cols,
		rows:    rows,
		layout:  layout,
		data:    data,
		indices: indices,
		indptr:  indptr,
	}, nil
}

// ToDense materializes any 2-D source as a dense row-major matrix through
// the shared random-access contract.
func ToDense[T Number](g Grid[T]) *Matrix[T] {
	cols, rows := g.Dims()
	values := make([]T, cols*rows)
	for row := int64(0); row < rows; row++ {
		for col := int64(0); col < cols; col++ {
			values[row*cols+col] = g.Get(col, row)
		}
	}
	return &Matrix[T]{cols: cols, rows: rows, layout: Dense, data: values}
}
