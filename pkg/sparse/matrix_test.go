package sparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Shared fixture: a 10x9 matrix with five ones at (2,0), (5,1), (0,2),
// (6,8) and (9,8), in (col, row) coordinates.
var (
	fixtureData    = []float64{1, 1, 1, 1, 1}
	fixtureIndices = []int64{2, 5, 0, 6, 9}
	fixtureIndptr  = []int64{0, 1, 2, 3, 3, 3, 3, 3, 3, 5}

	fixtureCols = []int64{2, 5, 0, 6, 9}
	fixtureRows = []int64{0, 1, 2, 8, 8}
)

func setupCSR(t *testing.T) *Matrix[float64] {
	t.Helper()
	m, err := NewCSR(10, 9, fixtureData, fixtureIndices, fixtureIndptr)
	require.NoError(t, err)
	return m
}

// The same buffers describe the transposed matrix in CSC layout.
func setupCSC(t *testing.T) *Matrix[float64] {
	t.Helper()
	m, err := NewCSC(9, 10, fixtureData, fixtureIndices, fixtureIndptr)
	require.NoError(t, err)
	return m
}

func assertGridsEqual(t *testing.T, expected, actual Grid[float64]) {
	t.Helper()
	ec, er := expected.Dims()
	ac, ar := actual.Dims()
	require.Equal(t, ec, ac, "number of columns differs")
	require.Equal(t, er, ar, "number of rows differs")
	for row := int64(0); row < er; row++ {
		for col := int64(0); col < ec; col++ {
			assert.Equal(t, expected.Get(col, row), actual.Get(col, row),
				"grids differ at (%d, %d)", col, row)
		}
	}
}

func TestNewCSRValidatesBuffers(t *testing.T) {
	tests := []struct {
		name    string
		cols    int64
		rows    int64
		data    []float64
		indices []int64
		indptr  []int64
	}{
		{
			name: "data and indices length mismatch",
			cols: 10, rows: 9,
			data:    []float64{1, 1},
			indices: []int64{2, 5, 0},
			indptr:  fixtureIndptr,
		},
		{
			name: "indptr does not fit slice count",
			cols: 10, rows: 9,
			data:    fixtureData,
			indices: fixtureIndices,
			indptr:  []int64{0, 1, 2, 3, 5},
		},
		{
			name: "indptr not starting at zero",
			cols: 10, rows: 9,
			data:    fixtureData,
			indices: fixtureIndices,
			indptr:  []int64{1, 1, 2, 3, 3, 3, 3, 3, 3, 5},
		},
		{
			name: "indptr not monotonic",
			cols: 10, rows: 9,
			data:    fixtureData,
			indices: fixtureIndices,
			indptr:  []int64{0, 2, 1, 3, 3, 3, 3, 3, 3, 5},
		},
		{
			name: "index out of leading range",
			cols: 10, rows: 9,
			data:    fixtureData,
			indices: []int64{2, 5, 0, 6, 12},
			indptr:  fixtureIndptr,
		},
		{
			name: "indices not sorted within slice",
			cols: 10, rows: 9,
			data:    fixtureData,
			indices: []int64{2, 5, 0, 9, 6},
			indptr:  fixtureIndptr,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCSR(tc.cols, tc.rows, tc.data, tc.indices, tc.indptr)
			assert.Error(t, err)
		})
	}
}

func TestCSRNonzeroEntriesAreCorrect(t *testing.T) {
	ra := setupCSR(t).RandomAccess()
	for i := range fixtureCols {
		assert.InDelta(t, 1.0, ra.GetAt(fixtureCols[i], fixtureRows[i]), 1e-6,
			"mismatch at (%d, %d)", fixtureCols[i], fixtureRows[i])
	}
}

func TestAbsentEntriesYieldFillValue(t *testing.T) {
	csr := setupCSR(t)
	assert.Zero(t, csr.Get(3, 0))
	assert.Zero(t, csr.Get(0, 4), "empty slice must yield the fill value")
	assert.Zero(t, csr.Get(7, 8), "absent entry between stored entries")
}

func TestSparseHasCorrectNumberOfNonzeros(t *testing.T) {
	assert.EqualValues(t, 5, setupCSR(t).NNZ())
	assert.EqualValues(t, 5, setupCSC(t).NNZ())
	assert.EqualValues(t, 5, CountNonzeros[float64](setupCSR(t)))
}

func TestConversionToSparseIsCorrect(t *testing.T) {
	for name, m := range map[string]*Matrix[float64]{"CSR": setupCSR(t), "CSC": setupCSC(t)} {
		t.Run(name, func(t *testing.T) {
			newCSR, err := Compress[float64](m, CSR)
			require.NoError(t, err)
			assert.Equal(t, CSR, newCSR.Layout())
			assertGridsEqual(t, m, newCSR)

			newCSC, err := Compress[float64](m, CSC)
			require.NoError(t, err)
			assert.Equal(t, CSC, newCSC.Layout())
			assertGridsEqual(t, m, newCSC)

			assert.EqualValues(t, 5, newCSR.NNZ())
			assert.EqualValues(t, 5, newCSC.NNZ())
		})
	}
}

func TestReconversionIsIdentity(t *testing.T) {
	csr := setupCSR(t)
	again, err := Compress[float64](csr, CSR)
	require.NoError(t, err)
	assert.Same(t, csr, again, "re-compressing to the same layout must not re-scan")
}

func TestCSCIsCSRTransposed(t *testing.T) {
	csr := setupCSR(t)
	csc := setupCSC(t)
	cols, rows := csr.Dims()
	for row := int64(0); row < rows; row++ {
		for col := int64(0); col < cols; col++ {
			assert.Equal(t, csr.Get(col, row), csc.Get(row, col),
				"transpose mismatch at (%d, %d)", col, row)
		}
	}
}

func TestDenseRoundTrip(t *testing.T) {
	values := make([]float64, 10*9)
	for i := range fixtureCols {
		values[fixtureRows[i]*10+fixtureCols[i]] = 1.0
	}
	dense, err := NewDense(10, 9, values)
	require.NoError(t, err)

	for _, layout := range []Layout{CSR, CSC} {
		t.Run(layout.String(), func(t *testing.T) {
			compressed, err := Compress[float64](dense, layout)
			require.NoError(t, err)
			assertGridsEqual(t, dense, compressed)
			assertGridsEqual(t, dense, ToDense[float64](compressed))
		})
	}
}

func TestCompressRejectsDenseLayout(t *testing.T) {
	_, err := Compress[float64](setupCSR(t), Dense)
	assert.Error(t, err)
}

func TestRandomAccessCopyIsIndependent(t *testing.T) {
	ra := setupCSR(t).RandomAccess()
	ra.SetPosition(2, 0)
	cp := ra.Copy()

	col, row := cp.Position()
	assert.EqualValues(t, 2, col)
	assert.EqualValues(t, 0, row)

	cp.SetPosition(5, 1)
	col, row = ra.Position()
	assert.EqualValues(t, 2, col, "copy must not move the original")
	assert.EqualValues(t, 0, row)

	assert.InDelta(t, 1.0, ra.Get(), 1e-6)
	assert.InDelta(t, 1.0, cp.Get(), 1e-6)
}

func TestCloneDuplicatesBuffers(t *testing.T) {
	csr := setupCSR(t)
	clone := csr.Clone()
	assertGridsEqual(t, csr, clone)

	clone.data[0] = 42
	assert.InDelta(t, 1.0, csr.Get(2, 0), 1e-6, "clone must not share buffers")
}

func TestDenseMatrixAccess(t *testing.T) {
	m, err := NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, m.Get(0, 0), 1e-6)
	assert.InDelta(t, 3.0, m.Get(2, 0), 1e-6)
	assert.InDelta(t, 4.0, m.Get(0, 1), 1e-6)
	assert.EqualValues(t, 6, m.NNZ())

	_, err = NewDense(3, 2, []float64{1, 2, 3})
	assert.Error(t, err)
}
