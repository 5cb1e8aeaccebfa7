package anndata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaneliaSciComp/go-anndata/pkg/errors"
	"github.com/JaneliaSciComp/go-anndata/pkg/sparse"
	"github.com/JaneliaSciComp/go-anndata/pkg/store"
	"github.com/JaneliaSciComp/go-anndata/pkg/testutil"
)

// A 10x9 matrix (9 observations, 10 variables) with five ones, matching
// the stored shape convention [nObs, nVar].
var (
	testData    = []float64{1, 1, 1, 1, 1}
	testIndices = []int64{2, 5, 0, 6, 9}
	testIndptr  = []int64{0, 1, 2, 3, 3, 3, 3, 3, 3, 5}
)

func names(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = prefix + "-" + string(rune('a'+i))
	}
	return out
}

func initializedContainer(t *testing.T) store.Writer {
	t.Helper()
	w := store.NewMemory()
	require.NoError(t, Initialize(w, names("obs", 9), names("var", 10)))
	return w
}

func testMatrix(t *testing.T) *sparse.Matrix[float64] {
	t.Helper()
	m, err := sparse.NewCSR(10, 9, testData, testIndices, testIndptr)
	require.NoError(t, err)
	return m
}

func TestInitializeCreatesValidContainer(t *testing.T) {
	w := initializedContainer(t)

	assert.True(t, IsValid(w))

	rootType, err := FieldTypeAt(w, Root)
	require.NoError(t, err)
	assert.Equal(t, TypeAnnData, rootType)

	nObs, err := NObs(w)
	require.NoError(t, err)
	assert.EqualValues(t, 9, nObs)

	nVar, err := NVar(w)
	require.NoError(t, err)
	assert.EqualValues(t, 10, nVar)

	index, err := ReadDataFrameIndex(w, NewPath(FieldObs))
	require.NoError(t, err)
	assert.Equal(t, names("obs", 9), index)
}

func TestInitializeRequiresEmptyContainer(t *testing.T) {
	w := store.NewMemory()
	require.NoError(t, w.CreateGroup("/leftover"))

	err := Initialize(w, names("obs", 2), names("var", 2))
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))
}

func TestIsValidRejectsPartialContainers(t *testing.T) {
	w := store.NewMemory()
	assert.False(t, IsValid(w), "empty store is not a container")

	require.NoError(t, Initialize(w, names("obs", 2), names("var", 2)))
	require.NoError(t, w.Remove("/uns"))
	assert.False(t, IsValid(w), "a container missing a mapping group is invalid")
}

func TestWriteAndReadMatrixAllLayouts(t *testing.T) {
	m := testMatrix(t)

	for _, tc := range []struct {
		name string
		t    FieldType
	}{
		{"dense", TypeDenseArray},
		{"csr", TypeCSRMatrix},
		{"csc", TypeCSCMatrix},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := initializedContainer(t)
			p := NewPath(FieldX)

			require.NoError(t, WriteMatrix[float64](w, p, m, Strict, tc.t))

			got, err := ReadMatrix[float64](w, p)
			require.NoError(t, err)

			storedType, err := FieldTypeAt(w, p)
			require.NoError(t, err)
			assert.Equal(t, tc.t, storedType)

			cols, rows := got.Dims()
			assert.EqualValues(t, 10, cols)
			assert.EqualValues(t, 9, rows)
			for row := int64(0); row < rows; row++ {
				for col := int64(0); col < cols; col++ {
					assert.Equal(t, m.Get(col, row), got.Get(col, row),
						"value mismatch at (%d, %d)", col, row)
				}
			}
		})
	}
}

func TestWriteMatrixStoresTransposedShape(t *testing.T) {
	w := initializedContainer(t)
	require.NoError(t, WriteMatrix[float64](w, NewPath(FieldX), testMatrix(t), Strict, TypeCSRMatrix))

	var shape []int64
	require.NoError(t, w.GetAttr("/X", "shape", &shape))
	assert.Equal(t, []int64{9, 10}, shape, "stored shape is [nObs, nVar]")

	assert.True(t, w.IsDataset("/X/data"))
	assert.True(t, w.IsDataset("/X/indices"))
	assert.True(t, w.IsDataset("/X/indptr"))
}

func TestWriteMatrixRefusesOverwrite(t *testing.T) {
	w := initializedContainer(t)
	p := NewPath(FieldX)
	require.NoError(t, WriteMatrix[float64](w, p, testMatrix(t), Strict, TypeCSRMatrix))

	err := WriteMatrix[float64](w, p, testMatrix(t), Strict, TypeCSRMatrix)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))
}

func TestReadMatrixWithoutMetadataAssumesDense(t *testing.T) {
	w := initializedContainer(t)

	// A dataset written without encoding attributes, as older tools do.
	ds, err := store.NewDataset([]int64{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	require.NoError(t, w.WriteDataset("/layers/raw", ds))

	got, err := ReadMatrix[float64](w, NewPath(FieldLayers, "raw"))
	require.NoError(t, err)
	cols, rows := got.Dims()
	assert.EqualValues(t, 3, cols)
	assert.EqualValues(t, 2, rows)
	assert.Equal(t, 6.0, got.Get(2, 1))
}

func TestReadMatrixRejectsNonNumericalTypes(t *testing.T) {
	w := initializedContainer(t)
	_, err := ReadMatrix[float64](w, NewPath(FieldObs))
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupported))
}

func TestReadMatrixConvertsElementType(t *testing.T) {
	w := initializedContainer(t)
	require.NoError(t, WriteMatrix[float64](w, NewPath(FieldX), testMatrix(t), Strict, TypeCSRMatrix))

	got, err := ReadMatrix[float32](w, NewPath(FieldX))
	require.NoError(t, err)
	assert.Equal(t, float32(1), got.Get(2, 0))
}

func TestDataFrameColumnWorkflow(t *testing.T) {
	w := initializedContainer(t)
	obs := NewPath(FieldObs)

	columns, err := DataFrameColumns(w, obs)
	require.NoError(t, err)
	assert.Empty(t, columns, "a fresh frame has no columns")

	require.NoError(t, WriteStringArray(w, obs.Append("cell_type"),
		[]string{"t", "b", "t", "t", "nk", "b", "t", "b", "nk"}, Strict, TypeStringArray))

	require.NoError(t, WriteStringArray(w, obs.Append("sample"),
		[]string{"s1", "s1", "s1", "s2", "s2", "s2", "s3", "s3", "s3"}, Strict, TypeCategoricalArray))

	columns, err = DataFrameColumns(w, obs)
	require.NoError(t, err)
	assert.Equal(t, []string{"cell_type", "sample"}, columns, "column order follows write order")

	cellTypes, err := ReadStringArray(w, obs.Append("cell_type"))
	require.NoError(t, err)
	assert.Equal(t, []string{"t", "b", "t", "t", "nk", "b", "t", "b", "nk"}, cellTypes)

	samples, err := ReadStringArray(w, obs.Append("sample"))
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s1", "s1", "s2", "s2", "s2", "s3", "s3", "s3"}, samples)
}

func TestCategoricalStoresCodesAndCategories(t *testing.T) {
	w := initializedContainer(t)
	p := NewPath(FieldUns, "batch")
	require.NoError(t, WriteStringArray(w, p, []string{"x", "y", "x"}, Strict, TypeCategoricalArray))

	storedType, err := FieldTypeAt(w, p)
	require.NoError(t, err)
	assert.Equal(t, TypeCategoricalArray, storedType)

	cats, err := w.ReadDataset("/uns/batch/categories")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, cats.Data)

	codes, err := w.ReadDataset("/uns/batch/codes")
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 0}, codes.Data)
}

func TestWriteStringArrayRefusesOverwrite(t *testing.T) {
	w := initializedContainer(t)
	p := NewPath(FieldObs, "cluster")
	values := names("c", 9)
	require.NoError(t, WriteStringArray(w, p, values, Strict, TypeStringArray))

	err := WriteStringArray(w, p, values, Strict, TypeStringArray)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))

	columns, err := DataFrameColumns(w, NewPath(FieldObs))
	require.NoError(t, err)
	assert.Equal(t, []string{"cluster"}, columns)
}

func TestDataFrameColumnLengthIsChecked(t *testing.T) {
	w := initializedContainer(t)
	err := WriteStringArray(w, NewPath(FieldObs, "too_short"),
		[]string{"a", "b"}, Strict, TypeStringArray)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestListDatasets(t *testing.T) {
	w := initializedContainer(t)
	require.NoError(t, WriteMatrix[float64](w, NewPath(FieldLayers, "counts"), testMatrix(t), Strict, TypeCSRMatrix))
	require.NoError(t, WriteMatrix[float64](w, NewPath(FieldLayers, "scaled"), testMatrix(t), Strict, TypeDenseArray))

	datasets, err := ListDatasets(w, NewPath(FieldLayers))
	require.NoError(t, err)
	assert.Equal(t, map[string]FieldType{
		"/layers/counts": TypeCSRMatrix,
		"/layers/scaled": TypeDenseArray,
	}, datasets)

	// Non-group nodes and absent nodes yield empty maps.
	datasets, err = ListDatasets(w, NewPath(FieldX))
	require.NoError(t, err)
	assert.Empty(t, datasets)
}

func TestContainerOnFilesystemStore(t *testing.T) {
	fs := testutil.TempStore(t, nil)

	require.NoError(t, Initialize(fs, names("obs", 9), names("var", 10)))
	require.NoError(t, WriteMatrix[float64](fs, NewPath(FieldX), testMatrix(t), Strict, TypeCSRMatrix))

	assert.True(t, IsValid(fs))

	got, err := ReadMatrix[float64](fs, NewPath(FieldX))
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Get(2, 0))
	assert.Equal(t, 0.0, got.Get(3, 0))
	assert.EqualValues(t, 5, got.NNZ())
}
