package anndata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaneliaSciComp/go-anndata/pkg/store"
)

// checkerContainer has 3 observations and 4 variables.
func checkerContainer(t *testing.T) store.Writer {
	t.Helper()
	w := store.NewMemory()
	require.NoError(t, Initialize(w, names("obs", 3), names("var", 4)))
	return w
}

func TestStrictChecksTypesAndDimensions(t *testing.T) {
	w := checkerContainer(t)

	assert.NoError(t, Strict.Check(w, NewPath(FieldX), TypeCSRMatrix, []int64{3, 4}))

	// Wrong type for the field.
	err := Strict.Check(w, NewPath(FieldX), TypeDataFrame, []int64{3, 4})
	assert.Error(t, err)

	// Right type, wrong dimensions.
	err = Strict.Check(w, NewPath(FieldX), TypeCSRMatrix, []int64{4, 3})
	assert.Error(t, err)
}

func TestTypeOnlyIgnoresDimensions(t *testing.T) {
	w := checkerContainer(t)

	assert.NoError(t, TypeOnly.Check(w, NewPath(FieldX), TypeCSRMatrix, []int64{99, 99}))
	assert.Error(t, TypeOnly.Check(w, NewPath(FieldX), TypeDataFrame, []int64{3, 4}))
}

func TestDimensionOnlyIgnoresTypes(t *testing.T) {
	w := checkerContainer(t)

	assert.NoError(t, DimensionOnly.Check(w, NewPath(FieldX), TypeDataFrame, []int64{3, 4}))
	assert.Error(t, DimensionOnly.Check(w, NewPath(FieldX), TypeCSRMatrix, []int64{99, 99}))
}

func TestNoChecksAcceptsEverything(t *testing.T) {
	w := checkerContainer(t)

	assert.NoError(t, NoChecks.Check(w, NewPath(FieldX), TypeStringScalar, []int64{99}))
}

func TestLayerConstraints(t *testing.T) {
	w := checkerContainer(t)

	assert.NoError(t, Strict.Check(w, NewPath(FieldLayers, "counts"), TypeDenseArray, []int64{3, 4}))
	assert.Error(t, Strict.Check(w, NewPath(FieldLayers, "counts"), TypeDenseArray, []int64{3, 5}),
		"layers must match nObs x nVar exactly")
	assert.Error(t, Strict.Check(w, NewPath(FieldLayers, "df"), TypeDataFrame, []int64{3, 4}),
		"layers cannot hold data frames")
}

func TestMultiDimensionalAnnotationConstraints(t *testing.T) {
	w := checkerContainer(t)

	assert.NoError(t, Strict.Check(w, NewPath(FieldObsm, "X_pca"), TypeDenseArray, []int64{3, 2}))
	assert.Error(t, Strict.Check(w, NewPath(FieldObsm, "X_pca"), TypeDenseArray, []int64{3, 1}),
		"obsm needs more than one trailing dimension")
	assert.Error(t, Strict.Check(w, NewPath(FieldObsm, "X_pca"), TypeDenseArray, []int64{4, 2}),
		"obsm rows must match nObs")

	assert.NoError(t, Strict.Check(w, NewPath(FieldVarm, "loadings"), TypeDenseArray, []int64{4, 2}))
	assert.Error(t, Strict.Check(w, NewPath(FieldVarm, "loadings"), TypeDenseArray, []int64{3, 2}))
}

func TestPairwiseConstraintsRequireSquareShapes(t *testing.T) {
	w := checkerContainer(t)

	assert.NoError(t, Strict.Check(w, NewPath(FieldObsp, "distances"), TypeCSRMatrix, []int64{3, 3}))
	assert.Error(t, Strict.Check(w, NewPath(FieldObsp, "distances"), TypeCSRMatrix, []int64{3, 4}),
		"obsp must be square in nObs")

	assert.NoError(t, Strict.Check(w, NewPath(FieldVarp, "corr"), TypeCSCMatrix, []int64{4, 4}))
	assert.Error(t, Strict.Check(w, NewPath(FieldVarp, "corr"), TypeCSCMatrix, []int64{3, 3}),
		"varp must be square in nVar")
}

func TestUnsIsUnconstrainedInDimensions(t *testing.T) {
	w := checkerContainer(t)
	assert.NoError(t, Strict.Check(w, NewPath(FieldUns, "meta"), TypeDenseArray, []int64{17}))
}

func TestDataFrameChildConstraints(t *testing.T) {
	w := checkerContainer(t)
	obs := NewPath(FieldObs)

	assert.NoError(t, Strict.Check(w, obs.Append("label"), TypeStringArray, []int64{3}))
	assert.NoError(t, Strict.Check(w, obs.Append("score"), TypeDenseArray, []int64{3}))
	assert.NoError(t, Strict.Check(w, obs.Append("col"), TypeDenseArray, []int64{3, 1}),
		"a trailing singleton dimension still counts as 1-D")

	assert.Error(t, Strict.Check(w, obs.Append("label"), TypeCSRMatrix, []int64{3}),
		"data frame columns cannot be sparse")
	assert.Error(t, Strict.Check(w, obs.Append("label"), TypeStringArray, []int64{4}),
		"column length must match the index")
	assert.Error(t, Strict.Check(w, obs.Append("label"), TypeStringArray, []int64{3, 2}),
		"columns must be one-dimensional")
}

func TestCheckRejectsRootWrites(t *testing.T) {
	w := checkerContainer(t)
	assert.Error(t, Strict.Check(w, Root, TypeDenseArray, []int64{3, 4}))
}
