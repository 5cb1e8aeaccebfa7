package anndata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeFromEncoding(t *testing.T) {
	got, err := TypeFromEncoding("csr_matrix", "0.1.0")
	require.NoError(t, err)
	assert.Equal(t, TypeCSRMatrix, got)

	got, err = TypeFromEncoding("dataframe", "0.2.0")
	require.NoError(t, err)
	assert.Equal(t, TypeDataFrame, got)
}

func TestMissingEncodingIsNotAnError(t *testing.T) {
	for _, pair := range [][2]string{{"", ""}, {"array", ""}, {"", "0.2.0"}} {
		got, err := TypeFromEncoding(pair[0], pair[1])
		require.NoError(t, err)
		assert.Equal(t, TypeMissing, got)
	}
}

func TestUnknownEncodingIsAnError(t *testing.T) {
	_, err := TypeFromEncoding("rec-array", "0.1.0")
	assert.Error(t, err)

	// A known encoding with a wrong version is unknown too.
	_, err = TypeFromEncoding("csr_matrix", "9.9.9")
	assert.Error(t, err)
}

func TestEncodingRoundTrip(t *testing.T) {
	for _, ft := range []FieldType{
		TypeAnnData, TypeDenseArray, TypeCSRMatrix, TypeCSCMatrix, TypeDataFrame,
		TypeMapping, TypeNumericScalar, TypeStringScalar, TypeCategoricalArray,
		TypeStringArray, TypeNullableInteger, TypeNullableBool,
	} {
		got, err := TypeFromEncoding(ft.Encoding(), ft.Version())
		require.NoError(t, err)
		assert.Equal(t, ft, got)
	}
}

func TestEnsureNumericalArray(t *testing.T) {
	assert.NoError(t, EnsureNumericalArray(TypeDenseArray))
	assert.NoError(t, EnsureNumericalArray(TypeCSRMatrix))
	assert.NoError(t, EnsureNumericalArray(TypeCSCMatrix))
	assert.Error(t, EnsureNumericalArray(TypeStringArray))
	assert.Error(t, EnsureNumericalArray(TypeMissing))
}

func TestEnsureStringArray(t *testing.T) {
	assert.NoError(t, EnsureStringArray(TypeStringArray))
	assert.NoError(t, EnsureStringArray(TypeCategoricalArray))
	assert.Error(t, EnsureStringArray(TypeDenseArray))
}
