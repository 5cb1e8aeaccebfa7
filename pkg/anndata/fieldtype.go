package anndata

import (
	"fmt"

	"github.com/JaneliaSciComp/go-anndata/pkg/errors"
)

// FieldType is the encoding of a group or dataset in an AnnData
// container, persisted as the attribute pair "encoding-type" and
// "encoding-version". The zero value is TypeMissing: a node whose
// metadata is absent, which readers treat as a dense array rather than
// an error.
//
// Scalars and nullable arrays are recognized but not readable or
// writable yet.
type FieldType int

const (
	TypeMissing FieldType = iota
	TypeAnnData
	TypeDenseArray
	TypeCSRMatrix
	TypeCSCMatrix
	TypeDataFrame
	TypeMapping
	TypeNumericScalar
	TypeStringScalar
	TypeCategoricalArray
	TypeStringArray
	TypeNullableInteger
	TypeNullableBool
)

var fieldTypeEncodings = map[FieldType]struct{ encoding, version string }{
	TypeMissing:          {"missing", "missing"},
	TypeAnnData:          {"anndata", "0.1.0"},
	TypeDenseArray:       {"array", "0.2.0"},
	TypeCSRMatrix:        {"csr_matrix", "0.1.0"},
	TypeCSCMatrix:        {"csc_matrix", "0.1.0"},
	TypeDataFrame:        {"dataframe", "0.2.0"},
	TypeMapping:          {"dict", "0.1.0"},
	TypeNumericScalar:    {"numeric-scalar", "0.2.0"},
	TypeStringScalar:     {"string", "0.2.0"},
	TypeCategoricalArray: {"categorical", "0.2.0"},
	TypeStringArray:      {"string-array", "0.2.0"},
	TypeNullableInteger:  {"nullable-integer", "0.1.0"},
	TypeNullableBool:     {"nullable-bool", "0.1.0"},
}

// Encoding returns the "encoding-type" attribute value.
func (t FieldType) Encoding() string {
	return fieldTypeEncodings[t].encoding
}

// Version returns the "encoding-version" attribute value.
func (t FieldType) Version() string {
	return fieldTypeEncodings[t].version
}

func (t FieldType) String() string {
	return fmt.Sprintf("encoding: %s, version: %s", t.Encoding(), t.Version())
}

// TypeFromEncoding resolves an encoding/version attribute pair. A pair
// with either half absent resolves to TypeMissing; an unknown pair is an
// error.
func TypeFromEncoding(encoding, version string) (FieldType, error) {
	if encoding == "" || version == "" {
		return TypeMissing, nil
	}
	for t, e := range fieldTypeEncodings {
		if t != TypeMissing && e.encoding == encoding && e.version == version {
			return t, nil
		}
	}
	return TypeMissing, errors.Newf(errors.ErrorTypeUnsupported,
		"no known anndata field type with encoding %q and version %q", encoding, version)
}

// EnsureNumericalArray checks that t is a dense, csr, or csc array type.
func EnsureNumericalArray(t FieldType) error {
	if t != TypeDenseArray && t != TypeCSRMatrix && t != TypeCSCMatrix {
		return errors.Newf(errors.ErrorTypeValidation, "numerical array type expected, but got %s", t)
	}
	return nil
}

// EnsureStringArray checks that t is a string or categorical array type.
func EnsureStringArray(t FieldType) error {
	if t != TypeStringArray && t != TypeCategoricalArray {
		return errors.Newf(errors.ErrorTypeValidation, "string array type expected, but got %s", t)
	}
	return nil
}
