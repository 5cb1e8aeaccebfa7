package anndata

import (
	"github.com/JaneliaSciComp/go-anndata/pkg/errors"
	"github.com/JaneliaSciComp/go-anndata/pkg/store"
)

// Checker validates a pending write against the container's schema. Write
// operations take the policy explicitly; there is no ambient default, so
// two goroutines can write with different policies to the same store.
type Checker interface {
	// Check validates placing an array of the given type and shape at
	// path. Shape follows the stored convention: shape[0] counts rows
	// (observations), shape[1] columns (variables).
	Check(r store.Reader, p Path, t FieldType, shape []int64) error
}

// The four policies: Strict checks types and dimensions, TypeOnly and
// DimensionOnly check one of the two, NoChecks accepts everything.
var (
	Strict        Checker = checkPolicy{types: true, dims: true}
	TypeOnly      Checker = checkPolicy{types: true}
	DimensionOnly Checker = checkPolicy{dims: true}
	NoChecks      Checker = checkPolicy{}
)

// dataFrameChildTypes are the only types a data frame column may have.
var dataFrameChildTypes = []FieldType{TypeStringArray, TypeCategoricalArray, TypeDenseArray}

type checkPolicy struct {
	types bool
	dims  bool
}

func (c checkPolicy) Check(r store.Reader, p Path, t FieldType, shape []int64) error {
	if !c.types && !c.dims {
		return nil
	}
	if p.IsRoot() {
		return errors.New(errors.ErrorTypeValidation, "cannot write an array at the container root")
	}

	parent := p.Parent()
	parentType, err := FieldTypeAt(r, parent)
	if err != nil {
		return err
	}

	if c.types && !satisfiesTypeConstraints(p.Field(), t, parentType) {
		return errors.Newf(errors.ErrorTypeValidation,
			"cannot put '%s' at '%s' because it is not allowed by '%s' or the parent type ('%s')",
			t, p, p.Field(), parentType)
	}

	if !c.dims {
		return nil
	}

	if parentType == TypeDataFrame {
		indexSize, err := DataFrameIndexSize(r, parent)
		if err != nil {
			return err
		}
		if !satisfiesDataFrameConstraints(shape, indexSize) {
			return errors.Newf(errors.ErrorTypeValidation,
				"dimensions %v not compatible with data frame constraints of '%s' (index size=%d)",
				shape, parent, indexSize)
		}
		return nil
	}

	nObs, err := NObs(r)
	if err != nil {
		return err
	}
	nVar, err := NVar(r)
	if err != nil {
		return err
	}
	if !satisfiesDimensionConstraints(p.Field(), shape, nObs, nVar) {
		return errors.Newf(errors.ErrorTypeValidation,
			"dimensions %v not compatible with nObs=%d and nVar=%d because of the constraints enforced by '%s'",
			shape, nObs, nVar, p.Field())
	}
	return nil
}

func satisfiesTypeConstraints(field Field, t, parentType FieldType) bool {
	switch parentType {
	case TypeAnnData:
		return field.CanBeA(t)
	case TypeDataFrame:
		for _, allowed := range dataFrameChildTypes {
			if t == allowed {
				return true
			}
		}
		return false
	default:
		return field.CanHaveAsChild(t)
	}
}

func satisfiesDimensionConstraints(field Field, shape []int64, nObs, nVar int64) bool {
	switch field {
	case FieldX, FieldLayers:
		return is2D(shape) && shape[0] == nObs && shape[1] == nVar
	case FieldObs, FieldVar:
		// Constraints are given by the data frame.
		return true
	case FieldObsm:
		return is2D(shape) && shape[0] == nObs && shape[1] > 1
	case FieldVarm:
		return is2D(shape) && shape[0] == nVar && shape[1] > 1
	case FieldObsp:
		return is2D(shape) && shape[0] == nObs && shape[1] == nObs
	case FieldVarp:
		return is2D(shape) && shape[0] == nVar && shape[1] == nVar
	case FieldUns:
		return true
	default:
		return false
	}
}

// A data frame column must be 1-D and as long as the frame's index.
func satisfiesDataFrameConstraints(shape []int64, indexSize int64) bool {
	return is1D(shape) && shape[0] == indexSize
}

func is1D(shape []int64) bool {
	return len(shape) == 1 || (len(shape) == 2 && shape[1] == 1)
}

func is2D(shape []int64) bool {
	return len(shape) == 2
}
