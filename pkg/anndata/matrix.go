package anndata

import (
	"go.uber.org/zap"

	"github.com/JaneliaSciComp/go-anndata/pkg/errors"
	"github.com/JaneliaSciComp/go-anndata/pkg/logger"
	"github.com/JaneliaSciComp/go-anndata/pkg/sparse"
	"github.com/JaneliaSciComp/go-anndata/pkg/store"
)

const shapeKey = "shape"

// MatrixType maps a matrix layout to its stored encoding, for callers
// that want to persist a matrix in the layout it already has.
func MatrixType[T sparse.Number](m *sparse.Matrix[T]) FieldType {
	switch m.Layout() {
	case sparse.CSR:
		return TypeCSRMatrix
	case sparse.CSC:
		return TypeCSCMatrix
	default:
		return TypeDenseArray
	}
}

// ReadMatrix reads a numerical array (dense, csr, or csc) at path. A node
// without encoding metadata is read as a dense array with a logged
// warning, matching what older writers produced. Element values are
// converted to T.
func ReadMatrix[T sparse.Number](r store.Reader, p Path) (*sparse.Matrix[T], error) {
	t, err := FieldTypeAt(r, p)
	if err != nil {
		return nil, err
	}

	switch t {
	case TypeMissing:
		logger.Warn("array is missing encoding metadata, assuming dense array",
			zap.String("path", p.String()))
		return readDense[T](r, p)
	case TypeDenseArray:
		return readDense[T](r, p)
	case TypeCSRMatrix:
		return readCompressed[T](r, p, sparse.CSR)
	case TypeCSCMatrix:
		return readCompressed[T](r, p, sparse.CSC)
	default:
		return nil, errors.Newf(errors.ErrorTypeUnsupported,
			"reading numerical array data from %s not supported", t)
	}
}

func readDense[T sparse.Number](r store.Reader, p Path) (*sparse.Matrix[T], error) {
	ds, err := r.ReadDataset(p.String())
	if err != nil {
		return nil, err
	}
	values, err := toNumericSlice[T](ds.Data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "decoding dense array").
			WithDetail("path", p.String())
	}

	// Stored shape is [rows, cols]; 1-D datasets are single-row.
	var cols, rows int64
	switch len(ds.Shape) {
	case 1:
		cols, rows = ds.Shape[0], 1
	case 2:
		cols, rows = ds.Shape[1], ds.Shape[0]
	default:
		return nil, errors.Newf(errors.ErrorTypeUnsupported,
			"dense array at '%s' has %d dimensions, want 1 or 2", p, len(ds.Shape))
	}
	return sparse.NewDense(cols, rows, values)
}

func readCompressed[T sparse.Number](r store.Reader, p Path, layout sparse.Layout) (*sparse.Matrix[T], error) {
	var shape []int64
	if err := r.GetAttr(p.String(), shapeKey, &shape); err != nil {
		return nil, err
	}
	if len(shape) != 2 {
		return nil, errors.Newf(errors.ErrorTypeData,
			"compressed matrix at '%s' has shape attribute of length %d, want 2", p, len(shape))
	}

	dataDs, err := r.ReadDataset(p.Append("data").String())
	if err != nil {
		return nil, err
	}
	data, err := toNumericSlice[T](dataDs.Data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "decoding sparse values").
			WithDetail("path", p.String())
	}

	indices, err := readIndexBuffer(r, p, "indices")
	if err != nil {
		return nil, err
	}
	indptr, err := readIndexBuffer(r, p, "indptr")
	if err != nil {
		return nil, err
	}

	// The stored shape is [rows, cols].
	cols, rows := shape[1], shape[0]
	if layout == sparse.CSR {
		return sparse.NewCSR(cols, rows, data, indices, indptr)
	}
	return sparse.NewCSC(cols, rows, data, indices, indptr)
}

func readIndexBuffer(r store.Reader, p Path, name string) ([]int64, error) {
	ds, err := r.ReadDataset(p.Append(name).String())
	if err != nil {
		return nil, err
	}
	buf, err := toInt64Slice(ds.Data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "decoding sparse index buffer").
			WithDetail("path", p.Append(name).String())
	}
	return buf, nil
}

// WriteMatrix writes a numerical array at path with the given target
// encoding, converting between layouts when the matrix and the target
// type disagree. The write is validated by the checker first; writing
// over an existing node is an error.
func WriteMatrix[T sparse.Number](w store.Writer, p Path, m *sparse.Matrix[T], c Checker, t FieldType) error {
	if err := EnsureNumericalArray(t); err != nil {
		return err
	}

	cols, rows := m.Dims()
	shape := []int64{rows, cols}
	if err := c.Check(w, p, t, shape); err != nil {
		return err
	}
	if w.Exists(p.String()) {
		return errors.Newf(errors.ErrorTypeConflict, "dataset '%s' already exists", p)
	}

	switch t {
	case TypeDenseArray:
		dense := sparse.ToDense[T](m)
		ds, err := store.NewDataset(shape, dense.Data())
		if err != nil {
			return err
		}
		if err := w.WriteDataset(p.String(), ds); err != nil {
			return err
		}
	case TypeCSRMatrix, TypeCSCMatrix:
		if err := writeCompressed(w, p, m, t); err != nil {
			return err
		}
	}

	if err := setFieldType(w, p, t); err != nil {
		return err
	}
	return conditionallyAddToDataFrame(w, p)
}

func writeCompressed[T sparse.Number](w store.Writer, p Path, m *sparse.Matrix[T], t FieldType) error {
	layout := sparse.CSR
	if t == TypeCSCMatrix {
		layout = sparse.CSC
	}
	compressed, err := sparse.Compress[T](m, layout)
	if err != nil {
		return err
	}

	if err := w.CreateGroup(p.String()); err != nil {
		return err
	}

	dataDs, err := store.NewDataset([]int64{compressed.NNZ()}, compressed.Data())
	if err != nil {
		return err
	}
	if err := w.WriteDataset(p.Append("data").String(), dataDs); err != nil {
		return err
	}

	indicesDs, err := store.NewDataset([]int64{compressed.NNZ()}, compressed.Indices())
	if err != nil {
		return err
	}
	if err := w.WriteDataset(p.Append("indices").String(), indicesDs); err != nil {
		return err
	}

	indptr := compressed.Indptr()
	indptrDs, err := store.NewDataset([]int64{int64(len(indptr))}, indptr)
	if err != nil {
		return err
	}
	if err := w.WriteDataset(p.Append("indptr").String(), indptrDs); err != nil {
		return err
	}

	cols, rows := compressed.Dims()
	return w.SetAttr(p.String(), shapeKey, []int64{rows, cols})
}

// toNumericSlice converts any stored numeric buffer to []T.
func toNumericSlice[T sparse.Number](data interface{}) ([]T, error) {
	if v, ok := data.([]T); ok {
		return v, nil
	}
	switch v := data.(type) {
	case []float32:
		return castSlice[float32, T](v), nil
	case []float64:
		return castSlice[float64, T](v), nil
	case []int8:
		return castSlice[int8, T](v), nil
	case []int16:
		return castSlice[int16, T](v), nil
	case []int32:
		return castSlice[int32, T](v), nil
	case []int64:
		return castSlice[int64, T](v), nil
	case []uint8:
		return castSlice[uint8, T](v), nil
	case []uint16:
		return castSlice[uint16, T](v), nil
	case []uint32:
		return castSlice[uint32, T](v), nil
	case []uint64:
		return castSlice[uint64, T](v), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeData, "buffer holds %T, not numbers", data)
	}
}

func castSlice[S, T sparse.Number](in []S) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = T(v)
	}
	return out
}

// toInt64Slice converts any stored integer buffer to []int64.
func toInt64Slice(data interface{}) ([]int64, error) {
	switch v := data.(type) {
	case []int64:
		return v, nil
	case []int8:
		return castSlice[int8, int64](v), nil
	case []int16:
		return castSlice[int16, int64](v), nil
	case []int32:
		return castSlice[int32, int64](v), nil
	case []uint8:
		return castSlice[uint8, int64](v), nil
	case []uint16:
		return castSlice[uint16, int64](v), nil
	case []uint32:
		return castSlice[uint32, int64](v), nil
	case []uint64:
		return castSlice[uint64, int64](v), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeData, "buffer holds %T, not integers", data)
	}
}
