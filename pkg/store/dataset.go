package store

import (
	"bytes"
	"encoding/binary"

	"github.com/JaneliaSciComp/go-anndata/pkg/errors"
)

// Dataset is an n-dimensional array with a row-major shape. Data holds the
// flat buffer as one of the supported slice types: []float32, []float64,
// []int8, []int16, []int32, []int64, []uint8, []uint16, []uint32,
// []uint64, or []string.
type Dataset struct {
	Shape []int64
	Data  interface{}
}

// NewDataset builds a dataset and checks that the buffer length matches
// the shape.
func NewDataset(shape []int64, data interface{}) (*Dataset, error) {
	ds := &Dataset{Shape: shape, Data: data}
	n, err := ds.dataLen()
	if err != nil {
		return nil, err
	}
	if want := ds.Len(); n != want {
		return nil, errors.Newf(errors.ErrorTypeData,
			"buffer length %d does not match shape (want %d elements)", n, want)
	}
	return ds, nil
}

// Len returns the number of elements implied by the shape.
func (d *Dataset) Len() int64 {
	n := int64(1)
	for _, extent := range d.Shape {
		n *= extent
	}
	return n
}

// DataType returns the element type name stored in dataset attributes.
func (d *Dataset) DataType() (string, error) {
	switch d.Data.(type) {
	case []float32:
		return "float32", nil
	case []float64:
		return "float64", nil
	case []int8:
		return "int8", nil
	case []int16:
		return "int16", nil
	case []int32:
		return "int32", nil
	case []int64:
		return "int64", nil
	case []uint8:
		return "uint8", nil
	case []uint16:
		return "uint16", nil
	case []uint32:
		return "uint32", nil
	case []uint64:
		return "uint64", nil
	case []string:
		return "string", nil
	default:
		return "", errors.Newf(errors.ErrorTypeUnsupported, "unsupported dataset element type %T", d.Data)
	}
}

func (d *Dataset) dataLen() (int64, error) {
	switch v := d.Data.(type) {
	case []float32:
		return int64(len(v)), nil
	case []float64:
		return int64(len(v)), nil
	case []int8:
		return int64(len(v)), nil
	case []int16:
		return int64(len(v)), nil
	case []int32:
		return int64(len(v)), nil
	case []int64:
		return int64(len(v)), nil
	case []uint8:
		return int64(len(v)), nil
	case []uint16:
		return int64(len(v)), nil
	case []uint32:
		return int64(len(v)), nil
	case []uint64:
		return int64(len(v)), nil
	case []string:
		return int64(len(v)), nil
	default:
		return 0, errors.Newf(errors.ErrorTypeUnsupported, "unsupported dataset element type %T", d.Data)
	}
}

// clone returns a deep copy so callers cannot alias store-owned buffers.
func (d *Dataset) clone() *Dataset {
	out := &Dataset{Shape: append([]int64(nil), d.Shape...)}
	switch v := d.Data.(type) {
	case []float32:
		out.Data = append([]float32(nil), v...)
	case []float64:
		out.Data = append([]float64(nil), v...)
	case []int8:
		out.Data = append([]int8(nil), v...)
	case []int16:
		out.Data = append([]int16(nil), v...)
	case []int32:
		out.Data = append([]int32(nil), v...)
	case []int64:
		out.Data = append([]int64(nil), v...)
	case []uint8:
		out.Data = append([]uint8(nil), v...)
	case []uint16:
		out.Data = append([]uint16(nil), v...)
	case []uint32:
		out.Data = append([]uint32(nil), v...)
	case []uint64:
		out.Data = append([]uint64(nil), v...)
	case []string:
		out.Data = append([]string(nil), v...)
	default:
		out.Data = v
	}
	return out
}

// encodeNumeric serializes a numeric buffer little-endian. String buffers
// are serialized as JSON by the filesystem store instead.
func encodeNumeric(data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, data); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "encoding dataset buffer")
	}
	return buf.Bytes(), nil
}

// decodeNumeric deserializes a little-endian numeric buffer of n elements
// of the named element type.
func decodeNumeric(dataType string, n int64, raw []byte) (interface{}, error) {
	var out interface{}
	switch dataType {
	case "float32":
		out = make([]float32, n)
	case "float64":
		out = make([]float64, n)
	case "int8":
		out = make([]int8, n)
	case "int16":
		out = make([]int16, n)
	case "int32":
		out = make([]int32, n)
	case "int64":
		out = make([]int64, n)
	case "uint8":
		out = make([]uint8, n)
	case "uint16":
		out = make([]uint16, n)
	case "uint32":
		out = make([]uint32, n)
	case "uint64":
		out = make([]uint64, n)
	default:
		return nil, errors.Newf(errors.ErrorTypeUnsupported, "unsupported dataset element type %q", dataType)
	}
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, out); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "decoding dataset buffer").
			WithDetail("dataType", dataType).
			WithDetail("elements", n)
	}
	return out, nil
}
