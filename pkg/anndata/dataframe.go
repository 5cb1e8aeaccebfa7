package anndata

import (
	"math"
	"sort"

	"github.com/JaneliaSciComp/go-anndata/pkg/errors"
	"github.com/JaneliaSciComp/go-anndata/pkg/store"
)

// CreateDataFrame creates a data frame group at path with the given
// index. The index is written as a string array under the name recorded
// in the group's "_index" attribute.
func CreateDataFrame(w store.Writer, p Path, index []string, c Checker) error {
	// The column count of a frame is open-ended, so the dimension check
	// only pins the row count.
	if err := c.Check(w, p, TypeDataFrame, []int64{int64(len(index)), math.MaxInt64}); err != nil {
		return err
	}

	if err := w.CreateGroup(p.String()); err != nil {
		return err
	}
	if err := setFieldType(w, p, TypeDataFrame); err != nil {
		return err
	}
	if err := w.SetAttr(p.String(), columnOrderKey, []string{}); err != nil {
		return err
	}
	if err := w.SetAttr(p.String(), indexKey, defaultIndexName); err != nil {
		return err
	}

	// The index itself is exempt from checking: the frame does not exist
	// in a consistent state until it is written.
	return WriteStringArray(w, p.Append(defaultIndexName), index, NoChecks, TypeStringArray)
}

// dataFrameIndexPath resolves the path of a frame's index dataset from
// its "_index" attribute, defaulting to "_index".
func dataFrameIndexPath(r store.Reader, p Path) Path {
	indexName := defaultIndexName
	var configured string
	if err := r.GetAttr(p.String(), indexKey, &configured); err == nil && configured != "" {
		indexName = configured
	}
	return p.Append(indexName)
}

// DataFrameIndexSize returns the length of the index of the data frame
// at path.
func DataFrameIndexSize(r store.Reader, p Path) (int64, error) {
	indexPath := dataFrameIndexPath(r, p)
	ds, err := r.ReadDataset(indexPath.String())
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeData, "reading data frame index").
			WithDetail("path", p.String())
	}
	if len(ds.Shape) == 0 {
		return 0, errors.New(errors.ErrorTypeData, "data frame index has no shape").
			WithDetail("path", indexPath.String())
	}
	return ds.Shape[0], nil
}

// ReadDataFrameIndex reads the index of the data frame at path.
func ReadDataFrameIndex(r store.Reader, p Path) ([]string, error) {
	return ReadStringArray(r, dataFrameIndexPath(r, p))
}

// DataFrameColumns returns the column names of the data frame at path,
// as recorded in its "column-order" attribute. Frames written by tools
// that omit the attribute fall back to listing the group. The index is
// never included.
func DataFrameColumns(r store.Reader, p Path) ([]string, error) {
	if !r.Exists(p.String()) {
		return nil, nil
	}

	var columns []string
	if err := r.GetAttr(p.String(), columnOrderKey, &columns); err != nil {
		// Some writers store the empty column list as "".
		var sentinel string
		if sErr := r.GetAttr(p.String(), columnOrderKey, &sentinel); sErr == nil {
			if sentinel == "" {
				return nil, nil
			}
			return []string{sentinel}, nil
		}
		if !errors.IsType(err, errors.ErrorTypeNotFound) {
			return nil, err
		}
		listed, err := r.List(p.String())
		if err != nil {
			return nil, err
		}
		columns = listed
		sort.Strings(columns)
	}

	indexName := store.Base(dataFrameIndexPath(r, p).String())
	out := columns[:0]
	for _, c := range columns {
		if c != indexName {
			out = append(out, c)
		}
	}
	return out, nil
}

// conditionallyAddToDataFrame appends the leaf to the parent's column
// order when the parent is a data frame and the leaf is not the index.
func conditionallyAddToDataFrame(w store.Writer, p Path) error {
	parent := p.Parent()
	if parent.IsRoot() || !isDataFrame(w, parent) {
		return nil
	}
	if p.Equal(dataFrameIndexPath(w, parent)) {
		return nil
	}

	columns, err := DataFrameColumns(w, parent)
	if err != nil {
		return err
	}
	leaf := p.Leaf()
	for _, c := range columns {
		if c == leaf {
			return nil
		}
	}
	return w.SetAttr(parent.String(), columnOrderKey, append(columns, leaf))
}

// WriteStringArray writes a string array at path, either as a plain
// string array or converted to categorical encoding. Columns written
// into a data frame are added to its column order.
func WriteStringArray(w store.Writer, p Path, values []string, c Checker, t FieldType) error {
	if err := EnsureStringArray(t); err != nil {
		return err
	}
	if err := c.Check(w, p, t, []int64{int64(len(values))}); err != nil {
		return err
	}
	if w.Exists(p.String()) {
		return errors.Newf(errors.ErrorTypeConflict, "dataset '%s' already exists", p)
	}

	switch t {
	case TypeStringArray:
		ds, err := store.NewDataset([]int64{int64(len(values))}, values)
		if err != nil {
			return err
		}
		if err := w.WriteDataset(p.String(), ds); err != nil {
			return err
		}
		if err := setFieldType(w, p, t); err != nil {
			return err
		}
	case TypeCategoricalArray:
		if err := writeCategorical(w, p, values); err != nil {
			return err
		}
	}
	return conditionallyAddToDataFrame(w, p)
}

// writeCategorical stores values as a categorical group: the unique
// categories in order of first appearance, and one int32 code per value.
func writeCategorical(w store.Writer, p Path, values []string) error {
	codeOf := make(map[string]int32)
	var categories []string
	codes := make([]int32, len(values))
	for i, v := range values {
		code, ok := codeOf[v]
		if !ok {
			code = int32(len(categories))
			codeOf[v] = code
			categories = append(categories, v)
		}
		codes[i] = code
	}

	if err := w.CreateGroup(p.String()); err != nil {
		return err
	}
	if err := setFieldType(w, p, TypeCategoricalArray); err != nil {
		return err
	}
	if err := w.SetAttr(p.String(), "ordered", false); err != nil {
		return err
	}

	catDs, err := store.NewDataset([]int64{int64(len(categories))}, categories)
	if err != nil {
		return err
	}
	if err := w.WriteDataset(p.Append("categories").String(), catDs); err != nil {
		return err
	}
	if err := setFieldType(w, p.Append("categories"), TypeStringArray); err != nil {
		return err
	}

	codeDs, err := store.NewDataset([]int64{int64(len(codes))}, codes)
	if err != nil {
		return err
	}
	if err := w.WriteDataset(p.Append("codes").String(), codeDs); err != nil {
		return err
	}
	return setFieldType(w, p.Append("codes"), TypeDenseArray)
}

// ReadStringArray reads a string or categorical array at path back as a
// flat string slice.
func ReadStringArray(r store.Reader, p Path) ([]string, error) {
	t, err := FieldTypeAt(r, p)
	if err != nil {
		return nil, err
	}

	switch t {
	case TypeStringArray:
		ds, err := r.ReadDataset(p.String())
		if err != nil {
			return nil, err
		}
		values, ok := ds.Data.([]string)
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeData,
				"string array at '%s' holds %T, not strings", p, ds.Data)
		}
		return values, nil
	case TypeCategoricalArray:
		return readCategorical(r, p)
	default:
		return nil, errors.Newf(errors.ErrorTypeUnsupported, "reading string array for '%s' not supported", t)
	}
}

func readCategorical(r store.Reader, p Path) ([]string, error) {
	catDs, err := r.ReadDataset(p.Append("categories").String())
	if err != nil {
		return nil, err
	}
	categories, ok := catDs.Data.([]string)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeData,
			"categories of '%s' hold %T, not strings", p, catDs.Data)
	}

	codeDs, err := r.ReadDataset(p.Append("codes").String())
	if err != nil {
		return nil, err
	}
	codes, err := toInt64Slice(codeDs.Data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "decoding categorical codes").
			WithDetail("path", p.String())
	}

	values := make([]string, len(codes))
	for i, code := range codes {
		if code < 0 || code >= int64(len(categories)) {
			return nil, errors.Newf(errors.ErrorTypeData,
				"categorical code %d out of range for %d categories at '%s'", code, len(categories), p)
		}
		values[i] = categories[code]
	}
	return values, nil
}
