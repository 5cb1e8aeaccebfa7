// Package anndata reads, writes, and validates AnnData containers on top
// of a hierarchical array store. A container is a fixed set of top-level
// fields (X, layers, obs, obsm, obsp, var, varm, varp, uns) whose
// contents are typed through "encoding-type"/"encoding-version" attribute
// pairs and constrained against the container's observation and variable
// counts.
//
// All write operations take a Checker policy explicitly. Use Strict
// unless there is a reason not to; NoChecks is for bootstrapping and
// repair.
package anndata

import (
	"github.com/JaneliaSciComp/go-anndata/pkg/errors"
	"github.com/JaneliaSciComp/go-anndata/pkg/store"
)

const (
	encodingKey    = "encoding-type"
	versionKey     = "encoding-version"
	columnOrderKey = "column-order"
	indexKey       = "_index"

	defaultIndexName = "_index"
)

// FieldTypeAt resolves the encoding of the node at path. A node without
// encoding metadata yields TypeMissing, not an error; an unknown
// encoding pair is an error.
func FieldTypeAt(r store.Reader, p Path) (FieldType, error) {
	var encoding, version string
	if err := r.GetAttr(p.String(), encodingKey, &encoding); err != nil {
		if errors.IsType(err, errors.ErrorTypeNotFound) {
			return TypeMissing, nil
		}
		return TypeMissing, err
	}
	if err := r.GetAttr(p.String(), versionKey, &version); err != nil {
		if errors.IsType(err, errors.ErrorTypeNotFound) {
			return TypeMissing, nil
		}
		return TypeMissing, err
	}
	return TypeFromEncoding(encoding, version)
}

func setFieldType(w store.Writer, p Path, t FieldType) error {
	if err := w.SetAttr(p.String(), encodingKey, t.Encoding()); err != nil {
		return err
	}
	return w.SetAttr(p.String(), versionKey, t.Version())
}

// Initialize lays out an empty AnnData container: the root metadata, the
// obs and var data frames with the given index names, and the six
// mapping groups. The target store must be empty.
func Initialize(w store.Writer, obsNames, varNames []string) error {
	children, err := w.List("/")
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return errors.New(errors.ErrorTypeConflict, "cannot initialize anndata: target container is not empty")
	}

	if err := w.CreateGroup("/"); err != nil {
		return err
	}
	if err := setFieldType(w, Root, TypeAnnData); err != nil {
		return err
	}

	if err := CreateDataFrame(w, NewPath(FieldObs), obsNames, NoChecks); err != nil {
		return err
	}
	if err := CreateDataFrame(w, NewPath(FieldVar), varNames, NoChecks); err != nil {
		return err
	}
	for _, f := range []Field{FieldLayers, FieldObsm, FieldObsp, FieldVarm, FieldVarp, FieldUns} {
		if err := CreateMapping(w, NewPath(f)); err != nil {
			return err
		}
	}
	return nil
}

// IsValid reports whether the store holds a well-formed AnnData
// container: root metadata, obs and var data frames, and all six mapping
// groups.
func IsValid(r store.Reader) bool {
	rootType, err := FieldTypeAt(r, Root)
	if err != nil || rootType != TypeAnnData {
		return false
	}
	for _, f := range []Field{FieldObs, FieldVar} {
		p := NewPath(f)
		if !r.Exists(p.String()) || !isDataFrame(r, p) {
			return false
		}
	}
	for _, f := range []Field{FieldLayers, FieldObsm, FieldObsp, FieldVarm, FieldVarp, FieldUns} {
		p := NewPath(f)
		t, err := FieldTypeAt(r, p)
		if !r.Exists(p.String()) || err != nil || t != TypeMapping {
			return false
		}
	}
	return true
}

func isDataFrame(r store.Reader, p Path) bool {
	t, err := FieldTypeAt(r, p)
	return err == nil && t == TypeDataFrame
}

// NObs returns the number of observations, the index size of the obs
// data frame.
func NObs(r store.Reader) (int64, error) {
	return DataFrameIndexSize(r, NewPath(FieldObs))
}

// NVar returns the number of variables, the index size of the var data
// frame.
func NVar(r store.Reader) (int64, error) {
	return DataFrameIndexSize(r, NewPath(FieldVar))
}

// CreateMapping creates a group with dict encoding at path.
func CreateMapping(w store.Writer, p Path) error {
	if err := w.CreateGroup(p.String()); err != nil {
		return err
	}
	return setFieldType(w, p, TypeMapping)
}

// ListDatasets maps the children of a mapping or data frame group to
// their field types, keyed by path string. Other nodes, including absent
// ones, yield an empty map.
func ListDatasets(r store.Reader, p Path) (map[string]FieldType, error) {
	datasets := make(map[string]FieldType)
	if !r.Exists(p.String()) {
		return datasets, nil
	}

	parentType, err := FieldTypeAt(r, p)
	if err != nil {
		return nil, err
	}
	if parentType != TypeMapping && parentType != TypeDataFrame {
		return datasets, nil
	}

	children, err := r.List(p.String())
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		sub := p.Append(child)
		t, err := FieldTypeAt(r, sub)
		if err != nil {
			return nil, err
		}
		datasets[sub.String()] = t
	}
	return datasets, nil
}
