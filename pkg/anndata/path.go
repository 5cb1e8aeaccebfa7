package anndata

import (
	"strings"

	"github.com/JaneliaSciComp/go-anndata/pkg/errors"
)

const pathSeparator = "/"

// Field identifies one of the nine top-level fields of an AnnData
// container. The set is closed: every path below the root starts with one
// of these.
type Field int

const (
	FieldX Field = iota
	FieldLayers
	FieldObs
	FieldObsm
	FieldObsp
	FieldVar
	FieldVarm
	FieldVarp
	FieldUns
)

var fieldNames = map[Field]string{
	FieldX:      "X",
	FieldLayers: "layers",
	FieldObs:    "obs",
	FieldObsm:   "obsm",
	FieldObsp:   "obsp",
	FieldVar:    "var",
	FieldVarm:   "varm",
	FieldVarp:   "varp",
	FieldUns:    "uns",
}

// Fields returns all container fields in canonical order.
func Fields() []Field {
	return []Field{
		FieldX, FieldLayers, FieldObs, FieldObsm, FieldObsp,
		FieldVar, FieldVarm, FieldVarp, FieldUns,
	}
}

func (f Field) String() string {
	return fieldNames[f]
}

// FieldFromString resolves a field name like "obsm" to its Field.
func FieldFromString(name string) (Field, error) {
	for f, n := range fieldNames {
		if n == name {
			return f, nil
		}
	}
	return 0, errors.Newf(errors.ErrorTypeValidation, "no known anndata field with name %q", name)
}

// allowedTypes lists the types the field itself may carry.
var allowedTypes = map[Field][]FieldType{
	FieldX:      {TypeDenseArray, TypeCSRMatrix, TypeCSCMatrix},
	FieldLayers: {TypeMapping},
	FieldObs:    {TypeDataFrame},
	FieldObsm:   {TypeMapping},
	FieldObsp:   {TypeMapping},
	FieldVar:    {TypeDataFrame},
	FieldVarm:   {TypeMapping},
	FieldVarp:   {TypeMapping},
	FieldUns:    {TypeMapping},
}

// allowedChildTypes lists the types that may be placed below the field.
// A nil entry means every type is allowed.
var allowedChildTypes = map[Field][]FieldType{
	FieldX:      {},
	FieldLayers: {TypeDenseArray, TypeCSRMatrix, TypeCSCMatrix},
	FieldObs:    nil,
	FieldObsm:   {TypeDenseArray, TypeCSRMatrix, TypeCSCMatrix, TypeDataFrame},
	FieldObsp:   {TypeDenseArray, TypeCSRMatrix, TypeCSCMatrix},
	FieldVar:    nil,
	FieldVarm:   {TypeDenseArray, TypeCSRMatrix, TypeCSCMatrix, TypeDataFrame},
	FieldVarp:   {TypeDenseArray, TypeCSRMatrix, TypeCSCMatrix},
	FieldUns:    nil,
}

// CanBeA reports whether the field itself may carry the given type.
func (f Field) CanBeA(t FieldType) bool {
	for _, allowed := range allowedTypes[f] {
		if allowed == t {
			return true
		}
	}
	return false
}

// CanHaveAsChild reports whether the given type may be placed somewhere
// below the field.
func (f Field) CanHaveAsChild(t FieldType) bool {
	allowed, ok := allowedChildTypes[f]
	if !ok {
		return false
	}
	if allowed == nil {
		return true
	}
	for _, a := range allowed {
		if a == t {
			return true
		}
	}
	return false
}

// Path addresses a node inside an AnnData container: a field plus zero or
// more keys below it. The zero value is not meaningful; use NewPath,
// ParsePath, or Root. Paths are immutable values.
//
// NewPath(FieldObs, "a", "b") addresses the same node as the Python
// expression adata.obs["a/b"].
type Path struct {
	field  Field
	keys   []string
	isRoot bool
}

// Root is the container root "/". It has no field and no keys.
var Root = Path{isRoot: true}

// NewPath builds a path from a field and keys.
func NewPath(field Field, keys ...string) Path {
	return Path{field: field, keys: append([]string(nil), keys...)}
}

// ParsePath parses a slash-separated path like "/obs/cluster". The bare
// separator parses to Root. The first segment must name a container
// field.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, errors.New(errors.ErrorTypeValidation, "invalid path: empty string")
	}
	if strings.TrimSpace(s) == pathSeparator {
		return Root, nil
	}

	s = strings.TrimPrefix(s, pathSeparator)
	parts := strings.Split(s, pathSeparator)
	field, err := FieldFromString(parts[0])
	if err != nil {
		return Path{}, errors.Wrap(err, errors.ErrorTypeValidation, "invalid path").
			WithDetail("path", s)
	}
	return Path{field: field, keys: append([]string(nil), parts[1:]...)}, nil
}

// IsRoot reports whether the path is the container root.
func (p Path) IsRoot() bool {
	return p.isRoot
}

// Field returns the top-level field the path starts with. The root path
// has no field; callers check IsRoot first.
func (p Path) Field() Field {
	return p.field
}

// Keys returns the keys below the field.
func (p Path) Keys() []string {
	return append([]string(nil), p.keys...)
}

// String renders the path in its store form, e.g. "/obsm/X_pca".
func (p Path) String() string {
	if p.isRoot {
		return pathSeparator
	}
	if len(p.keys) == 0 {
		return pathSeparator + p.field.String()
	}
	return pathSeparator + p.field.String() + pathSeparator + strings.Join(p.keys, pathSeparator)
}

// Parent returns the parent path. A bare field's parent is Root; the
// root is its own parent.
func (p Path) Parent() Path {
	if p.isRoot || len(p.keys) == 0 {
		return Root
	}
	return Path{field: p.field, keys: append([]string(nil), p.keys[:len(p.keys)-1]...)}
}

// Leaf returns the last segment of the path: the final key, the field
// name for a bare field, or "/" for the root.
func (p Path) Leaf() string {
	if p.isRoot {
		return pathSeparator
	}
	if len(p.keys) == 0 {
		return p.field.String()
	}
	return p.keys[len(p.keys)-1]
}

// Append returns a new path with additional keys. Appending to the root
// is invalid; parse or build a field path instead.
func (p Path) Append(keys ...string) Path {
	if p.isRoot {
		panic("anndata: cannot append keys to the root path")
	}
	newKeys := make([]string, 0, len(p.keys)+len(keys))
	newKeys = append(newKeys, p.keys...)
	newKeys = append(newKeys, keys...)
	return Path{field: p.field, keys: newKeys}
}

// Equal reports whether two paths address the same node.
func (p Path) Equal(other Path) bool {
	if p.isRoot || other.isRoot {
		return p.isRoot == other.isRoot
	}
	if p.field != other.field || len(p.keys) != len(other.keys) {
		return false
	}
	for i := range p.keys {
		if p.keys[i] != other.keys[i] {
			return false
		}
	}
	return true
}
