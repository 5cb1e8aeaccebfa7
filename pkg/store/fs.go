package store

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/JaneliaSciComp/go-anndata/pkg/compression"
	"github.com/JaneliaSciComp/go-anndata/pkg/errors"
)

const (
	attrsFileName = "attributes.json"
	dataFileName  = "data.bin"

	// Reserved attribute keys marking a directory as a dataset.
	attrDimensions  = "dimensions"
	attrDataType    = "dataType"
	attrCompression = "compression"
)

// compressionAttr records the codec a dataset was written with so readers
// need no out-of-band configuration.
type compressionAttr struct {
	Type  string `json:"type"`
	Level int    `json:"level,omitempty"`
}

// FS is a filesystem store with an N5-style layout: every group and
// dataset is a directory carrying an attributes.json file, and datasets
// additionally hold one compressed little-endian binary blob.
//
// Concurrent readers are safe; writers are serialized per store.
type FS struct {
	root  string
	codec *compression.Config

	mu sync.Mutex
}

// NewFS opens the store rooted at dir, creating the root group if needed.
// codec configures the block compression for subsequent writes; nil keeps
// the default (gzip). Datasets written earlier keep their recorded codec.
func NewFS(dir string, codec *compression.Config) (*FS, error) {
	if codec == nil {
		codec = compression.DefaultConfig()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "creating store root").
			WithDetail("dir", dir)
	}
	f := &FS{root: dir, codec: codec}
	if _, err := os.Stat(f.attrsPath("/")); os.IsNotExist(err) {
		if err := f.writeAttrs("/", map[string]json.RawMessage{}); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Root returns the directory this store is rooted at.
func (f *FS) Root() string {
	return f.root
}

func (f *FS) dir(path string) string {
	return filepath.Join(f.root, filepath.FromSlash(Normalize(path)))
}

func (f *FS) attrsPath(path string) string {
	return filepath.Join(f.dir(path), attrsFileName)
}

// Exists reports whether a group or dataset exists at path.
func (f *FS) Exists(path string) bool {
	info, err := os.Stat(f.dir(path))
	return err == nil && info.IsDir()
}

// IsDataset reports whether path names a dataset.
func (f *FS) IsDataset(path string) bool {
	attrs, err := f.readAttrs(path)
	if err != nil {
		return false
	}
	_, hasDims := attrs[attrDimensions]
	_, hasType := attrs[attrDataType]
	return hasDims && hasType
}

// List returns the sorted child names of the group at path.
func (f *FS) List(path string) ([]string, error) {
	entries, err := os.ReadDir(f.dir(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "listing group").
			WithDetail("path", path)
	}

	var children []string
	for _, e := range entries {
		if e.IsDir() {
			children = append(children, e.Name())
		}
	}
	sort.Strings(children)
	return children, nil
}

// GetAttr decodes the attribute key at path into out.
func (f *FS) GetAttr(path, key string, out interface{}) error {
	attrs, err := f.readAttrs(path)
	if err != nil {
		return err
	}
	raw, ok := attrs[key]
	if !ok {
		return errors.New(errors.ErrorTypeNotFound, "attribute not set").
			WithDetail("path", path).
			WithDetail("key", key)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "decoding attribute").
			WithDetail("path", path).
			WithDetail("key", key)
	}
	return nil
}

// SetAttr sets the attribute key at path to value.
func (f *FS) SetAttr(path, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "encoding attribute").
			WithDetail("path", path).
			WithDetail("key", key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	attrs, err := f.readAttrs(path)
	if err != nil {
		return err
	}
	attrs[key] = raw
	return f.writeAttrs(path, attrs)
}

// CreateGroup creates the group at path and any missing parents.
func (f *FS) CreateGroup(path string) error {
	path = Normalize(path)
	if f.IsDataset(path) {
		return errors.New(errors.ErrorTypeConflict, "a dataset exists at path").
			WithDetail("path", path)
	}
	if err := os.MkdirAll(f.dir(path), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "creating group").
			WithDetail("path", path)
	}
	// Every directory on the way up needs an attributes file.
	for p := path; ; p = Parent(p) {
		attrsPath := f.attrsPath(p)
		if _, err := os.Stat(attrsPath); os.IsNotExist(err) {
			if err := f.writeAttrs(p, map[string]json.RawMessage{}); err != nil {
				return err
			}
		}
		if p == "/" {
			break
		}
	}
	return nil
}

// ReadDataset reads the dataset at path.
func (f *FS) ReadDataset(path string) (*Dataset, error) {
	attrs, err := f.readAttrs(path)
	if err != nil {
		return nil, err
	}

	var shape []int64
	var dataType string
	var codec compressionAttr
	if raw, ok := attrs[attrDimensions]; ok {
		if err := json.Unmarshal(raw, &shape); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "decoding dataset shape").
				WithDetail("path", path)
		}
	} else {
		return nil, errors.New(errors.ErrorTypeData, "path is a group, not a dataset").
			WithDetail("path", path)
	}
	if raw, ok := attrs[attrDataType]; ok {
		if err := json.Unmarshal(raw, &dataType); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "decoding dataset element type").
				WithDetail("path", path)
		}
	}
	if raw, ok := attrs[attrCompression]; ok {
		if err := json.Unmarshal(raw, &codec); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "decoding dataset codec").
				WithDetail("path", path)
		}
	}

	compressed, err := os.ReadFile(filepath.Join(f.dir(path), dataFileName))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "reading dataset block").
			WithDetail("path", path)
	}

	algorithm, err := compression.ParseAlgorithm(codec.Type)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "resolving dataset codec").
			WithDetail("path", path)
	}
	comp, err := compression.NewCompressor(&compression.Config{
		Algorithm: algorithm,
		Level:     compression.Level(codec.Level),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "resolving dataset codec").
			WithDetail("path", path)
	}
	raw, err := comp.Decompress(compressed)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "decompressing dataset block").
			WithDetail("path", path)
	}

	ds := &Dataset{Shape: shape}
	if dataType == "string" {
		var values []string
		if err := json.Unmarshal(raw, &values); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "decoding string dataset").
				WithDetail("path", path)
		}
		ds.Data = values
		return ds, nil
	}

	ds.Data, err = decodeNumeric(dataType, ds.Len(), raw)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// WriteDataset writes the dataset at path, replacing any existing one.
func (f *FS) WriteDataset(path string, ds *Dataset) error {
	dataType, err := ds.DataType()
	if err != nil {
		return err
	}

	var raw []byte
	if values, ok := ds.Data.([]string); ok {
		raw, err = json.Marshal(values)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeData, "encoding string dataset").
				WithDetail("path", path)
		}
	} else {
		raw, err = encodeNumeric(ds.Data)
		if err != nil {
			return err
		}
	}

	comp, err := compression.NewCompressor(f.codec)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "building block compressor")
	}
	compressed, err := comp.Compress(raw)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "compressing dataset block").
			WithDetail("path", path)
	}

	if err := f.CreateGroup(Parent(path)); err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir(path), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "creating dataset directory").
			WithDetail("path", path)
	}
	if err := os.WriteFile(filepath.Join(f.dir(path), dataFileName), compressed, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "writing dataset block").
			WithDetail("path", path)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	attrs, err := f.readAttrs(path)
	if err != nil {
		attrs = map[string]json.RawMessage{}
	}
	attrs[attrDimensions], _ = json.Marshal(ds.Shape)
	attrs[attrDataType], _ = json.Marshal(dataType)
	attrs[attrCompression], _ = json.Marshal(compressionAttr{
		Type:  string(f.codec.Algorithm),
		Level: int(f.codec.Level),
	})
	return f.writeAttrs(path, attrs)
}

// Remove deletes the node at path and everything below it.
func (f *FS) Remove(path string) error {
	path = Normalize(path)
	if path == "/" {
		return errors.New(errors.ErrorTypeValidation, "cannot remove the root group")
	}
	if !f.Exists(path) {
		return notFound(path)
	}
	if err := os.RemoveAll(f.dir(path)); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "removing node").
			WithDetail("path", path)
	}
	return nil
}

func (f *FS) readAttrs(path string) (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(f.attrsPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "reading attributes").
			WithDetail("path", path)
	}
	attrs := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "decoding attributes file").
			WithDetail("path", path)
	}
	return attrs, nil
}

func (f *FS) writeAttrs(path string, attrs map[string]json.RawMessage) error {
	raw, err := json.Marshal(attrs)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "encoding attributes file").
			WithDetail("path", path)
	}
	if err := os.WriteFile(f.attrsPath(path), raw, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "writing attributes").
			WithDetail("path", path)
	}
	return nil
}
