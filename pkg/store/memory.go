package store

import (
	"sort"
	"strings"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/JaneliaSciComp/go-anndata/pkg/errors"
)

// Memory is an in-memory store. It is safe for concurrent use and is the
// backend of choice for tests and for staging a container before copying
// it to a filesystem store.
type Memory struct {
	mu    sync.RWMutex
	nodes map[string]*memNode
}

type memNode struct {
	dataset *Dataset // nil for groups
	attrs   map[string]json.RawMessage
}

// NewMemory creates an empty in-memory store with a root group.
func NewMemory() *Memory {
	return &Memory{
		nodes: map[string]*memNode{
			"/": {attrs: map[string]json.RawMessage{}},
		},
	}
}

// Exists reports whether a group or dataset exists at path.
func (m *Memory) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.nodes[Normalize(path)]
	return ok
}

// IsDataset reports whether path names a dataset.
func (m *Memory) IsDataset(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	node, ok := m.nodes[Normalize(path)]
	return ok && node.dataset != nil
}

// List returns the sorted child names of the group at path.
func (m *Memory) List(path string) ([]string, error) {
	path = Normalize(path)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.nodes[path]; !ok {
		return nil, notFound(path)
	}

	prefix := path
	if prefix != "/" {
		prefix += "/"
	}

	var children []string
	for p := range m.nodes {
		if p == path || !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if !strings.Contains(rest, "/") {
			children = append(children, rest)
		}
	}
	sort.Strings(children)
	return children, nil
}

// GetAttr decodes the attribute key at path into out.
func (m *Memory) GetAttr(path, key string, out interface{}) error {
	path = Normalize(path)

	m.mu.RLock()
	defer m.mu.RUnlock()

	node, ok := m.nodes[path]
	if !ok {
		return notFound(path)
	}
	raw, ok := node.attrs[key]
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

// ReadDataset reads the dataset at path.
func (m *Memory) ReadDataset(path string) (*Dataset, error) {
	path = Normalize(path)

	m.mu.RLock()
	defer m.mu.RUnlock()

	node, ok := m.nodes[path]
	if !ok {
		return nil, notFound(path)
	}
	if node.dataset == nil {
		return nil, errors.New(errors.ErrorTypeData, "path is a group, not a dataset").
			WithDetail("path", path)
	}
	return node.dataset.clone(), nil
}

// CreateGroup creates the group at path and any missing parents.
func (m *Memory) CreateGroup(path string) error {
	path = Normalize(path)

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureGroup(path)
}

func (m *Memory) ensureGroup(path string) error {
	if node, ok := m.nodes[path]; ok {
		if node.dataset != nil {
			return errors.New(errors.ErrorTypeConflict, "a dataset exists at path").
				WithDetail("path", path)
		}
		return nil
	}
	if path != "/" {
		if err := m.ensureGroup(Parent(path)); err != nil {
			return err
		}
	}
	m.nodes[path] = &memNode{attrs: map[string]json.RawMessage{}}
	return nil
}

// SetAttr sets the attribute key at path to value.
func (m *Memory) SetAttr(path, key string, value interface{}) error {
	path = Normalize(path)

	m.mu.Lock()
	defer m.mu.Unlock()

	node, ok := m.nodes[path]
	if !ok {
		return notFound(path)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "encoding attribute").
			WithDetail("path", path).
			WithDetail("key", key)
	}
	node.attrs[key] = raw
	return nil
}

// WriteDataset writes the dataset at path, replacing any existing one.
func (m *Memory) WriteDataset(path string, ds *Dataset) error {
	path = Normalize(path)
	if _, err := ds.DataType(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureGroup(Parent(path)); err != nil {
		return err
	}
	attrs := map[string]json.RawMessage{}
	if existing, ok := m.nodes[path]; ok {
		attrs = existing.attrs
	}
	m.nodes[path] = &memNode{dataset: ds.clone(), attrs: attrs}
	return nil
}

// Remove deletes the node at path and everything below it.
func (m *Memory) Remove(path string) error {
	path = Normalize(path)
	if path == "/" {
		return errors.New(errors.ErrorTypeValidation, "cannot remove the root group")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.nodes[path]; !ok {
		return notFound(path)
	}
	prefix := path + "/"
	for p := range m.nodes {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(m.nodes, p)
		}
	}
	return nil
}
