// Package store provides the hierarchical group/dataset/attribute backends
// that AnnData containers are persisted to. Two implementations are
// provided: an in-memory store for staging and tests, and a filesystem
// store with an N5-style directory layout and compressed binary blocks.
//
// Paths are slash-separated and rooted at "/". Groups form the hierarchy;
// datasets are leaf n-dimensional arrays; both carry JSON-typed attributes.
package store

import (
	"github.com/JaneliaSciComp/go-anndata/pkg/errors"
)

// Reader is the read side of a hierarchical array store.
type Reader interface {
	// Exists reports whether a group or dataset exists at path.
	Exists(path string) bool

	// IsDataset reports whether path names a dataset rather than a group.
	IsDataset(path string) bool

	// List returns the sorted child names of the group at path.
	List(path string) ([]string, error)

	// GetAttr decodes the attribute key at path into out. A missing node
	// or missing key yields a not_found error.
	GetAttr(path, key string, out interface{}) error

	// ReadDataset reads the dataset at path.
	ReadDataset(path string) (*Dataset, error)
}

// Writer is the full read/write contract of a hierarchical array store.
type Writer interface {
	Reader

	// CreateGroup creates the group at path, along with any missing
	// parent groups. Creating an existing group is a no-op.
	CreateGroup(path string) error

	// SetAttr sets the attribute key at path to value.
	SetAttr(path, key string, value interface{}) error

	// WriteDataset writes the dataset at path, creating parent groups as
	// needed and replacing any existing dataset.
	WriteDataset(path string, ds *Dataset) error

	// Remove deletes the node at path and everything below it.
	Remove(path string) error
}

// notFound builds the standard not_found error for a path.
func notFound(path string) error {
	return errors.New(errors.ErrorTypeNotFound, "no group or dataset at path").
		WithDetail("path", path)
}
