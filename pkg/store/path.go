package store

import (
	"path"
	"strings"
)

// Normalize cleans a store path to its canonical rooted form. The empty
// string and "/" both normalize to the root "/".
func Normalize(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// Split returns the path segments of a normalized path. The root has no
// segments.
func Split(p string) []string {
	p = Normalize(p)
	if p == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(p, "/"), "/")
}

// Join joins a parent path with child segments.
func Join(parent string, children ...string) string {
	parts := append([]string{Normalize(parent)}, children...)
	return Normalize(path.Join(parts...))
}

// Parent returns the parent of a normalized path; the root is its own
// parent.
func Parent(p string) string {
	return Normalize(path.Dir(Normalize(p)))
}

// Base returns the last segment of a path, or "" for the root.
func Base(p string) string {
	p = Normalize(p)
	if p == "/" {
		return ""
	}
	return path.Base(p)
}
