// Package vpath is a minimal stand-in for the virtual-filesystem path type
// that a full file manager would supply. The thumbnail engine and the
// FileInfo descriptor only need a handful of operations on it (canonical
// string form, URI form, basename, equality) so this package implements
// just those, scoped to local native paths.
package vpath

import (
	"net/url"
	"path/filepath"
)

// Path identifies a file by its canonical local filesystem location.
type Path struct {
	native string
}

// NewNative builds a Path from a native filesystem path, cleaning it.
func NewNative(p string) Path {
	return Path{native: filepath.Clean(p)}
}

// String returns the canonical native path.
func (p Path) String() string {
	return p.native
}

// Basename returns the last path element.
func (p Path) Basename() string {
	return filepath.Base(p.native)
}

// Dir returns the parent Path.
func (p Path) Dir() Path {
	return Path{native: filepath.Dir(p.native)}
}

// URI returns the file:// URI form, used as the thumbnail cache key input.
func (p Path) URI() string {
	u := url.URL{Scheme: "file", Path: p.native}
	return u.String()
}

// Equal reports whether two paths refer to the same canonical location.
func (p Path) Equal(o Path) bool {
	return p.native == o.native
}

// IsZero reports whether p was never assigned a value.
func (p Path) IsZero() bool {
	return p.native == ""
}
