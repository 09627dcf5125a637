package fileaccess

import (
	"io/fs"
	"path/filepath"
)

// Handle is an opaque identifier for an open file issued by a Backend.
// It is owned by the caller from the open that produced it until exactly one
// Close. Using it after Close is left to the backend to reject.
type Handle int64

// InvalidHandle is returned alongside every failed open.
const InvalidHandle Handle = -1

// WriteMode is the permission mode OpenForWrite creates files with
// (owner read/write, group read, others read) unless overridden by
// WithWriteMode.
const WriteMode fs.FileMode = 0o644

// Attr is the subset of stat(2) results a Backend reports for a path.
type Attr struct {
	IsDir bool
	Size  int64
	Mode  fs.FileMode
}

// Backend is the set of primitive operations FileAccess passes through to.
// Implementations return raw errors; FileAccess classifies and wraps them.
type Backend interface {
	Open(path string, flag int, perm fs.FileMode) (Handle, error)
	Close(h Handle) error
	Read(h Handle, p []byte) (int, error)
	Write(h Handle, p []byte) (int, error)
	Stat(path string) (Attr, error)
	Realpath(path string) (string, error)

	// ReadDir calls fn with the name of every entry in the directory, in
	// directory order. It stops and returns the first error fn returns.
	// The directory is released before ReadDir returns.
	ReadDir(path string, fn func(name string) error) error
}

// FileInfo is a snapshot of a path taken by Populate. It is never produced
// for a path that could not be inspected.
type FileInfo struct {
	// Path is the absolute, symlink-resolved form of the inspected path.
	Path  string `json:"path" yaml:"path"`
	IsDir bool   `json:"isDir" yaml:"isDir"`
	// Length is the size in bytes. For directories it is whatever the
	// filesystem reports and carries no meaning.
	Length uint64 `json:"length" yaml:"length"`
}

// Name returns the last element of Path.
func (fi FileInfo) Name() string {
	return filepath.Base(fi.Path)
}

// PathKind is the result of an existence check.
type PathKind uint8

const (
	Absent PathKind = iota
	File
	Directory
)

func (k PathKind) String() string {
	switch k {
	case Absent:
		return "absent"
	case File:
		return "file"
	case Directory:
		return "directory"
	}
	return "unknown"
}
