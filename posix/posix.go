// Package posix provides the native fileaccess backend. Every operation is a
// single system call made through golang.org/x/sys/unix; handles are raw file
// descriptors.
//
// The package-level functions operate on Default and mirror the flat function
// surface of a syscall shim:
//
//	h, err := posix.OpenForWrite("out.bin")
//	if err != nil {
//	    return err
//	}
//	if _, err := posix.Write(h, data); err != nil {
//	    posix.CloseQuiet(h)
//	    return err
//	}
//	return posix.Close(h)
//
// On platforms without POSIX system calls every operation fails with
// NOT_IMPLEMENTED.
package posix

import (
	"iter"

	"github.com/input-output-hk/catalyst-forge-libs/fileaccess"
)

// Backend implements fileaccess.Backend with direct system calls.
type Backend struct{}

var _ fileaccess.Backend = Backend{}

// New creates a FileAccess backed by system calls.
func New(opts ...fileaccess.Option) *fileaccess.FileAccess {
	return fileaccess.New(Backend{}, opts...)
}

// Default is the FileAccess used by the package-level functions.
var Default = New()

// OpenForRead opens an existing file read-only.
func OpenForRead(path string) (fileaccess.Handle, error) {
	return Default.OpenForRead(path)
}

// OpenForWrite creates or truncates path with mode 0644 and opens it write-only.
func OpenForWrite(path string) (fileaccess.Handle, error) {
	return Default.OpenForWrite(path)
}

// Close releases h.
func Close(h fileaccess.Handle) error {
	return Default.Close(h)
}

// CloseQuiet releases h and reports whether that succeeded.
func CloseQuiet(h fileaccess.Handle) bool {
	return Default.CloseQuiet(h)
}

// Read reads up to len(p) bytes from h. It returns 0 and no error at end of stream.
func Read(h fileaccess.Handle, p []byte) (int, error) {
	return Default.Read(h, p)
}

// Write writes up to len(p) bytes to h.
func Write(h fileaccess.Handle, p []byte) (int, error) {
	return Default.Write(h, p)
}

// Populate returns a snapshot of path.
func Populate(path string) (fileaccess.FileInfo, error) {
	return Default.Populate(path)
}

// PathExists reports whether path is absent, a file, or a directory.
func PathExists(path string) fileaccess.PathKind {
	return Default.PathExists(path)
}

// ListDirectory calls visit for every entry of the directory at path except
// "." and "..".
func ListDirectory(path string, visit fileaccess.VisitFunc) error {
	return Default.ListDirectory(path, visit)
}

// Entries iterates over the entry names of the directory at path.
func Entries(path string) iter.Seq2[string, error] {
	return Default.Entries(path)
}
