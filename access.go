// Package fileaccess exposes primitive file and directory operations as thin,
// synchronous pass-throughs to a Backend, with uniform error reporting.
//
// Every operation performs exactly one backend call (Populate performs a stat
// followed by a path resolution) and surfaces failures immediately as an
// *IoError. Nothing is buffered, cached or retried; in particular an
// interrupted read or write is reported to the caller as is.
//
// # Thread Safety
//
// A FileAccess holds no mutable state and is safe for concurrent use.
// Concurrent use of two different handles is safe. Concurrent use of the
// same handle is not coordinated: sequential reads and writes share the
// handle's position and must be serialized by the caller.
//
// Example usage:
//
//	fa := posix.New(fileaccess.WithLogger(slog.Default()))
//	h, err := fa.OpenForRead("/etc/hostname")
//	if err != nil {
//	    return err
//	}
//	defer fa.CloseQuiet(h)
package fileaccess

import (
	"io/fs"
	"log/slog"
	"os"
	"syscall"

	"github.com/input-output-hk/catalyst-forge-libs/fileaccess/errors"
)

// FileAccess maps logical file operations onto a Backend.
type FileAccess struct {
	backend   Backend
	logger    *slog.Logger
	recorder  Recorder
	writeMode fs.FileMode
}

// New creates a FileAccess over the given backend.
func New(backend Backend, opts ...Option) *FileAccess {
	o := defaultOptions()
	applyOptions(o, opts)

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &FileAccess{
		backend:   backend,
		logger:    logger,
		recorder:  o.recorder,
		writeMode: o.writeMode,
	}
}

// Backend returns the backend operations are passed through to.
//
//nolint:ireturn // callers may need the concrete provider.
func (fa *FileAccess) Backend() Backend {
	return fa.backend
}

// OpenForRead opens an existing file read-only.
func (fa *FileAccess) OpenForRead(path string) (Handle, error) {
	h, err := fa.backend.Open(path, os.O_RDONLY, 0)
	if err != nil {
		return InvalidHandle, fa.fail("open", path, InvalidHandle, err)
	}
	fa.done("open", path, h)
	return h, nil
}

// OpenForWrite creates path, or truncates it if it exists, and opens it
// write-only. New files get the configured write mode (0644 by default,
// subject to the process umask).
func (fa *FileAccess) OpenForWrite(path string) (Handle, error) {
	h, err := fa.backend.Open(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fa.writeMode)
	if err != nil {
		return InvalidHandle, fa.fail("creat", path, InvalidHandle, err)
	}
	fa.done("creat", path, h)
	return h, nil
}

// Close releases h. It must be called exactly once per handle.
func (fa *FileAccess) Close(h Handle) error {
	if err := fa.backend.Close(h); err != nil {
		return fa.fail("close", "", h, err)
	}
	fa.done("close", "", h)
	return nil
}

// CloseQuiet releases h and reports only whether that succeeded.
func (fa *FileAccess) CloseQuiet(h Handle) bool {
	return fa.Close(h) == nil
}

// Read reads up to len(p) bytes from the current position of h.
// At end of stream it returns 0 and a nil error.
func (fa *FileAccess) Read(h Handle, p []byte) (int, error) {
	n, err := fa.backend.Read(h, p)
	if err != nil {
		return max(n, 0), fa.fail("read", "", h, err)
	}
	fa.transferred("read", h, n)
	return n, nil
}

// ReadN reads up to n bytes into p. n is clamped to len(p).
func (fa *FileAccess) ReadN(h Handle, p []byte, n int) (int, error) {
	if n < 0 {
		return 0, fa.fail("read", "", h, syscall.EINVAL)
	}
	return fa.Read(h, p[:min(n, len(p))])
}

// Write writes up to len(p) bytes at the current position of h and returns
// how many were written. A short count is not an error.
func (fa *FileAccess) Write(h Handle, p []byte) (int, error) {
	n, err := fa.backend.Write(h, p)
	if err != nil {
		return max(n, 0), fa.fail("write", "", h, err)
	}
	fa.transferred("write", h, n)
	return n, nil
}

// WriteN writes up to n bytes from p. n is clamped to len(p).
func (fa *FileAccess) WriteN(h Handle, p []byte, n int) (int, error) {
	if n < 0 {
		return 0, fa.fail("write", "", h, syscall.EINVAL)
	}
	return fa.Write(h, p[:min(n, len(p))])
}

// Populate inspects path and returns a snapshot whose Path is the canonical
// form of the input. A missing path yields an error matching ErrNotFound.
func (fa *FileAccess) Populate(path string) (FileInfo, error) {
	attr, err := fa.backend.Stat(path)
	if err != nil {
		return FileInfo{}, fa.fail("stat", path, InvalidHandle, err)
	}

	canonical, err := fa.backend.Realpath(path)
	if err != nil {
		return FileInfo{}, fa.fail("realpath", path, InvalidHandle, err)
	}

	fa.done("stat", path, InvalidHandle)
	return FileInfo{
		Path:   canonical,
		IsDir:  attr.IsDir,
		Length: uint64(max(attr.Size, 0)),
	}, nil
}

// PathExists reports whether path is absent, a directory, or anything else.
// Every stat failure, including permission errors, reads as Absent; use
// Probe to tell those apart.
func (fa *FileAccess) PathExists(path string) PathKind {
	kind, err := fa.Probe(path)
	if err != nil {
		return Absent
	}
	return kind
}

// Probe is PathExists without the error swallowing: only a missing path is
// reported as Absent with a nil error.
func (fa *FileAccess) Probe(path string) (PathKind, error) {
	attr, err := fa.backend.Stat(path)
	if err != nil {
		if errors.CodeOf(err) == errors.CodeNotFound {
			fa.done("stat", path, InvalidHandle)
			return Absent, nil
		}
		return Absent, fa.fail("stat", path, InvalidHandle, err)
	}

	fa.done("stat", path, InvalidHandle)
	if attr.IsDir {
		return Directory, nil
	}
	return File, nil
}

func (fa *FileAccess) fail(op, path string, h Handle, err error) *IoError {
	ioErr := newIoError(op, path, h, err)
	fa.record(op, ioErr)
	fa.logger.Debug("file operation failed",
		"op", op,
		"path", path,
		"handle", int64(h),
		"code", ioErr.Code(),
		"errno", int(ioErr.Errno),
		"error", ioErr.Message(),
	)
	return ioErr
}

func (fa *FileAccess) done(op, path string, h Handle) {
	fa.record(op, nil)
	fa.logger.Debug("file operation", "op", op, "path", path, "handle", int64(h))
}

func (fa *FileAccess) transferred(op string, h Handle, n int) {
	fa.record(op, nil)
	fa.logger.Debug("file operation", "op", op, "handle", int64(h), "bytes", n)
}

func (fa *FileAccess) record(op string, err error) {
	if fa.recorder != nil {
		fa.recorder.Record(op, err)
	}
}
