package fileaccess

import (
	"fmt"
	"io/fs"
	"syscall"

	"github.com/input-output-hk/catalyst-forge-libs/fileaccess/errors"
)

var (
	// ErrNotFound matches any IoError whose path does not exist.
	ErrNotFound = errors.New(errors.CodeNotFound, "path not found")

	// SkipAll may be returned by a VisitFunc to stop a listing early.
	// ListDirectory then returns nil.
	SkipAll = fs.SkipAll
)

// IoError is returned by every FileAccess operation that fails in the
// backend. It carries the numeric OS error (when there is one) next to the
// human-readable description so callers can classify failures.
type IoError struct {
	// Op is the primitive that failed: open, creat, close, read, write,
	// stat, realpath, opendir or readdir.
	Op string
	// Path is empty for handle operations.
	Path string
	// Handle is InvalidHandle for path operations.
	Handle Handle
	// Errno is zero when the cause is not an OS error number.
	Errno syscall.Errno
	Err   error

	code    errors.ErrorCode
	message string
}

var _ errors.PlatformError = (*IoError)(nil)

func newIoError(op, path string, h Handle, err error) *IoError {
	e := &IoError{
		Op:     op,
		Path:   path,
		Handle: h,
		Err:    err,
		code:   errors.CodeOf(err),
	}
	if errors.As(err, &e.Errno) {
		e.message = e.Errno.Error()
	} else {
		e.message = osMessage(err)
	}
	return e
}

// osMessage strips the op/path decoration a backend may have added so only
// the OS description remains.
func osMessage(err error) string {
	var pe *fs.PathError
	if errors.As(err, &pe) && pe.Err != nil {
		return pe.Err.Error()
	}
	for inner := errors.Unwrap(err); inner != nil; inner = errors.Unwrap(inner) {
		err = inner
	}
	return err.Error()
}

func (e *IoError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.message)
	}
	return fmt.Sprintf("%s handle %d: %s", e.Op, e.Handle, e.message)
}

// Code classifies the failure.
func (e *IoError) Code() errors.ErrorCode { return e.code }

// Message is the OS-provided description of the failure.
func (e *IoError) Message() string { return e.message }

// Context returns the operation details as key/value pairs.
func (e *IoError) Context() map[string]interface{} {
	ctx := map[string]interface{}{"op": e.Op}
	if e.Path != "" {
		ctx["path"] = e.Path
	} else {
		ctx["handle"] = int64(e.Handle)
	}
	if e.Errno != 0 {
		ctx["errno"] = int(e.Errno)
	}
	return ctx
}

func (e *IoError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrNotFound) hold for missing paths regardless of
// which backend produced the error.
func (e *IoError) Is(target error) bool {
	return target == ErrNotFound && e.code == errors.CodeNotFound
}

// IsNotFound reports whether err is a NOT_FOUND failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
