package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
)

// PlatformError is implemented by every structured error in this module.
// Use As to recover it from a wrapped chain.
type PlatformError interface {
	error
	Code() ErrorCode
	Message() string
	Context() map[string]interface{}
	Unwrap() error
}

type platformError struct {
	code    ErrorCode
	message string
	context map[string]interface{}
	cause   error
}

func (e *platformError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

func (e *platformError) Code() ErrorCode { return e.code }

func (e *platformError) Message() string { return e.message }

func (e *platformError) Context() map[string]interface{} { return e.context }

func (e *platformError) Unwrap() error { return e.cause }

// New creates a PlatformError with the given code and message.
func New(code ErrorCode, message string) error {
	return &platformError{code: code, message: message}
}

// Newf creates a PlatformError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) error {
	return &platformError{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message. It returns nil if err is nil.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &platformError{code: code, message: message, cause: err}
}

// WrapWithContext is Wrap with additional key/value context attached.
func WrapWithContext(err error, code ErrorCode, message string, context map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &platformError{code: code, message: message, context: context, cause: err}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return stderrors.As(err, target) }

// Unwrap returns the result of calling Unwrap on err.
func Unwrap(err error) error { return stderrors.Unwrap(err) }

// Join returns an error that wraps the given errors.
func Join(errs ...error) error { return stderrors.Join(errs...) }

// CodeOf classifies err. A PlatformError in the chain wins; otherwise the
// operating-system error is mapped onto the closest code.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var pe PlatformError
	if stderrors.As(err, &pe) {
		return pe.Code()
	}

	var errno syscall.Errno
	if stderrors.As(err, &errno) {
		return codeOfErrno(errno)
	}

	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		return CodeNotFound
	case stderrors.Is(err, fs.ErrPermission):
		return CodeForbidden
	case stderrors.Is(err, fs.ErrExist):
		return CodeAlreadyExists
	case stderrors.Is(err, fs.ErrInvalid), stderrors.Is(err, fs.ErrClosed):
		return CodeInvalidInput
	case stderrors.Is(err, os.ErrDeadlineExceeded):
		return CodeTimeout
	}
	return CodeUnknown
}

func codeOfErrno(errno syscall.Errno) ErrorCode {
	switch errno {
	case syscall.ENOENT:
		return CodeNotFound
	case syscall.EACCES, syscall.EPERM:
		return CodeForbidden
	case syscall.EEXIST:
		return CodeAlreadyExists
	case syscall.EINVAL, syscall.EBADF, syscall.ENOTDIR, syscall.EISDIR, syscall.ENAMETOOLONG:
		return CodeInvalidInput
	case syscall.ETIMEDOUT:
		return CodeTimeout
	case syscall.ENOSYS:
		return CodeNotImplemented
	}
	return CodeIO
}
