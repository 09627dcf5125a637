// Package errors provides the structured error handling used by fileaccess.
// It extends Go's standard error handling with string error codes, context
// preservation, and classification of operating-system errors.
package errors

// ErrorCode represents a specific failure condition reported by a file operation.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Resource errors.

	// CodeNotFound indicates the path does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates a filesystem entry already exists.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Permission errors.

	// CodeForbidden indicates the caller lacks permission for the operation.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// Validation errors.

	// CodeInvalidInput indicates an invalid argument, such as a bad handle,
	// a negative length, or a path of the wrong type.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Infrastructure errors.

	// CodeIO indicates the operating system reported a failure that has no
	// more specific classification.
	CodeIO ErrorCode = "IO_ERROR"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// System errors.

	// CodeInternal indicates an internal error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeNotImplemented indicates the backend does not support the operation.
	CodeNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// String returns the code as a plain string.
func (c ErrorCode) String() string {
	return string(c)
}
