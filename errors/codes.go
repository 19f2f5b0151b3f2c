// Package errors provides the structured error system shared across nohrs.
// It extends Go's standard error handling with string error codes, retry
// classification, context metadata, and JSON serialization for the HTTP API.
package errors

// Code identifies a specific error condition.
// Codes are string-based for debuggability and natural JSON serialization.
type Code string

const (
	// CodeNotFound indicates a requested path or resource does not exist.
	CodeNotFound Code = "NOT_FOUND"

	// CodeAlreadyExists indicates a path already exists and cannot be created again.
	CodeAlreadyExists Code = "ALREADY_EXISTS"

	// CodeInvalidInput indicates a malformed request (bad cursor, bad address).
	CodeInvalidInput Code = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig Code = "INVALID_CONFIGURATION"

	// CodeInvalidScope indicates a search was requested outside the index root.
	CodeInvalidScope Code = "INVALID_SCOPE"

	// CodeUnsupported indicates the backend does not support the operation.
	CodeUnsupported Code = "UNSUPPORTED"

	// CodeIO indicates a local filesystem failure.
	CodeIO Code = "IO_FAILED"

	// CodeSearchFailed indicates a query against the index or ripgrep failed.
	CodeSearchFailed Code = "SEARCH_FAILED"

	// CodeIndexFailed indicates the background indexer could not update the index.
	CodeIndexFailed Code = "INDEX_FAILED"

	// CodeRemoteFailed indicates a remote storage operation failed.
	CodeRemoteFailed Code = "REMOTE_FAILED"

	// CodeTimeout indicates an operation exceeded its deadline.
	CodeTimeout Code = "TIMEOUT"

	// CodeCanceled indicates the operation was canceled by the caller.
	CodeCanceled Code = "CANCELED"

	// CodeInternal indicates an unexpected internal failure.
	CodeInternal Code = "INTERNAL"

	// CodeUnknown is used when no more specific code applies.
	CodeUnknown Code = "UNKNOWN"
)
