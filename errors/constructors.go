package errors

import (
	stderrors "errors"
	"fmt"
)

// New creates a new Error with the given code and message.
// The classification is the default for the code.
func New(code Code, message string) Error {
	return &structuredError{
		code:           code,
		classification: defaultClassification(code),
		message:        message,
	}
}

// Newf creates a new Error with a formatted message.
func Newf(code Code, format string, args ...any) Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with a code and message while preserving the original
// error for errors.Is and errors.As. If the wrapped error is already an
// Error, its classification is preserved. Returns nil if err is nil.
func Wrap(err error, code Code, message string) Error {
	if err == nil {
		return nil
	}

	classification := defaultClassification(code)
	var structured Error
	if stderrors.As(err, &structured) {
		classification = structured.Classification()
	}

	return &structuredError{
		code:           code,
		classification: classification,
		message:        message,
		cause:          err,
	}
}

// Wrapf wraps an error with a formatted message. Returns nil if err is nil.
func Wrapf(err error, code Code, format string, args ...any) Error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithContext returns a copy of err with the given metadata attached.
// Context from an existing Error is merged; keys in ctx win.
// Returns nil if err is nil.
func WithContext(err error, ctx map[string]any) Error {
	if err == nil {
		return nil
	}

	merged := make(map[string]any)
	var structured Error
	if stderrors.As(err, &structured) {
		for k, v := range structured.Context() {
			merged[k] = v
		}
	}
	for k, v := range ctx {
		merged[k] = v
	}

	return &structuredError{
		code:           GetCode(err),
		classification: GetClassification(err),
		message:        messageOf(err),
		context:        merged,
		cause:          err,
	}
}

func messageOf(err error) string {
	var structured Error
	if stderrors.As(err, &structured) {
		return structured.Message()
	}
	return err.Error()
}
