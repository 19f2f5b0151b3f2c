package errors

import "fmt"

// Error extends the standard error interface with structured information.
// It carries a code for categorization, a classification for retry logic,
// optional context metadata, and remains compatible with errors.Is,
// errors.As, and errors.Unwrap.
type Error interface {
	error

	// Code returns the error code identifying the type of error.
	Code() Code

	// Classification returns whether the error is retryable or permanent.
	Classification() Classification

	// Message returns the human-readable error message.
	Message() string

	// Context returns attached metadata as a read-only map, or nil.
	Context() map[string]any

	// Unwrap returns the wrapped cause, or nil.
	Unwrap() error
}

// structuredError is the concrete implementation of Error.
// It is private to enforce construction through package functions.
type structuredError struct {
	code           Code
	classification Classification
	message        string
	context        map[string]any
	cause          error
}

// Error formats as "[CODE] message" or "[CODE] message: cause".
func (e *structuredError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

func (e *structuredError) Code() Code                     { return e.code }
func (e *structuredError) Classification() Classification { return e.classification }
func (e *structuredError) Message() string                { return e.message }

// Context returns a copy of the context map; callers may mutate it freely.
func (e *structuredError) Context() map[string]any {
	if e.context == nil {
		return nil
	}
	ctx := make(map[string]any, len(e.context))
	for k, v := range e.context {
		ctx[k] = v
	}
	return ctx
}

func (e *structuredError) Unwrap() error { return e.cause }
