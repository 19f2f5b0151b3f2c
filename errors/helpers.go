package errors

import (
	stderrors "errors"
)

// Is reports whether any error in err's chain matches target.
// Convenience wrapper around the standard library errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// Convenience wrapper around the standard library errors.As.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// GetCode extracts the Code from the outermost Error in the chain.
// Returns CodeUnknown if err is nil or carries no Error.
func GetCode(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	var structured Error
	if stderrors.As(err, &structured) {
		return structured.Code()
	}
	return CodeUnknown
}

// GetClassification extracts the Classification from the outermost Error in
// the chain. Plain errors classify as permanent.
func GetClassification(err error) Classification {
	if err == nil {
		return ClassificationPermanent
	}
	var structured Error
	if stderrors.As(err, &structured) {
		return structured.Classification()
	}
	return ClassificationPermanent
}

// IsRetryable reports whether the error should be retried.
func IsRetryable(err error) bool {
	return GetClassification(err).IsRetryable()
}
