package errors

// Classification indicates whether an error should trigger a retry.
// The transfer queue uses this to decide between requeueing a job and
// failing it permanently.
type Classification string

const (
	// ClassificationRetryable marks temporary failures that may succeed on
	// retry, such as remote timeouts or transient storage errors.
	ClassificationRetryable Classification = "RETRYABLE"

	// ClassificationPermanent marks failures that will not succeed on retry,
	// such as validation errors or missing paths.
	ClassificationPermanent Classification = "PERMANENT"
)

// IsRetryable reports whether the classification allows a retry.
func (c Classification) IsRetryable() bool {
	return c == ClassificationRetryable
}

// defaultClassifications maps error codes to their default classification.
var defaultClassifications = map[Code]Classification{
	CodeTimeout:      ClassificationRetryable,
	CodeRemoteFailed: ClassificationRetryable,

	CodeNotFound:      ClassificationPermanent,
	CodeAlreadyExists: ClassificationPermanent,
	CodeInvalidInput:  ClassificationPermanent,
	CodeInvalidConfig: ClassificationPermanent,
	CodeInvalidScope:  ClassificationPermanent,
	CodeUnsupported:   ClassificationPermanent,
	CodeIO:            ClassificationPermanent,
	CodeSearchFailed:  ClassificationPermanent,
	CodeIndexFailed:   ClassificationPermanent,
	CodeCanceled:      ClassificationPermanent,
	CodeInternal:      ClassificationPermanent,
	CodeUnknown:       ClassificationPermanent,
}

// defaultClassification returns the classification for a code, defaulting to
// permanent for unknown codes so nothing is retried by accident.
func defaultClassification(code Code) Classification {
	if class, ok := defaultClassifications[code]; ok {
		return class
	}
	return ClassificationPermanent
}
