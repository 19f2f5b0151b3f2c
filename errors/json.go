package errors

import (
	stderrors "errors"
)

// Response is the JSON shape for error payloads returned by the HTTP API.
// The wrapped error chain is intentionally excluded so internal details
// (paths, queries, endpoints) do not leak to clients.
type Response struct {
	// Code is the error code identifying the type of error.
	Code string `json:"code"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Classification indicates whether the error is retryable or permanent.
	Classification string `json:"classification"`

	// Context contains optional metadata about the error.
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse converts any error to a Response suitable for JSON encoding.
// Returns nil if err is nil. Plain errors map to CodeUnknown/permanent.
func ToResponse(err error) *Response {
	if err == nil {
		return nil
	}

	resp := &Response{
		Code:           string(GetCode(err)),
		Message:        err.Error(),
		Classification: string(GetClassification(err)),
	}

	var structured Error
	if stderrors.As(err, &structured) {
		resp.Message = structured.Message()
		resp.Context = structured.Context()
	}

	return resp
}
