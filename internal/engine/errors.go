package engine

import (
	"errors"
	"fmt"
)

// EngineError describes a failure the engine absorbed.
//
// None of these stop the engine; they are logged and the affected cycle
// degrades to "no visual change". The typed form lets callers and tests
// classify what happened.
type EngineError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Source names the collaborator involved ("weather", "holiday", "config").
	Source string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeSourceFailure indicates a weather or holiday fetch failed.
	ErrCodeSourceFailure ErrorCode = "SOURCE_FAILURE"

	// ErrCodeMalformedDocument indicates the holiday document lacked the
	// expected structure. It is treated as zero matches.
	ErrCodeMalformedDocument ErrorCode = "MALFORMED_DOCUMENT"

	// ErrCodeInvalidConfig indicates a configuration value the engine could
	// not act on, such as an unknown always-display mode.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Error implements the error interface.
func (e *EngineError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Source != "" {
		msg = fmt.Sprintf("%s (source=%s)", msg, e.Source)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// IsSourceFailure reports whether err is a source failure.
// Uses errors.As to handle wrapped errors.
func IsSourceFailure(err error) bool {
	return hasCode(err, ErrCodeSourceFailure)
}

// IsMalformedDocument reports whether err is a malformed holiday document.
func IsMalformedDocument(err error) bool {
	return hasCode(err, ErrCodeMalformedDocument)
}

// IsInvalidConfig reports whether err is an invalid configuration value.
func IsInvalidConfig(err error) bool {
	return hasCode(err, ErrCodeInvalidConfig)
}

func hasCode(err error, code ErrorCode) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code == code
	}
	return false
}

// NewSourceError wraps a failed fetch.
func NewSourceError(source string, err error) *EngineError {
	return &EngineError{
		Code:    ErrCodeSourceFailure,
		Message: "fetch reported failure",
		Source:  source,
		Err:     err,
	}
}

// NewMalformedDocumentError wraps a holiday document structure problem.
func NewMalformedDocumentError(err error) *EngineError {
	return &EngineError{
		Code:    ErrCodeMalformedDocument,
		Message: "holiday document has no usable holiday table",
		Source:  "holiday",
		Err:     err,
	}
}

// NewInvalidConfigError reports a configuration value the engine cannot use.
func NewInvalidConfigError(field, value string) *EngineError {
	return &EngineError{
		Code:    ErrCodeInvalidConfig,
		Message: fmt.Sprintf("invalid %s %q", field, value),
		Source:  "config",
	}
}
