package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Classification input errors
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Classification outcomes raised instead of a Failure (RESULT_*)
	ErrorCodeResultUndefined   ErrorCode = "RESULT_UNDEFINED"
	ErrorCodeResultUnavailable ErrorCode = "RESULT_UNAVAILABLE"
	ErrorCodeResultUnexpected  ErrorCode = "RESULT_UNEXPECTED"

	// Failure taxonomy errors
	ErrorCodeMappingKeyInvalid ErrorCode = "MAPPING_KEY_INVALID"

	// Rule set loading errors (CONFIG_*)
	ErrorCodeConfigParse   ErrorCode = "CONFIG_PARSE"
	ErrorCodeConfigMapping ErrorCode = "CONFIG_MAPPING"
	ErrorCodeConfigIO      ErrorCode = "CONFIG_IO"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// coded is implemented by every error in this package
type coded interface {
	ErrorCode() ErrorCode
}

// ErrorCode returns the error code
func (e *DomainError) ErrorCode() ErrorCode {
	return e.Code
}

// IsDomainError checks if an error carries the given code
func IsDomainError(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}

// GetErrorCode extracts the error code from an error, returns empty string if none
func GetErrorCode(err error) ErrorCode {
	var c coded
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

// IsConfigError checks if an error comes from loading the rule set
func IsConfigError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeConfigParse ||
		code == ErrorCodeConfigMapping ||
		code == ErrorCodeConfigIO
}

// IsRetryLater checks if the provider outcome is inconclusive or the
// provider is unavailable, so the caller may ask again later
func IsRetryLater(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeResultUndefined ||
		code == ErrorCodeResultUnavailable
}

var (
	ErrInvalidInput = NewDomainError(ErrorCodeInvalidInput, "code must be set")

	ErrResultUndefined   = NewDomainError(ErrorCodeResultUndefined, "undefined result")
	ErrResultUnavailable = NewDomainError(ErrorCodeResultUnavailable, "unavailable result")
	ErrResultUnexpected  = NewDomainError(ErrorCodeResultUnexpected, "unexpected result")

	ErrMappingKeyInvalid = NewDomainError(ErrorCodeMappingKeyInvalid, "invalid failure mapping key")

	ErrConfigParse   = NewDomainError(ErrorCodeConfigParse, "can't parse error mapping data")
	ErrConfigMapping = NewDomainError(ErrorCodeConfigMapping, "can't map error mapping data")
	ErrConfigIO      = NewDomainError(ErrorCodeConfigIO, "failed to read error mapping data")
)
