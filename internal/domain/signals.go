package domain

import "fmt"

// ErrorSource tells which side produced an error definition
type ErrorSource string

// ErrorSourceInternal marks errors raised by this service rather than the provider
const ErrorSourceInternal ErrorSource = "internal"

// ErrorType is the kind of an error definition
type ErrorType string

// ErrorTypeUnexpected marks an error nobody knows how to classify
const ErrorTypeUnexpected ErrorType = "unexpected_error"

// ErrorDefinition describes an error in a transport friendly way.
// Reason is ASCII only so it can be sent as a header value.
type ErrorDefinition struct {
	Source ErrorSource `json:"source"`
	Type   ErrorType   `json:"type"`
	Reason string      `json:"reason"`
}

// ResultContext is the diagnostic data attached to undefined and unavailable results
type ResultContext struct {
	Rule        Rule
	Code        string
	Description *string
}

// UndefinedResultError is raised when the matched rule says the provider
// outcome can't be determined yet
type UndefinedResultError struct {
	ResultContext
}

func (e *UndefinedResultError) Error() string {
	return fmt.Sprintf("Undefined result %s, code = %s, description = %s",
		e.Rule, e.Code, NullableString(e.Description))
}

// ErrorCode returns ErrorCodeResultUndefined
func (e *UndefinedResultError) ErrorCode() ErrorCode { return ErrorCodeResultUndefined }

// Is matches ErrResultUndefined
func (e *UndefinedResultError) Is(target error) bool { return target == ErrResultUndefined }

// UnavailableResultError is raised when the matched rule says the provider
// or the resource is unavailable
type UnavailableResultError struct {
	ResultContext
}

func (e *UnavailableResultError) Error() string {
	return fmt.Sprintf("Unavailable result %s, code = %s, description = %s",
		e.Rule, e.Code, NullableString(e.Description))
}

// ErrorCode returns ErrorCodeResultUnavailable
func (e *UnavailableResultError) ErrorCode() ErrorCode { return ErrorCodeResultUnavailable }

// Is matches ErrResultUnavailable
func (e *UnavailableResultError) Is(target error) bool { return target == ErrResultUnavailable }

// UnexpectedError is the fallback raised when nothing knows how to classify
// the provider error. Rule is set when a rule explicitly mapped the error to
// ResultUnexpected and nil when no rule matched.
type UnexpectedError struct {
	Message    string
	Definition ErrorDefinition
	Rule       *Rule
}

func (e *UnexpectedError) Error() string {
	return e.Message
}

// ErrorCode returns ErrorCodeResultUnexpected
func (e *UnexpectedError) ErrorCode() ErrorCode { return ErrorCodeResultUnexpected }

// Is matches ErrResultUnexpected
func (e *UnexpectedError) Is(target error) bool { return target == ErrResultUnexpected }
