package uanode

import (
	"errors"
	"fmt"
)

// StatusError is a failure carrying a protocol status code.
// Every error surfaced by the accessor API is, or wraps, a StatusError.
type StatusError struct {
	Code    StatusCode
	Message string
	Cause   error
}

func (e StatusError) Error() string {
	msg := e.Code.String()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e StatusError) Unwrap() error { return e.Cause }

// Is matches any StatusError with the same code, so errors.Is(err, StatusError{Code: c}) works.
func (e StatusError) Is(target error) bool {
	t, ok := target.(StatusError)
	return ok && t.Code == e.Code && t.Message == "" && t.Cause == nil
}

// TypeMismatchError means a value could not be coerced to the requested Go type.
type TypeMismatchError struct {
	Expected string
	Actual   string
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("value type mismatch: expected=%s actual=%s", e.Expected, e.Actual)
}

// ExtractStatusError returns the first StatusError in err's chain.
func ExtractStatusError(err error) (StatusError, bool) {
	var se StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return StatusError{}, false
}

// StatusOf returns the status code carried by err: Good for nil, the extracted
// code when err wraps a StatusError, BadUnexpectedError otherwise.
func StatusOf(err error) StatusCode {
	if err == nil {
		return Good
	}
	if se, ok := ExtractStatusError(err); ok {
		return se.Code
	}
	return BadUnexpectedError
}

// normalize surfaces err as a StatusError: an existing one unchanged, anything
// else wrapped as BadUnexpectedError.
func normalize(err error) error {
	if err == nil {
		return nil
	}
	if se, ok := ExtractStatusError(err); ok {
		return se
	}
	return StatusError{Code: BadUnexpectedError, Cause: err}
}

func typeMismatch(expected string, actual any) StatusError {
	return StatusError{
		Code:  BadTypeMismatch,
		Cause: TypeMismatchError{Expected: expected, Actual: fmt.Sprintf("%T", actual)},
	}
}
