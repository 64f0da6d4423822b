// Package errors provides structured errors with typed codes for the
// analytics core and its collaborators.
//
// Codes are grouped by range, see ErrorCode.Category:
//   - 100-149 validation: parameters, weights, configuration
//   - 150-199 schema: missing columns, unordered series
//   - 200-299 data: missing data, failed queries, too few observations
//   - 300-399 model: singular design matrices, failed fits
//   - 700-799 market data: fetching, parsing and persisting candles
//   - 800-899 reports
//
// Too-few-observations failures use InsufficientDataError so callers can tell
// "not enough history" apart from bad input:
//
//	if errors.IsInsufficientDataError(err) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates an Error.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches a code and message to cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Wrapf attaches a code and formatted message to cause.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// Error renders "[code name] message: cause".
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d %s] %s: %v", int(e.Code), e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d %s] %s", int(e.Code), e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is is errors.Is, re-exported so callers need a single errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As, re-exported so callers need a single errors import.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode returns the code of the first coded error in err's chain, or
// ErrCodeUnknown.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	var insufficient *InsufficientDataError
	if errors.As(err, &insufficient) {
		return insufficient.Code
	}

	return ErrCodeUnknown
}

// HasCode reports whether err carries code.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// CategoryOf returns the category of err's code. Nil has no category.
func CategoryOf(err error) Category {
	if err == nil {
		return ""
	}

	return GetCode(err).Category()
}

// InsufficientDataError reports that a calculation needs more observations
// than it was given, e.g. daily closes or forecast training rows.
type InsufficientDataError struct {
	Code     ErrorCode
	Required int
	Actual   int
	Symbol   string
	Message  string
}

// NewInsufficientDataErrorf creates an InsufficientDataError with a formatted message.
func NewInsufficientDataErrorf(code ErrorCode, required, actual int, symbol, format string, args ...any) *InsufficientDataError {
	return &InsufficientDataError{
		Code:     code,
		Required: required,
		Actual:   actual,
		Symbol:   symbol,
		Message:  fmt.Sprintf(format, args...),
	}
}

func (e *InsufficientDataError) Error() string {
	return e.Message
}

// Shortfall is how many more observations are needed.
func (e *InsufficientDataError) Shortfall() int {
	if e.Actual >= e.Required {
		return 0
	}

	return e.Required - e.Actual
}

// IsInsufficientDataError reports whether err's chain holds an InsufficientDataError.
func IsInsufficientDataError(err error) bool {
	var insufficient *InsufficientDataError

	return errors.As(err, &insufficient)
}
