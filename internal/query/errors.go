package query

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes query errors.
type ErrorCode string

const (
	// ErrCodeMalformedQuery indicates a clause's right-hand side is undefined.
	ErrCodeMalformedQuery ErrorCode = "MALFORMED_QUERY"

	// ErrCodeUnknownOperator indicates an operator name missing from the registry.
	ErrCodeUnknownOperator ErrorCode = "UNKNOWN_OPERATOR"

	// ErrCodeInvalidSpec indicates a filter document that is not a JSON object.
	ErrCodeInvalidSpec ErrorCode = "INVALID_SPEC"
)

// QueryError represents a caller error detected while parsing or
// evaluating a filter.
type QueryError struct {
	Code     ErrorCode
	Message  string
	Field    string
	Operator string
	Err      error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Field != "" {
		msg += fmt.Sprintf(" (field=%s)", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsMalformedQuery returns true if err is a MALFORMED_QUERY error.
// Uses errors.As to handle wrapped errors.
func IsMalformedQuery(err error) bool {
	return hasCode(err, ErrCodeMalformedQuery)
}

// IsUnknownOperator returns true if err is an UNKNOWN_OPERATOR error.
func IsUnknownOperator(err error) bool {
	return hasCode(err, ErrCodeUnknownOperator)
}

func hasCode(err error, code ErrorCode) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code == code
	}
	return false
}

func newMalformedQueryError(field string) *QueryError {
	return &QueryError{
		Code:    ErrCodeMalformedQuery,
		Message: "filter value must not be undefined",
		Field:   field,
	}
}

func newUnknownOperatorError(field, op string) *QueryError {
	return &QueryError{
		Code:     ErrCodeUnknownOperator,
		Message:  fmt.Sprintf("operator %q is not registered", op),
		Field:    field,
		Operator: op,
	}
}
