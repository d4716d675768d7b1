package usecase

import (
	"errors"
	"strings"
)

const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeInternal        = "INTERNAL_ERROR"
)

// DomainError is a failure the caller can act on. Fields is set for validation failures.
type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// AsDomainError unwraps err into a DomainError if it carries one.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err is a DomainError with the given code.
func HasCode(err error, code string) bool {
	de, ok := AsDomainError(err)
	return ok && de.Code == code
}

// TechnicalError wraps an unexpected store or infrastructure failure.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func newValidationError(fields []ValidationError) *DomainError {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Error())
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(parts, ", "),
		Fields:  fields,
	}
}

func notFound(message string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: message}
}

func forbidden(message string) *DomainError {
	return &DomainError{Code: CodeForbidden, Message: message}
}

func unauthenticated(message string) *DomainError {
	return &DomainError{Code: CodeUnauthenticated, Message: message}
}

func conflict(message string) *DomainError {
	return &DomainError{Code: CodeConflict, Message: message}
}

func internal(message string, err error) *TechnicalError {
	return &TechnicalError{Code: CodeInternal, Message: message, Err: err}
}
