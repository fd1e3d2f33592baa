// Package errors defines the business error codes returned by the catalog API.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard error functions
var (
	Is     = errors.Is
	As     = errors.As
	Join   = errors.Join
	Unwrap = errors.Unwrap
	New    = errors.New
)

// FieldError describes a rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag,omitempty"`
	Message string `json:"message"`
}

func (f FieldError) Error() string {
	return fmt.Sprintf("%s: %s", f.Field, f.Message)
}

// Error is a business error carrying a stable code and the HTTP status it maps to.
type Error struct {
	// Code is the stable machine readable identifier, e.g. BRAND-001
	Code string `json:"code"`
	// Message is the human readable explanation
	Message string `json:"message"`
	// Fields is set for request validation failures
	Fields []FieldError `json:"fields,omitempty"`
	// Status is the HTTP status used when the error reaches the API layer
	Status int `json:"-"`

	cause error
}

var _ error = (*Error)(nil)

func define(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

var (
	InvalidInput         = define("COMMON-001", http.StatusBadRequest, "invalid input value")
	InvalidPatchRequest  = define("COMMON-002", http.StatusBadRequest, "invalid JSON patch request")
	UnsupportedMediaType = define("COMMON-003", http.StatusUnsupportedMediaType, "unsupported media type")
	Internal             = define("COMMON-999", http.StatusInternalServerError, "internal server error")

	CategoryNotFound = define("CATEGORY-001", http.StatusNotFound, "category does not exist")

	BrandNotFound      = define("BRAND-001", http.StatusNotFound, "brand does not exist")
	InvalidBrandName   = define("BRAND-002", http.StatusBadRequest, "brand name must not be blank")
	DuplicateBrandName = define("BRAND-003", http.StatusConflict, "brand name is already in use")

	InvalidPrice    = define("PRODUCT-001", http.StatusBadRequest, "product price must be greater than or equal to zero")
	ProductNotFound = define("PRODUCT-002", http.StatusNotFound, "product does not exist")
)

// Error implements error
func (e *Error) Error() string {
	str := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.cause != nil {
		str += fmt.Sprintf(" (%s)", e.cause)
	}
	return str
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Wrap returns a copy of the error with the given cause attached.
func (e *Error) Wrap(cause error) *Error {
	err := *e
	err.cause = cause
	return &err
}

// Explain makes a copy of the error with given message
func (e *Error) Explain(message string, args ...any) *Error {
	err := *e
	err.Message = fmt.Sprintf(message, args...)
	return &err
}

// WithFields returns a copy of error with fields replaced.
func (e *Error) WithFields(fields []FieldError) *Error {
	err := *e
	err.Fields = fields
	return &err
}

// WithField returns a copy of error with one more field appended.
func (e *Error) WithField(field, tag, message string) *Error {
	err := *e
	err.Fields = append(append([]FieldError(nil), e.Fields...), FieldError{Field: field, Tag: tag, Message: message})
	return &err
}

// Is matches errors by code so copies made by Explain or Wrap still
// compare equal to the sentinel they came from.
func (e *Error) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	if other, ok := target.(*Error); ok {
		return other.Code == e.Code
	}
	return false
}

// From returns the business error in err's chain, or Internal wrapping err.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var be *Error
	if As(err, &be) {
		return be
	}
	return Internal.Wrap(err)
}
