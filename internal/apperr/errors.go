// Package apperr defines the error kinds callers branch on: download
// failures, extraction failures, missing rows and invalid requests.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// FetchError wraps a network or IO failure while downloading a document.
// StatusCode is set when the remote answered with a non-2xx status.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError wraps err as a fetch failure for url.
func NewFetchError(url string, statusCode int, err error) *FetchError {
	return &FetchError{URL: url, StatusCode: statusCode, Err: err}
}

// ExtractionError wraps a document parsing or LLM/JSON failure.
type ExtractionError struct {
	Field string
	Err   error
}

func (e *ExtractionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("extract %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("extract: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError wraps err as an extraction failure for field.
func NewExtractionError(field string, err error) *ExtractionError {
	return &ExtractionError{Field: field, Err: err}
}

// NotFoundError reports a referenced row that does not exist.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

// NewNotFound reports entity id as missing.
func NewNotFound(entity string, id any) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation reports field as invalid with a user-facing message.
func NewValidation(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// Required is the common "x is required" validation error.
func Required(field string) *ValidationError {
	return NewValidation(field, field+" is required")
}

// IsFetch reports whether err (or any error in its chain) is a FetchError.
func IsFetch(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// IsExtraction reports whether err (or any error in its chain) is an ExtractionError.
func IsExtraction(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee)
}

// IsNotFound reports whether err (or any error in its chain) is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err (or any error in its chain) is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// HTTPStatus maps an error to the response status the API returns for it.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing text for err. Validation and not-found
// errors surface their own text; anything else is reported generically.
func Message(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	return "internal server error"
}
