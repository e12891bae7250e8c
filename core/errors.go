package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

// RemoteError is a non-2xx response from the LMS backend.
// Detail carries the human-readable message extracted from the response:
// the `detail` field if present, else the raw body, else "HTTP <status>".
type RemoteError struct {
	Status int
	Detail string
}

func NewRemoteError(status int, detail string) error {
	if detail == "" {
		detail = fmt.Sprintf("HTTP %d", status)
	}
	return &RemoteError{Status: status, Detail: detail}
}

func (err RemoteError) Error() string {
	return err.Detail
}

func IsRemoteError(err error) bool {
	_, ok := errors.Cause(err).(*RemoteError)
	return ok
}
