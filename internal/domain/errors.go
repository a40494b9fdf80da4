package domain

import (
	"errors"
	"fmt"
)

// ValidationError is returned when input is malformed or out of range
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError with a formatted message
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrNoFieldsToUpdate is returned when an update carries no effective field
var ErrNoFieldsToUpdate = &ValidationError{Message: "No fields to update"}

// MissingParameterError is returned when a required path parameter is absent
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string { return e.Name + " is required" }

// NotFoundError covers both "does not exist" and "exists but is owned by
// someone else"; callers can not tell them apart.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// ErrTaskNotFound is the not-found error for tasks
var ErrTaskNotFound = &NotFoundError{Resource: "Task"}

// PersistenceError wraps an unexpected store failure
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// TimeoutError is returned when a store call exceeds its deadline
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string { return e.Op + ": timed out" }

func (e *TimeoutError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsTimeout(err error) bool {
	var e *TimeoutError
	return errors.As(err, &e)
}
