package models

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below through errors.Is
var (
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrTransitionRejected = errors.New("transition rejected")
	ErrIO                 = errors.New("storage failure")
)

// ErrorMessageResponse is the body written for every failed request
type ErrorMessageResponse struct {
	Response string `json:"response"`
}

// HealthCheckResponse is returned by the health endpoint
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}

// PermissionDeniedError is returned when no role of the principal grants
// the requested module action
type PermissionDeniedError struct {
	Module string
	Action string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: %s.%s", e.Module, e.Action)
}

// Is makes errors.Is(err, ErrPermissionDenied) succeed
func (e *PermissionDeniedError) Is(target error) bool { return target == ErrPermissionDenied }

// NotFoundError is returned when a referenced record does not exist
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) succeed
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError is returned when a required field is missing or malformed
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) succeed
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// TransitionRejectedError is returned when an action is not valid for the
// current state of a case
type TransitionRejectedError struct {
	From   Status
	Action string
	Reason string
}

func (e *TransitionRejectedError) Error() string {
	return fmt.Sprintf("cannot %s a case in state %s: %s", e.Action, e.From, e.Reason)
}

// Is makes errors.Is(err, ErrTransitionRejected) succeed
func (e *TransitionRejectedError) Is(target error) bool { return target == ErrTransitionRejected }

// IOError wraps a storage failure. Error() only names the operation so paths
// and driver messages stay out of responses; Unwrap exposes the cause for logs.
type IOError struct {
	Op         string
	Collection string
	Err        error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("storage failure during %s of %s", e.Op, e.Collection)
}

// Unwrap returns the underlying storage error
func (e *IOError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrIO) succeed
func (e *IOError) Is(target error) bool { return target == ErrIO }
