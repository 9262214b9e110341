package domain

import (
	"errors"
	"fmt"
)

// ErrorClass classifies why an attempt failed. Every class is retryable at
// the attempt/strategy level; only full exhaustion is terminal.
type ErrorClass string

const (
	ErrLaunchFailure     ErrorClass = "launch_failure"
	ErrNavigationTimeout ErrorClass = "navigation_timeout"
	ErrBlocked           ErrorClass = "blocked"
	ErrServerError       ErrorClass = "server_error"
	ErrClientError       ErrorClass = "client_error"
	ErrEngineFailure     ErrorClass = "engine_failure"
	ErrInvalidResult     ErrorClass = "invalid_result"
)

// ClassifiedError is the only error shape that crosses the attempt boundary.
type ClassifiedError struct {
	Class ErrorClass
	Err   error
}

func (e *ClassifiedError) Error() string {
	if e.Err == nil {
		return string(e.Class)
	}
	return fmt.Sprintf("%s: %v", e.Class, e.Err)
}

func (e *ClassifiedError) Unwrap() error { return e.Err }

// Classified wraps err with an attempt failure class.
func Classified(class ErrorClass, err error) *ClassifiedError {
	return &ClassifiedError{Class: class, Err: err}
}

// Classify extracts the failure class from err, defaulting to engine_failure
// for errors that escaped classification.
func Classify(err error) ErrorClass {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}
	return ErrEngineFailure
}
