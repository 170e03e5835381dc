package triage

import (
	"errors"
	"fmt"
)

// Error represents a failure absorbed by the triage core.
//
// These errors are never propagated to the Install caller; they exist so
// diagnostics and tests can identify exactly which step of the
// registration or fault path failed.
type Error struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// ErrorCode categorizes triage failures.
type ErrorCode string

const (
	// ErrCodeSubsystemUnavailable indicates the interrupt-dispatch
	// subsystem could not be located when the availability notification
	// fired.
	ErrCodeSubsystemUnavailable ErrorCode = "SUBSYSTEM_UNAVAILABLE"

	// ErrCodeRegistrationFailed indicates the dispatch subsystem
	// rejected the fault handler registration.
	ErrCodeRegistrationFailed ErrorCode = "REGISTRATION_FAILED"

	// ErrCodeStorageWriteFailed indicates the durable flag write failed.
	// Best-effort: the fault handler proceeds to reset regardless.
	ErrCodeStorageWriteFailed ErrorCode = "STORAGE_WRITE_FAILED"

	// ErrCodeNotifyArmFailed indicates the availability notification
	// could not be armed at initialization.
	ErrCodeNotifyArmFailed ErrorCode = "NOTIFY_ARM_FAILED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the triage error code from err.
// Returns the empty code if err is not a triage Error.
func CodeOf(err error) ErrorCode {
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}
