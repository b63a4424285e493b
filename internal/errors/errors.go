// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidPasscode    = errors.New("invalid passcode")
	ErrInvalidCode        = errors.New("invalid activation code")
	ErrQuotaExhausted     = errors.New("analysis quota exhausted")
	ErrPlanExpired        = errors.New("plan expired")
	ErrRateLimited        = errors.New("rate limited")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrMalformedResponse  = errors.New("malformed model response")
	ErrCredentialNotFound = errors.New("credential not found")
	ErrSessionClosed      = errors.New("voice session closed")
	ErrSpeechUnavailable  = errors.New("speech capture unavailable")
	ErrInvalidImage       = errors.New("invalid image")
	ErrAnalysisInFlight   = errors.New("analysis already in progress")
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrDataNotFound       = errors.New("data not found")
	ErrDatabaseError      = errors.New("database error")
)

// Transient reports whether the error is a transient external-service
// condition worth retrying. Everything else surfaces immediately.
func Transient(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServiceUnavailable)
}

// AnalysisError represents an error from the analysis orchestrator.
type AnalysisError struct {
	Stage   string // "encode", "request", "decode", "validate"
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("analysis error [%s]: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("analysis error [%s]: %s", e.Stage, e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// NewAnalysisError creates a new AnalysisError.
func NewAnalysisError(stage, message string, err error) *AnalysisError {
	return &AnalysisError{Stage: stage, Message: message, Err: err}
}

// ActivationError represents a failed entitlement operation. These are
// user-input validation failures, never retryable.
type ActivationError struct {
	Tier    string
	Message string
	Err     error
}

func (e *ActivationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("activation error [%s]: %s: %v", e.Tier, e.Message, e.Err)
	}
	return fmt.Sprintf("activation error [%s]: %s", e.Tier, e.Message)
}

func (e *ActivationError) Unwrap() error {
	return e.Err
}

// NewActivationError creates a new ActivationError.
func NewActivationError(tier, message string, err error) *ActivationError {
	return &ActivationError{Tier: tier, Message: message, Err: err}
}

// VoiceError represents an error inside the voice session loop.
type VoiceError struct {
	State     string
	Operation string
	Err       error
}

func (e *VoiceError) Error() string {
	return fmt.Sprintf("voice error [%s] %s: %v", e.State, e.Operation, e.Err)
}

func (e *VoiceError) Unwrap() error {
	return e.Err
}

// NewVoiceError creates a new VoiceError.
func NewVoiceError(state, operation string, err error) *VoiceError {
	return &VoiceError{State: state, Operation: operation, Err: err}
}

// StorageError represents a persistence failure.
type StorageError struct {
	Entity  string
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage error [%s]: %s: %v", e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("storage error [%s]: %s", e.Entity, e.Message)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new StorageError.
func NewStorageError(entity, message string, err error) *StorageError {
	return &StorageError{Entity: entity, Message: message, Err: err}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
