package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the standup error taxonomy
var (
	// ErrConfig - malformed persisted config or invalid environment value; the run
	// must abort before any external call
	ErrConfig = errors.New("configuration error")

	// ErrNotFound - resource not found (missing history record, unknown session key)
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput - invalid input (bad date, empty summary, unknown config key)
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfirmed - side-effecting publish attempted without a prior confirm step
	ErrNotConfirmed = errors.New("publish not confirmed")

	// ErrTransient - transient external failure (network, rate limit)
	ErrTransient = errors.New("transient error")

	// ErrConflict - conflict (named record already exists)
	ErrConflict = errors.New("conflict")

	// ErrInternal - internal error
	ErrInternal = errors.New("internal error")
)

// Wrap wraps an error with context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsCategory checks if error belongs to a specific category.
func IsCategory(err error, category error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, category)
}

// Config wraps error as a configuration error.
func Config(message string) error {
	return fmt.Errorf("%s: %w", message, ErrConfig)
}

// NotFound wraps error as not found.
func NotFound(message string) error {
	return fmt.Errorf("%s: %w", message, ErrNotFound)
}

// InvalidInput wraps error as invalid input.
func InvalidInput(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInvalidInput)
}

// NotConfirmed wraps error as a confirmation violation.
func NotConfirmed(message string) error {
	return fmt.Errorf("%s: %w", message, ErrNotConfirmed)
}

// Transient wraps error as transient.
func Transient(message string) error {
	return fmt.Errorf("%s: %w", message, ErrTransient)
}

// Internal wraps error as internal.
func Internal(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInternal)
}
