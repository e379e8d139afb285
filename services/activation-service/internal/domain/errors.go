package domain

import (
	"errors"
	"fmt"
)

// ConflictMessage is recorded when a third machine is refused.
const ConflictMessage = "registration error: multiple devices are already registered for this serial number"

var (
	ErrSlotsExhausted      = errors.New("activation slots exhausted")
	ErrDuplicateAuditEntry = errors.New("audit entry already exists")
)

// SlotsExhaustedError is returned by a refused Bind with the number of
// machines holding the serial at that moment. It matches ErrSlotsExhausted.
type SlotsExhaustedError struct {
	Bound int
}

func (e *SlotsExhaustedError) Error() string { return ErrSlotsExhausted.Error() }

func (e *SlotsExhaustedError) Is(target error) bool { return target == ErrSlotsExhausted }

// ValidationError indicates a malformed activation request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// StoreError wraps a failure of the binding store or the audit log.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }
