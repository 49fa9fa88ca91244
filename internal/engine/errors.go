package engine

import (
	"errors"
	"fmt"
)

// RegistryError is returned when action definitions cannot be registered.
type RegistryError struct {
	// Code identifies the error category.
	Code RegistryErrorCode

	// Action is the offending action name.
	Action string

	// Phase is the phase the action was declared in.
	Phase string

	// Message is a human-readable description.
	Message string
}

// RegistryErrorCode categorizes registry errors.
type RegistryErrorCode string

const (
	// ErrCodeDuplicateAction indicates two actions fold to the same name
	// within a phase.
	ErrCodeDuplicateAction RegistryErrorCode = "DUPLICATE_ACTION"

	// ErrCodeUnknownKind indicates an action kind with no handler.
	ErrCodeUnknownKind RegistryErrorCode = "UNKNOWN_KIND"

	// ErrCodeInvalidPhase indicates an action declared for an unknown phase.
	ErrCodeInvalidPhase RegistryErrorCode = "INVALID_PHASE"

	// ErrCodeEmptyName indicates an action without a name.
	ErrCodeEmptyName RegistryErrorCode = "EMPTY_NAME"
)

// Error implements the error interface.
func (e *RegistryError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s: %s (action=%s, phase=%s)", e.Code, e.Message, e.Action, e.Phase)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsDuplicateAction returns true if err reports a duplicate action.
// Uses errors.As to handle wrapped errors.
func IsDuplicateAction(err error) bool {
	var re *RegistryError
	if errors.As(err, &re) {
		return re.Code == ErrCodeDuplicateAction
	}
	return false
}
