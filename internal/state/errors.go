package state

import (
	"errors"
	"fmt"
)

// Error is returned by mutators that reject their input. The state is left
// exactly as it was before the call.
type Error struct {
	// Kind identifies the error category.
	Kind ErrorKind

	// Field is the state key involved, if any.
	Field Field

	// Message is a human-readable description.
	Message string
}

// ErrorKind categorizes state errors.
type ErrorKind string

const (
	// ErrKindNotNumeric indicates Adjust targeted a field that is not a
	// numeric meter.
	ErrKindNotNumeric ErrorKind = "NOT_NUMERIC"

	// ErrKindInvalidDelta indicates a NaN or infinite delta.
	ErrKindInvalidDelta ErrorKind = "INVALID_DELTA"

	// ErrKindInvalidBounds indicates min > max, or bounds that admit no
	// value of the meter.
	ErrKindInvalidBounds ErrorKind = "INVALID_BOUNDS"

	// ErrKindInvalidValue indicates an enum value outside its set.
	ErrKindInvalidValue ErrorKind = "INVALID_VALUE"

	// ErrKindUnknownSkill indicates a skill id missing from the config.
	ErrKindUnknownSkill ErrorKind = "UNKNOWN_SKILL"

	// ErrKindNegativeAmount indicates a negative cost or grant.
	ErrKindNegativeAmount ErrorKind = "NEGATIVE_AMOUNT"

	// ErrKindInsufficient indicates a resource cannot cover a cost.
	ErrKindInsufficient ErrorKind = "INSUFFICIENT"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Kind, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, field Field, format string, args ...any) *Error {
	return &Error{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsInvalidInput returns true if err rejects malformed input (anything but
// resource insufficiency). Uses errors.As to handle wrapped errors.
func IsInvalidInput(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind != ErrKindInsufficient
	}
	return false
}

// IsInsufficient returns true if err reports a resource shortfall.
func IsInsufficient(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind == ErrKindInsufficient
	}
	return false
}

// KindOf returns the kind of a state error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
