package ceremony

import (
	"errors"
	"fmt"
)

// Error is returned when a ceremony call is not valid in the current stage.
type Error struct {
	Code    ErrorCode
	Stage   Stage
	Message string
}

// ErrorCode categorizes ceremony errors.
type ErrorCode string

const (
	ErrCodeWrongStage    ErrorCode = "WRONG_STAGE"
	ErrCodeNoPivot       ErrorCode = "NO_PIVOT"
	ErrCodeNightNotDone  ErrorCode = "NIGHT_NOT_DONE"
	ErrCodeDayNotDone    ErrorCode = "DAY_NOT_DONE"
	ErrCodeUnknownPolicy ErrorCode = "UNKNOWN_POLICY"
	ErrCodeEnded         ErrorCode = "ENDED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (stage=%s)", e.Code, e.Message, e.Stage)
}

// CodeOf returns the code of a ceremony error, or "" for other errors.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
