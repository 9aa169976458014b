package service

import (
	"errors"
	"fmt"
)

// ErrMealPlanNotFound is returned when no plan exists for the requested
// user and date.
var ErrMealPlanNotFound = errors.New("meal plan not found")

// ValidationError marks input the caller can fix: malformed dates, unknown
// slot names, recipe ids missing from the catalog. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
