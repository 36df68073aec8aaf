// Package validate provides configuration validation helpers.
package validate

import (
	"fmt"
	"time"
)

// Error represents a validation error.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("validation: %s - %s", e.Field, e.Message)
}

// New creates a new validation error.
func New(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

// Newf creates a new validation error with formatted message.
func Newf(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Name validates a dependency or service name.
func Name(field, name string) error {
	if name == "" {
		return New(field, "cannot be empty")
	}
	for _, c := range name {
		valid := c == '-' || c == '_' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !valid {
			return Newf(field, "invalid character %q", c)
		}
	}
	return nil
}

// Positive validates that n is greater than zero.
func Positive(field string, n int) error {
	if n <= 0 {
		return Newf(field, "must be positive, got %d", n)
	}
	return nil
}

// PositiveFloat validates that f is greater than zero.
func PositiveFloat(field string, f float64) error {
	if f <= 0 {
		return Newf(field, "must be positive, got %g", f)
	}
	return nil
}

// Ratio validates that f lies in (0, 1].
func Ratio(field string, f float64) error {
	if f <= 0 || f > 1 {
		return Newf(field, "must be in (0, 1], got %g", f)
	}
	return nil
}

// Percent validates that f lies in [0, 100].
func Percent(field string, f float64) error {
	if f < 0 || f > 100 {
		return Newf(field, "must be in [0, 100], got %g", f)
	}
	return nil
}

// Duration validates that d is greater than zero.
func Duration(field string, d time.Duration) error {
	if d <= 0 {
		return Newf(field, "must be positive, got %s", d)
	}
	return nil
}

// Bounds validates that min <= max and both are positive.
func Bounds(field string, min, max int) error {
	if min <= 0 {
		return Newf(field, "min must be positive, got %d", min)
	}
	if max < min {
		return Newf(field, "max %d must be >= min %d", max, min)
	}
	return nil
}
