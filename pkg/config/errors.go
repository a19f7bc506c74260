package config

import (
	"errors"
	"fmt"
)

// Validate wraps these; match with errors.Is.
var (
	// ErrMissingRequired marks a setting that no flag, file or
	// environment variable supplied.
	ErrMissingRequired = errors.New("config: required setting not provided")

	// ErrInvalidConfig marks a setting that was supplied but cannot
	// drive a report run, or a config file that does not parse.
	ErrInvalidConfig = errors.New("config: invalid setting")
)

// FieldError ties a validation failure to the setting that caused it.
type FieldError struct {
	Field string
	Value any // nil when the setting is absent
	Err   error
}

func (e *FieldError) Error() string {
	switch v := e.Value.(type) {
	case nil:
		return e.Field + ": " + e.Err.Error()
	case string:
		return fmt.Sprintf("%s %q: %v", e.Field, v, e.Err)
	default:
		return fmt.Sprintf("%s %v: %v", e.Field, v, e.Err)
	}
}

func (e *FieldError) Unwrap() error { return e.Err }

func missing(field string) error {
	return &FieldError{Field: field, Err: ErrMissingRequired}
}

func invalid(field string, value any) error {
	return &FieldError{Field: field, Value: value, Err: ErrInvalidConfig}
}

func exclusive(a, b string) error {
	return fmt.Errorf("%s and %s are exclusive: %w", a, b, ErrInvalidConfig)
}
