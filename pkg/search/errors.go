// Package search turns query-string parameters into predicate trees
package search

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration indicates required configuration is missing
	ErrConfiguration = errors.New("search: invalid configuration")

	// ErrDateFormat indicates a date string that does not match the expected format
	ErrDateFormat = errors.New("search: date does not match format")

	// ErrMissingDateBounds indicates a date predicate requested without from or to
	ErrMissingDateBounds = errors.New("search: please provide at least one date")

	// ErrInvalidBoolean indicates a boolean parameter other than true/false
	ErrInvalidBoolean = errors.New("search: invalid boolean literal")

	// ErrUnsupportedFieldType indicates a field that cannot be categorized
	ErrUnsupportedFieldType = errors.New("search: unsupported field type")
)

// ConfigurationError names the missing configuration
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrConfiguration, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// DateFormatError carries the offending string and the expected format
type DateFormatError struct {
	Value  string
	Format string
	Err    error
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("%v: %q is not %s", ErrDateFormat, e.Value, e.Format)
}

func (e *DateFormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDateFormat}
	}
	return []error{ErrDateFormat, e.Err}
}

// InvalidBooleanLiteralError names the offending string
type InvalidBooleanLiteralError struct {
	Value string
}

func (e *InvalidBooleanLiteralError) Error() string {
	return fmt.Sprintf("%v: %q (expected true or false)", ErrInvalidBoolean, e.Value)
}

func (e *InvalidBooleanLiteralError) Unwrap() error { return ErrInvalidBoolean }

// UnsupportedFieldTypeError names the field and the kind that could not be categorized
type UnsupportedFieldTypeError struct {
	Field string
	Kind  string
}

func (e *UnsupportedFieldTypeError) Error() string {
	return fmt.Sprintf("%v: %s (%s)", ErrUnsupportedFieldType, e.Field, e.Kind)
}

func (e *UnsupportedFieldTypeError) Unwrap() error { return ErrUnsupportedFieldType }
