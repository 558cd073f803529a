package common

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for empty sequences, non-monotonic
	// timestamps and out-of-range coordinates.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingRequiredField is returned by the tabular reader when a row
	// or header lacks one of the required columns.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrInvalidConfig is returned when a configuration value is out of range.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// IndexError locates a bad record in a point sequence or row set.
// Index is -1 when the error concerns the sequence as a whole.
type IndexError struct {
	Index int
	Field string
	Msg   string
	Err   error
}

func (e *IndexError) Error() string {
	s := e.Err.Error()
	if e.Index >= 0 {
		s += fmt.Sprintf(": index %d", e.Index)
	}
	if e.Field != "" {
		s += fmt.Sprintf(": field %q", e.Field)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

// InvalidInputf returns an IndexError wrapping ErrInvalidInput.
func InvalidInputf(index int, field string, format string, args ...any) *IndexError {
	return &IndexError{Index: index, Field: field, Msg: fmt.Sprintf(format, args...), Err: ErrInvalidInput}
}

// MissingFieldf returns an IndexError wrapping ErrMissingRequiredField.
func MissingFieldf(index int, field string, format string, args ...any) *IndexError {
	return &IndexError{Index: index, Field: field, Msg: fmt.Sprintf(format, args...), Err: ErrMissingRequiredField}
}

// ConfigError names the offending configuration key.
type ConfigError struct {
	Field string
	Value any
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s=%v: %s", ErrInvalidConfig, e.Field, e.Value, e.Msg)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
