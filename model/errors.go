package model

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is matched (errors.Is) by every *ConfigurationError.
	ErrConfiguration = errors.New("configuration error")

	// ErrDataIntegrity is matched (errors.Is) by every *DataIntegrityError.
	ErrDataIntegrity = errors.New("data integrity error")

	// ErrGeometry marks degenerate or non-finite boxes. Assignment skips such
	// boxes silently; validation helpers report them with this error.
	ErrGeometry = errors.New("degenerate geometry")
)

// ConfigurationError reports unusable page dimensions or stage configuration.
// It is fatal for the page it concerns. Page is -1 when no page is involved.
type ConfigurationError struct {
	Page   int
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Page < 0 {
		return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("page %d: configuration: %s: %s", e.Page, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrConfiguration.
func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// DataIntegrityError reports a region or token record missing a required field.
// Only the offending record is dropped.
type DataIntegrityError struct {
	Page  int
	Kind  string // "region" or "token"
	Index int
	Field string
	Err   error
}

func (e *DataIntegrityError) Error() string {
	msg := fmt.Sprintf("page %d: %s %d: missing or malformed %s", e.Page, e.Kind, e.Index, e.Field)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both ErrDataIntegrity and the underlying cause.
func (e *DataIntegrityError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDataIntegrity}
	}
	return []error{ErrDataIntegrity, e.Err}
}
