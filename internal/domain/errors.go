package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by stores when no record exists for the identifier.
	ErrNotFound = errors.New("record not found")
	// ErrStoreUnavailable marks a gateway failure that aborts the whole batch.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// FormatError reports a cell value that cannot be coerced to its expected type.
type FormatError struct {
	Field  string
	Value  any
	Reason string
}

func (e *FormatError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("format error: %v: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("format error in %q: %v: %s", e.Field, e.Value, e.Reason)
}

// SchemaError reports a named field missing from a row.
type SchemaError struct {
	Field string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: missing field %q", e.Field)
}

// IsFormatError reports whether err carries a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsSchemaError reports whether err carries a *SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
