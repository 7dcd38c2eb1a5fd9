package tagwire

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrUnknownField indicates a tag or name is not declared by the schema.
	ErrUnknownField = errors.New("unknown field")

	// ErrDuplicateField indicates two descriptors share a tag or a name.
	ErrDuplicateField = errors.New("duplicate field")

	// ErrInvalidSchema indicates a malformed descriptor (bad tag, empty name, incomplete type).
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrTruncated indicates the input ended before a marker or value was fully read.
	ErrTruncated = errors.New("truncated input")

	// ErrUnsupportedEncoding indicates a type id or encoding the reader cannot interpret.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")

	// ErrLimitExceeded indicates nesting depth or a declared length beyond the configured limit.
	ErrLimitExceeded = errors.New("limit exceeded")

	// ErrContractViolation indicates a value whose Go type disagrees with its declared kind.
	ErrContractViolation = errors.New("contract violation")

	// ErrBuilderConsumed indicates a builder was used after Build.
	ErrBuilderConsumed = errors.New("builder already consumed")

	// ErrMissingRequired indicates a required slot is absent.
	ErrMissingRequired = errors.New("missing required field")

	// ErrUnknownType indicates a universal name has no registered schema.
	ErrUnknownType = errors.New("unknown type")

	// ErrSchemaConflict indicates a universal name is already bound to a different schema.
	ErrSchemaConflict = errors.New("schema conflict")
)

// SchemaError represents a failed schema lookup or definition.
// It wraps a sentinel error with the schema and field involved.
type SchemaError struct {
	Err    error  // Underlying sentinel error (ErrUnknownField, ErrDuplicateField, ...)
	Schema string // Schema name
	Field  string // Field name, if known
	Tag    int16  // Field tag, if known
	Cause  error  // Optional detail
}

func (e *SchemaError) Error() string {
	msg := e.Err.Error()
	switch {
	case e.Field != "" && e.Tag != 0:
		msg = fmt.Sprintf("%s %q (tag %d)", msg, e.Field, e.Tag)
	case e.Field != "":
		msg = fmt.Sprintf("%s %q", msg, e.Field)
	case e.Tag != 0:
		msg = fmt.Sprintf("%s (tag %d)", msg, e.Tag)
	}
	if e.Schema != "" {
		msg = fmt.Sprintf("%s in %s", msg, e.Schema)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// DecodeError represents a terminal decode failure.
// No partial record is ever returned alongside it.
type DecodeError struct {
	Err    error // Underlying sentinel error (ErrTruncated, ErrUnsupportedEncoding, ErrLimitExceeded)
	Offset int   // Byte offset at which the failure was detected
	Cause  error // Optional detail
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s at offset %d: %v", e.Err.Error(), e.Offset, e.Cause)
	}
	return fmt.Sprintf("%s at offset %d", e.Err.Error(), e.Offset)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ContractError represents a value that does not match its declared type.
// It is a programming error on the caller's side, not a wire condition.
type ContractError struct {
	Err   error  // Underlying sentinel error (ErrContractViolation)
	Field string // Dotted field path
	Want  Type   // Declared type
	Got   any    // Offending value
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: field %s wants %s, got %T", e.Err.Error(), e.Field, e.Want, e.Got)
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

// newSchemaError creates a SchemaError for lookup and definition failures.
func newSchemaError(sentinel error, schema, field string, tag int16, cause error) error {
	return &SchemaError{
		Err:    sentinel,
		Schema: schema,
		Field:  field,
		Tag:    tag,
		Cause:  cause,
	}
}

// newDecodeError creates a DecodeError at the given offset.
func newDecodeError(sentinel error, offset int, cause error) error {
	return &DecodeError{
		Err:    sentinel,
		Offset: offset,
		Cause:  cause,
	}
}

// newContractError creates a ContractError for a mistyped value.
func newContractError(field string, want Type, got any) error {
	return &ContractError{
		Err:   ErrContractViolation,
		Field: field,
		Want:  want,
		Got:   got,
	}
}
