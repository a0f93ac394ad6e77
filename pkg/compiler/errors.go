package compiler

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrUnsupportedSchema indicates a schema construct the type mapper
	// cannot classify.
	ErrUnsupportedSchema = errors.New("unsupported schema construct")

	// ErrCyclicSchema indicates a self-referential schema that cannot be
	// inlined into the closed type model.
	ErrCyclicSchema = errors.New("cyclic schema reference")

	// ErrAmbiguousPayload indicates an operation declaring more than one
	// request payload.
	ErrAmbiguousPayload = errors.New("ambiguous payload")
)

// AmbiguousPayloadError is returned when an operation declares conflicting
// payload-bearing parameters: more than one body, or a body mixed with form
// fields. Form fields alone may repeat; they accumulate into one form payload.
type AmbiguousPayloadError struct {
	// Operation identifies the offending operation by id or method+path.
	Operation string
	// Parameters are the names of the conflicting payload parameters.
	Parameters []string
}

// Error returns a human-readable error message.
func (e *AmbiguousPayloadError) Error() string {
	return fmt.Sprintf("operation %s: more than one payload parameter: %v", e.Operation, e.Parameters)
}

// Is reports whether target matches this error type.
func (e *AmbiguousPayloadError) Is(target error) bool {
	return target == ErrAmbiguousPayload
}

// UnsupportedSchemaError is returned when a schema node declares a construct
// outside the supported type model, currently discriminated polymorphism.
type UnsupportedSchemaError struct {
	// Construct names the unsupported shape, e.g. "discriminator".
	Construct string
	// Detail carries extra context such as the discriminator property name.
	Detail string
}

// Error returns a human-readable error message.
func (e *UnsupportedSchemaError) Error() string {
	msg := fmt.Sprintf("unsupported schema construct %q", e.Construct)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg + " (please report the schema shape that produced this)"
}

// Is reports whether target matches this error type.
func (e *UnsupportedSchemaError) Is(target error) bool {
	return target == ErrUnsupportedSchema
}

// CyclicSchemaError is returned when inlining a $ref chain revisits a
// reference, which the closed type model cannot represent.
type CyclicSchemaError struct {
	// Ref is the reference that closed the cycle.
	Ref string
}

// Error returns a human-readable error message.
func (e *CyclicSchemaError) Error() string {
	return fmt.Sprintf("cyclic schema reference through %q", e.Ref)
}

// Is reports whether target matches this error type.
func (e *CyclicSchemaError) Is(target error) bool {
	return target == ErrCyclicSchema
}
