package errs

import (
	"strings"
)

// FieldError represents a field-level validation error.
// Example:
//
//	{ "field": "email", "error": "must be a valid email address" }
type FieldError struct {
	// Field is the column the error relates to (e.g. "email").
	Field string `json:"field"`

	// Error is the human-readable error message.
	Error string `json:"error"`
}

// Kind is a string-based enum classifying storage failures.
type Kind string

const (
	// KindLookup marks an unknown class or field name.
	KindLookup Kind = "lookup"

	// KindValidation marks a malformed request: unrecognised operator or
	// order direction, or an entity whose fields fail validation.
	KindValidation Kind = "validation"

	// KindStore marks a failure reported by the database (commit,
	// connection, constraint).
	KindStore Kind = "store"

	// KindClosed marks use of a session after Close.
	KindClosed Kind = "closed"
)

// Error is the main error type of the storage layer.
//
// Fields:
//   - Kind: category used by errors.Is.
//   - Code: machine-friendly code (e.g. "PROPERTY_ALREADY_EXISTS").
//   - Message: human-friendly message.
//   - Op: the facade operation that failed (e.g. "GetObject").
//   - Err: the wrapped cause, if any.
//   - Errors: per-field validation errors.
type Error struct {
	Kind    Kind         `json:"kind"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Op      string       `json:"op,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`

	Err error `json:"-"`
}

// Error makes *Error satisfy the built-in `error` interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Err != nil && e.Err.Error() != e.Message {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is customizes how errors.Is(...) treats Error.
//
// Two *Error values match when their Kind matches and, if the target
// carries a Code, the Code matches too. This lets the sentinels below act
// as category checks:
//
//	errors.Is(err, errs.ErrUnknownClass)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// WithOp returns a copy of this Error tagged with the failing operation.
func (e *Error) WithOp(op string) *Error {
	return &Error{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Message,
		Op:      op,
		Errors:  e.Errors,
		Err:     e.Err,
	}
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"unknown field" -> "UNKNOWN_FIELD"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
