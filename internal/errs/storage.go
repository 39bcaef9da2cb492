package errs

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks. Matching is by Kind and Code, so an error
// built by the constructors below with a different message still matches.
var (
	ErrUnknownClass     = &Error{Kind: KindLookup, Code: "UNKNOWN_CLASS", Message: "unknown class"}
	ErrUnknownField     = &Error{Kind: KindLookup, Code: "UNKNOWN_FIELD", Message: "unknown field"}
	ErrInvalidOperator  = &Error{Kind: KindValidation, Code: "INVALID_OPERATOR", Message: "invalid operator"}
	ErrInvalidDirection = &Error{Kind: KindValidation, Code: "INVALID_DIRECTION", Message: "invalid order direction"}
	ErrInvalidEntity    = &Error{Kind: KindValidation, Code: "INVALID_ENTITY", Message: "validation failed"}
	ErrSessionClosed    = &Error{Kind: KindClosed, Code: "SESSION_CLOSED", Message: "session is closed"}

	// ErrLookup and ErrValidation match any error of their kind.
	ErrLookup     = &Error{Kind: KindLookup}
	ErrValidation = &Error{Kind: KindValidation}
	ErrStore      = &Error{Kind: KindStore}
)

// NewUnknownClassError reports a class name absent from the registry.
func NewUnknownClassError(name string) *Error {
	return &Error{
		Kind:    KindLookup,
		Code:    ErrUnknownClass.Code,
		Message: fmt.Sprintf("unknown class %q", name),
	}
}

// NewUnknownFieldError reports a filter or order field the class does not have.
func NewUnknownFieldError(class, field string) *Error {
	return &Error{
		Kind:    KindLookup,
		Code:    ErrUnknownField.Code,
		Message: fmt.Sprintf("class %s has no field %q", class, field),
	}
}

// NewInvalidOperatorError reports an unrecognised comparison sign.
func NewInvalidOperatorError(sign string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    ErrInvalidOperator.Code,
		Message: fmt.Sprintf("invalid sign %q", sign),
	}
}

// NewInvalidDirectionError reports an order direction other than asc/desc.
func NewInvalidDirectionError(direction string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    ErrInvalidDirection.Code,
		Message: fmt.Sprintf("invalid order direction %q (must be asc or desc)", direction),
	}
}

// NewValidationError wraps per-field failures of an entity.
func NewValidationError(class string, fieldErrors []FieldError) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    ErrInvalidEntity.Code,
		Message: fmt.Sprintf("%s validation failed", class),
		Errors:  fieldErrors,
	}
}

// NewStoreError wraps a database failure. code is optional; when empty the
// generic STORE_ERROR is used.
func NewStoreError(code, message string, err error) *Error {
	if code == "" {
		code = "STORE_ERROR"
	}
	return &Error{
		Kind:    KindStore,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewSessionClosedError reports use of the facade after Close.
func NewSessionClosedError(op string) *Error {
	return ErrSessionClosed.WithOp(op)
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
