// Package validation contains the logic for validating
// entities before they are queued for insert.
//
// It uses the `validator` library to enforce rules (like
// email formats or non-negative prices) defined in struct tags
// and extracts validation errors into errs.FieldError values
// keyed by column name.
package validation
