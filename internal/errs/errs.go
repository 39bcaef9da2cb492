// Package errs defines the error types returned by the storage facade.
//
// Its purpose is to give callers a small, stable taxonomy so they can
// tell a malformed request (unknown class, unknown field, bad operator)
// apart from a store failure or from use of a closed session.
//
// - Typed kinds checked with errors.Is against the sentinels below.
// - Field-level validation errors for entities rejected before insert.
// - The underlying driver error stays reachable through errors.As.
package errs
