// Package sqlerr specifically handles database driver errors.
//
// It parses cryptic error codes from the database drivers (PostgreSQL
// through pgconn, SQLite through modernc) and converts them into typed
// storage errors with stable codes such as PROPERTY_ALREADY_EXISTS.
package sqlerr
