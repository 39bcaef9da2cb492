// Package testdb provides test database utilities for the storage layer.
//
// # Test Database Setup
//
// Each test gets its own private SQLite database with the schema applied
// and an open storage facade:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    store := tdb.Storage
//	}
//
// Cleanup is registered with t.Cleanup.
//
// # Multiple Sessions
//
// An in-memory database lives on a single connection, so only one session
// can hold a transaction at a time. Tests that need two facades over the
// same data use NewFile, which backs the database with a file under
// t.TempDir():
//
//	tdb := testdb.NewFile(t)
//	other := tdb.NewStorage()
package testdb
