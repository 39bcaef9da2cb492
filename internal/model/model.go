// Package model defines the persisted records of the real-estate domain
// and the registry the storage facade uses to resolve class names.
//
// Every entity is a plain struct with `db` tags (read by scany when
// scanning rows) and `validate` tags (checked before an insert is queued).
// Record returns the column values to write, so no reflection is needed
// on the write path.
package model

import (
	"fmt"
)

// Entity is implemented by every persisted record.
//
// ClassName and TableName must work on a nil pointer so the registry can
// describe a class without an instance.
type Entity interface {
	ClassName() string
	TableName() string
	GetID() int64
	SetID(id int64)
	// Record returns column -> value for every column except id. The id is
	// added when it is non-zero.
	Record() map[string]any
}

// Defaulter is implemented by entities that fill generated fields before
// their first insert.
type Defaulter interface {
	SetDefaults()
}

// Key identifies one entity: its class and identity.
type Key struct {
	Class string
	ID    int64
}

// KeyOf returns the Key of e.
func KeyOf(e Entity) Key {
	return Key{Class: e.ClassName(), ID: e.GetID()}
}

// String renders the key as "<ClassName>.<id>".
func (k Key) String() string {
	return fmt.Sprintf("%s.%d", k.Class, k.ID)
}

func withID(id int64, rec map[string]any) map[string]any {
	if id != 0 {
		rec["id"] = id
	}
	return rec
}
