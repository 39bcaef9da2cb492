package database

import (
	sq "github.com/Masterminds/squirrel"
)

// Dialect holds what differs between the supported SQL engines when
// building statements.
type Dialect struct {
	Name        string
	Placeholder sq.PlaceholderFormat
}

var (
	Postgres = Dialect{Name: "postgres", Placeholder: sq.Dollar}
	SQLite   = Dialect{Name: "sqlite", Placeholder: sq.Question}
)

// Builder returns a squirrel statement builder using the dialect's
// placeholder format.
func (d Dialect) Builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(d.Placeholder)
}
