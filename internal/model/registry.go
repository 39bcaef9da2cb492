package model

import (
	"database/sql"
	"sort"

	"github.com/deppfellow/estate-storage/internal/errs"
	"github.com/georgysavva/scany/v2/sqlscan"
)

// Class describes one entity type: its table, its queryable columns and
// how to build and scan instances.
type Class struct {
	Name    string
	Table   string
	Columns []string

	columns map[string]struct{}
	newFn   func() Entity
	scanFn  func(rows *sql.Rows) ([]Entity, error)
}

// HasColumn reports whether name is a column of the class (id included).
func (c *Class) HasColumn(name string) bool {
	_, ok := c.columns[name]
	return ok
}

// New returns a zero instance of the class.
func (c *Class) New() Entity {
	return c.newFn()
}

// ScanAll reads every row into fresh instances and closes rows.
func (c *Class) ScanAll(rows *sql.Rows) ([]Entity, error) {
	return c.scanFn(rows)
}

var (
	classes []*Class
	byName  = map[string]*Class{}
)

func init() {
	register[User]()
	register[Agent]()
	register[Property]()
	register[PropertyImage]("Property_image")
	register[Wishlist]("Whishlist")
	register[Review]()
	register[Transaction]()
	register[Subscription]("Subcription")
	register[Room]()
	register[RoomParticipant]("RoomParticipants")
	register[Message]()
}

func register[T any, PT interface {
	*T
	Entity
}](aliases ...string) {
	proto := PT(new(T))

	names := make([]string, 0, len(proto.Record()))
	for col := range proto.Record() {
		names = append(names, col)
	}
	sort.Strings(names)

	c := &Class{
		Name:    proto.ClassName(),
		Table:   proto.TableName(),
		Columns: append([]string{"id"}, names...),
		columns: map[string]struct{}{"id": {}},
		newFn:   func() Entity { return PT(new(T)) },
		scanFn: func(rows *sql.Rows) ([]Entity, error) {
			var items []PT
			if err := sqlscan.ScanAll(&items, rows); err != nil {
				return nil, err
			}
			out := make([]Entity, len(items))
			for i, item := range items {
				out[i] = item
			}
			return out, nil
		},
	}
	for _, col := range names {
		c.columns[col] = struct{}{}
	}

	classes = append(classes, c)
	byName[c.Name] = c
	for _, alias := range aliases {
		byName[alias] = c
	}
}

// Lookup resolves a class by its name or a legacy alias
// (Property_image, Whishlist, RoomParticipants).
func Lookup(name string) (*Class, error) {
	c, ok := byName[name]
	if !ok {
		return nil, errs.NewUnknownClassError(name)
	}
	return c, nil
}

// ClassOf returns the registered class of e.
func ClassOf(e Entity) (*Class, error) {
	return Lookup(e.ClassName())
}

// Classes returns every registered class in registration order.
func Classes() []*Class {
	out := make([]*Class, len(classes))
	copy(out, classes)
	return out
}
