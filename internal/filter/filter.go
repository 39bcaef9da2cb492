// Package filter turns typed filter specifications into SQL predicates.
//
// A Spec is a list of (field, operator, value) conditions combined with
// AND, plus optional ordering, limit and offset. Field names are checked
// against the model class before any SQL is built, so only known columns
// ever reach a statement; values are always bound as parameters.
package filter

import (
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/deppfellow/estate-storage/internal/errs"
	"github.com/deppfellow/estate-storage/internal/model"
)

// Condition compares one column with a value.
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// Order sorts results by one column. The identity column is always
// appended as a tiebreaker.
type Order struct {
	Field string
	Desc  bool
}

// ParseOrder builds an Order from a (field, direction) pair. direction is
// "asc" or "desc" (any case); an empty direction means ascending.
func ParseOrder(field, direction string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", "asc":
		return Order{Field: field}, nil
	case "desc":
		return Order{Field: field, Desc: true}, nil
	}
	return Order{}, errs.NewInvalidDirectionError(direction)
}

// Spec is a complete filter: conditions, ordering and pagination.
// A zero Limit means no limit.
type Spec struct {
	Conditions []Condition
	Order      *Order
	Limit      int
	Offset     int
}

// Where returns a copy of s with one more condition.
func (s Spec) Where(field string, op Operator, value any) Spec {
	conds := make([]Condition, len(s.Conditions), len(s.Conditions)+1)
	copy(conds, s.Conditions)
	s.Conditions = append(conds, Condition{Field: field, Op: op, Value: value})
	return s
}

// OrderBy returns a copy of s ordered by field.
func (s Spec) OrderBy(field string, desc bool) Spec {
	s.Order = &Order{Field: field, Desc: desc}
	return s
}

// Page returns a copy of s with limit and offset set.
func (s Spec) Page(limit, offset int) Spec {
	s.Limit = limit
	s.Offset = offset
	return s
}

// FromKeywords builds a Spec from keyword-style filters where every value
// is compared with the same sign. Keys are applied in sorted order so the
// generated SQL is deterministic.
func FromKeywords(sign string, filters map[string]any) (Spec, error) {
	op, err := ParseOperator(sign)
	if err != nil {
		return Spec{}, err
	}

	fields := make([]string, 0, len(filters))
	for field := range filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	spec := Spec{Conditions: make([]Condition, 0, len(fields))}
	for _, field := range fields {
		spec.Conditions = append(spec.Conditions, Condition{Field: field, Op: op, Value: filters[field]})
	}
	return spec, nil
}

// Validate checks every field and operator of s against class c.
func (s Spec) Validate(c *model.Class) error {
	for _, cond := range s.Conditions {
		if !c.HasColumn(cond.Field) {
			return errs.NewUnknownFieldError(c.Name, cond.Field)
		}
		if !cond.Op.Valid() {
			return errs.NewInvalidOperatorError(cond.Op.String())
		}
	}
	if s.Order != nil && !c.HasColumn(s.Order.Field) {
		return errs.NewUnknownFieldError(c.Name, s.Order.Field)
	}
	if s.Limit < 0 || s.Offset < 0 {
		return &errs.Error{
			Kind:    errs.KindValidation,
			Code:    "INVALID_PAGINATION",
			Message: fmt.Sprintf("limit and offset must be non-negative (got %d, %d)", s.Limit, s.Offset),
		}
	}
	return nil
}

// Predicate returns the AND of every condition, or nil when there are none.
func (s Spec) Predicate() sq.Sqlizer {
	if len(s.Conditions) == 0 {
		return nil
	}
	and := make(sq.And, 0, len(s.Conditions))
	for _, cond := range s.Conditions {
		and = append(and, cond.Sqlizer())
	}
	return and
}

// Sqlizer renders the condition as a squirrel expression.
func (c Condition) Sqlizer() sq.Sqlizer {
	switch c.Op {
	case NotEqual:
		return sq.NotEq{c.Field: c.Value}
	case Greater:
		return sq.Gt{c.Field: c.Value}
	case GreaterOrEqual:
		return sq.GtOrEq{c.Field: c.Value}
	case Less:
		return sq.Lt{c.Field: c.Value}
	case LessOrEqual:
		return sq.LtOrEq{c.Field: c.Value}
	case Like:
		return sq.Expr(fmt.Sprintf(`LOWER(CAST(%s AS TEXT)) LIKE LOWER(?) ESCAPE '\'`, c.Field), ContainsPattern(c.Value))
	}
	return sq.Eq{c.Field: c.Value}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern returns the LIKE pattern matching values that contain v
// literally. The pattern uses backslash as its escape character.
func ContainsPattern(v any) string {
	return "%" + likeEscaper.Replace(fmt.Sprint(v)) + "%"
}

// Apply validates s against c and adds its WHERE, ORDER BY, LIMIT and
// OFFSET clauses to b.
func (s Spec) Apply(c *model.Class, b sq.SelectBuilder) (sq.SelectBuilder, error) {
	if err := s.Validate(c); err != nil {
		return b, err
	}
	return s.apply(b), nil
}

// ApplyWhere validates s against c and adds only its WHERE clause.
func (s Spec) ApplyWhere(c *model.Class, b sq.SelectBuilder) (sq.SelectBuilder, error) {
	if err := s.Validate(c); err != nil {
		return b, err
	}
	if pred := s.Predicate(); pred != nil {
		b = b.Where(pred)
	}
	return b, nil
}

func (s Spec) apply(b sq.SelectBuilder) sq.SelectBuilder {
	if pred := s.Predicate(); pred != nil {
		b = b.Where(pred)
	}

	switch {
	case s.Order == nil:
		b = b.OrderBy("id ASC")
	case s.Order.Field == "id":
		b = b.OrderBy("id " + direction(s.Order.Desc))
	default:
		b = b.OrderBy(s.Order.Field+" "+direction(s.Order.Desc), "id ASC")
	}

	if s.Limit > 0 {
		b = b.Limit(uint64(s.Limit))
	}
	if s.Offset > 0 {
		if s.Limit == 0 {
			// SQLite only accepts OFFSET after a LIMIT clause.
			b = b.Limit(uint64(1<<63 - 1))
		}
		b = b.Offset(uint64(s.Offset))
	}
	return b
}

func direction(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}
