package filter

import (
	"fmt"
	"strings"

	"github.com/deppfellow/estate-storage/internal/errs"
)

// Operator is the closed set of comparisons a Condition can use.
type Operator int

const (
	Equal Operator = iota
	NotEqual
	Greater
	GreaterOrEqual
	Less
	LessOrEqual
	// Like matches values containing the given text.
	Like
)

var operatorNames = map[Operator]string{
	Equal:          "=",
	NotEqual:       "!=",
	Greater:        ">",
	GreaterOrEqual: ">=",
	Less:           "<",
	LessOrEqual:    "<=",
	Like:           "like",
}

// signs maps every accepted sign spelling to its operator. The empty sign
// means equality.
var signs = map[string]Operator{
	"":         Equal,
	"=":        Equal,
	"==":       Equal,
	"eq":       Equal,
	"!=":       NotEqual,
	"<>":       NotEqual,
	"ne":       NotEqual,
	">":        Greater,
	"gt":       Greater,
	">=":       GreaterOrEqual,
	"ge":       GreaterOrEqual,
	"gte":      GreaterOrEqual,
	"<":        Less,
	"lt":       Less,
	"<=":       LessOrEqual,
	"le":       LessOrEqual,
	"lte":      LessOrEqual,
	"like":     Like,
	"contains": Like,
}

// ParseOperator maps a sign string to an Operator. Word signs are matched
// case-insensitively. Anything unrecognised is a validation error; there is
// no fallback to equality.
func ParseOperator(sign string) (Operator, error) {
	op, ok := signs[strings.ToLower(strings.TrimSpace(sign))]
	if !ok {
		return 0, errs.NewInvalidOperatorError(sign)
	}
	return op, nil
}

// Valid reports whether o is one of the declared operators.
func (o Operator) Valid() bool {
	_, ok := operatorNames[o]
	return ok
}

func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}
