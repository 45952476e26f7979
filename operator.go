package snowpager

import "github.com/samber/lo"

// Operator is the comparison of a single-column condition.
type Operator string

const (
	OperatorGT Operator = ">"
	OperatorLT Operator = "<"

	// operatorEq is private: it only scopes queries to a partition.
	operatorEq Operator = "="
)

// Valid reports whether the operator may be rendered into SQL. Conditions
// are built from these operators only, the string never comes from a caller.
func (o Operator) Valid() bool {
	return lo.Contains([]Operator{OperatorGT, OperatorLT, operatorEq}, o)
}
