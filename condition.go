package snowpager

import (
	"database/sql/driver"
	"fmt"

	"gorm.io/gorm/clause"
)

// condition is a single keyset predicate of the form "Column Operator Value".
type condition struct {
	Column   string
	Value    any
	Operator Operator
}

// toGORMExpression converts the condition into a clause.Expression.
//
// IMPORTANT: The method uses the SQL placeholder "?".
//
// Example:
//
//	condition{Column: "id", Operator: "<", Value: ID(123)}
//
// Result:
//
//	"id < 123"
func (c condition) toGORMExpression() clause.Expression {
	sqlClause, arg := c.toSQLClause()

	return clause.Expr{
		SQL:  sqlClause,
		Vars: []any{arg},
	}
}

// toSQLClause returns ("Column Operator ?", Value). An invalid operator
// panics: conditions are only built inside the package.
func (c condition) toSQLClause() (string, driver.Value) {
	if !c.Operator.Valid() {
		panic(fmt.Errorf("invalid operator '%s' in condition on %s", c.Operator, c.Column))
	}

	return fmt.Sprintf("%s %s ?", c.Column, c.Operator), c.Value
}
