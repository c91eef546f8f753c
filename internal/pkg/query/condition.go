package query

import (
	"fmt"
	"strings"
)

// Condition represents a WHERE clause condition.
// Implementations must generate SQL fragments and parameter maps
// using Spanner's named parameter format (@paramName).
type Condition interface {
	// SQL returns the SQL fragment and parameter map for this condition.
	// paramIndex is used to generate unique parameter names (@p0, @p1, etc.)
	SQL(paramIndex int) (string, map[string]interface{})
}

// compareCondition implements binary comparisons (field <op> value).
type compareCondition struct {
	field string
	op    string
	value interface{}
}

// Eq creates a WHERE condition for equality comparison.
// Example: Eq("status", "approved") generates "status = @p0"
func Eq(field string, value interface{}) Condition {
	return &compareCondition{field: field, op: "=", value: value}
}

// Gte creates a WHERE condition for field >= value.
// Example: Gte("expiry_date", today) generates "expiry_date >= @p0"
func Gte(field string, value interface{}) Condition {
	return &compareCondition{field: field, op: ">=", value: value}
}

// SQL generates the SQL fragment for the comparison.
func (c *compareCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	paramName := fmt.Sprintf("p%d", paramIndex)
	sql := fmt.Sprintf("%s %s @%s", c.field, c.op, paramName)
	params := map[string]interface{}{
		paramName: c.value,
	}
	return sql, params
}

// IsNull creates a WHERE condition for NULL checks.
// Example: IsNull("expiry_date") generates "expiry_date IS NULL"
func IsNull(field string) Condition {
	return &isNullCondition{field: field}
}

// isNullCondition implements IS NULL comparison.
type isNullCondition struct {
	field string
}

// SQL generates the SQL fragment for IS NULL comparison.
func (c *isNullCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	sql := fmt.Sprintf("%s IS NULL", c.field)
	return sql, map[string]interface{}{}
}

// orCondition joins nested conditions with OR.
type orCondition struct {
	conditions []Condition
}

// Or creates a parenthesized disjunction of conditions.
// Example: Or(IsNull("expiry_date"), Gte("expiry_date", today))
// generates "(expiry_date IS NULL OR expiry_date >= @p0)"
func Or(conditions ...Condition) Condition {
	return &orCondition{conditions: conditions}
}

// SQL generates the SQL fragment, numbering parameters from paramIndex.
func (c *orCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	params := make(map[string]interface{})
	parts := make([]string, 0, len(c.conditions))
	for _, condition := range c.conditions {
		fragment, condParams := condition.SQL(paramIndex)
		parts = append(parts, fragment)
		for k, v := range condParams {
			params[k] = v
		}
		paramIndex += len(condParams)
	}
	return "(" + strings.Join(parts, " OR ") + ")", params
}
