package orm

import (
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Column represents a type-safe database column reference
type Column[T any] struct {
	Name  string
	Table string
}

// String returns the full column reference for SQL
func (c Column[T]) String() string {
	if c.Table != "" {
		return fmt.Sprintf("%s.%s", c.Table, c.Name)
	}
	return c.Name
}

// Eq creates an equality condition
func (c Column[T]) Eq(value T) Condition {
	return Condition{squirrel.Eq{c.String(): value}}
}

// In creates an IN condition
func (c Column[T]) In(values ...T) Condition {
	interfaces := make([]interface{}, len(values))
	for i, v := range values {
		interfaces[i] = v
	}
	return Condition{squirrel.Eq{c.String(): interfaces}}
}

// UUIDColumn provides identifier operations
type UUIDColumn struct {
	Column[uuid.UUID]
}

// Any creates a `= ANY($n::uuid[])` condition so the whole id set travels as one parameter
func (c UUIDColumn) Any(ids []uuid.UUID) Condition {
	return Condition{squirrel.Expr(c.String()+" = ANY(?::uuid[])", pq.Array(uuidStrings(ids)))}
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// Condition wraps squirrel conditions for type safety.
// The zero Condition matches every row.
type Condition struct {
	condition squirrel.Sqlizer
}

// IsZero reports whether the condition is the match-all condition
func (c Condition) IsZero() bool {
	return c.condition == nil
}

// ToSqlizer returns the underlying squirrel condition
func (c Condition) ToSqlizer() squirrel.Sqlizer {
	if c.condition == nil {
		return squirrel.And{}
	}
	return c.condition
}

// And combines multiple conditions with AND, skipping match-all operands
func And(conditions ...Condition) Condition {
	sqlizers := make([]squirrel.Sqlizer, 0, len(conditions))
	for _, c := range conditions {
		if c.IsZero() {
			continue
		}
		sqlizers = append(sqlizers, c.condition)
	}
	switch len(sqlizers) {
	case 0:
		return Condition{}
	case 1:
		return Condition{sqlizers[0]}
	}
	return Condition{squirrel.And(sqlizers)}
}
