package orm

import (
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"
)

// OperatorSeparator splits a filter key into field and operator, as in "date__gte"
const OperatorSeparator = "__"

// likeEscaper quotes LIKE wildcards with the default backslash escape
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Filter translates {field: value} and {field__op: value} pairs into one predicate.
// Distinct keys are combined with AND in sorted key order. An empty mapping
// yields the zero Condition, which matches every row.
func (s *Schema[T]) Filter(filters map[string]interface{}) (Condition, error) {
	if len(filters) == 0 {
		return Condition{}, nil
	}

	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	conditions := make([]Condition, 0, len(keys))
	for _, key := range keys {
		cond, err := s.filterTerm(key, filters[key])
		if err != nil {
			return Condition{}, err
		}
		conditions = append(conditions, cond)
	}

	return And(conditions...), nil
}

func (s *Schema[T]) filterTerm(key string, value interface{}) (Condition, error) {
	name, rawOp, hasOp := strings.Cut(key, OperatorSeparator)
	op := OperatorEq
	if hasOp {
		op = Operator(rawOp)
	}

	field, ok := s.fields[name]
	if !ok || !field.Filterable {
		return Condition{}, SchemaError(s.table, name, "unknown filter field %q", name)
	}

	if _, known := knownOperators[op]; !known {
		return Condition{}, SchemaError(s.table, name, "unknown operator %q", rawOp)
	}

	if !field.Supports(op) {
		return Condition{}, SchemaError(s.table, name, "operator %q is not supported for %s fields", op, field.Kind)
	}

	return buildTerm(s.Qualified(name), field, op, value)
}

func buildTerm(column string, field Field, op Operator, value interface{}) (Condition, error) {
	if op == OperatorIsNull {
		isNull, err := coerceBool(field.Name, value)
		if err != nil {
			return Condition{}, err
		}
		if isNull {
			return Condition{squirrel.Eq{column: nil}}, nil
		}
		return Condition{squirrel.NotEq{column: nil}}, nil
	}

	if op == OperatorIn {
		values, err := field.CoerceList(value)
		if err != nil {
			return Condition{}, err
		}
		return Condition{squirrel.Eq{column: values}}, nil
	}

	if value == nil {
		switch op {
		case OperatorEq:
			return Condition{squirrel.Eq{column: nil}}, nil
		case OperatorNe:
			return Condition{squirrel.NotEq{column: nil}}, nil
		}
		return Condition{}, ValidationError(field.Name, "operator %q requires a value", op)
	}

	v, err := field.Coerce(value)
	if err != nil {
		return Condition{}, err
	}

	switch op {
	case OperatorEq:
		return Condition{squirrel.Eq{column: v}}, nil
	case OperatorNe:
		return Condition{squirrel.NotEq{column: v}}, nil
	case OperatorGt:
		return Condition{squirrel.Gt{column: v}}, nil
	case OperatorGte:
		return Condition{squirrel.GtOrEq{column: v}}, nil
	case OperatorLt:
		return Condition{squirrel.Lt{column: v}}, nil
	case OperatorLte:
		return Condition{squirrel.LtOrEq{column: v}}, nil
	case OperatorLike:
		return Condition{squirrel.Like{column: v}}, nil
	case OperatorILike:
		return Condition{squirrel.ILike{column: v}}, nil
	case OperatorContains:
		return Condition{squirrel.Like{column: "%" + likeEscaper.Replace(v.(string)) + "%"}}, nil
	}

	return Condition{}, SchemaError("", field.Name, "unknown operator %q", op)
}
