package orm

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FieldKind describes how a field's values are coerced and which operators apply to it
type FieldKind int

const (
	KindString FieldKind = iota
	KindEnum
	KindUUID
	KindTime
	KindDate
	KindClock
	KindBool
	KindInt
)

func (k FieldKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindEnum:
		return "enum"
	case KindUUID:
		return "uuid"
	case KindTime:
		return "time"
	case KindDate:
		return "date"
	case KindClock:
		return "clock"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Operator is a filter operator, written after a double underscore in a filter key
type Operator string

const (
	OperatorEq       Operator = "eq"
	OperatorNe       Operator = "ne"
	OperatorGt       Operator = "gt"
	OperatorGte      Operator = "gte"
	OperatorLt       Operator = "lt"
	OperatorLte      Operator = "lte"
	OperatorLike     Operator = "like"
	OperatorILike    Operator = "ilike"
	OperatorContains Operator = "contains"
	OperatorIn       Operator = "in"
	OperatorIsNull   Operator = "isnull"
)

var knownOperators = map[Operator]struct{}{
	OperatorEq: {}, OperatorNe: {}, OperatorGt: {}, OperatorGte: {}, OperatorLt: {}, OperatorLte: {},
	OperatorLike: {}, OperatorILike: {}, OperatorContains: {}, OperatorIn: {}, OperatorIsNull: {},
}

var kindOperators = map[FieldKind][]Operator{
	KindString: {OperatorEq, OperatorNe, OperatorGt, OperatorGte, OperatorLt, OperatorLte, OperatorLike, OperatorILike, OperatorContains, OperatorIn, OperatorIsNull},
	KindEnum:   {OperatorEq, OperatorNe, OperatorIn, OperatorIsNull},
	KindUUID:   {OperatorEq, OperatorNe, OperatorIn, OperatorIsNull},
	KindTime:   {OperatorEq, OperatorNe, OperatorGt, OperatorGte, OperatorLt, OperatorLte, OperatorIn, OperatorIsNull},
	KindDate:   {OperatorEq, OperatorNe, OperatorGt, OperatorGte, OperatorLt, OperatorLte, OperatorIn, OperatorIsNull},
	KindClock:  {OperatorEq, OperatorNe, OperatorGt, OperatorGte, OperatorLt, OperatorLte, OperatorIn, OperatorIsNull},
	KindBool:   {OperatorEq, OperatorNe, OperatorIsNull},
	KindInt:    {OperatorEq, OperatorNe, OperatorGt, OperatorGte, OperatorLt, OperatorLte, OperatorIn, OperatorIsNull},
}

// Field describes one column an entity exposes to filtering, ordering and selection
type Field struct {
	Name       string
	Column     string
	Kind       FieldKind
	Enum       []string
	Sortable   bool
	Filterable bool
}

func newField(name string, kind FieldKind) Field {
	return Field{Name: name, Column: name, Kind: kind, Sortable: true, Filterable: true}
}

// StringField declares a text column
func StringField(name string) Field { return newField(name, KindString) }

// UUIDField declares a uuid column
func UUIDField(name string) Field { return newField(name, KindUUID) }

// TimeField declares a timestamp column
func TimeField(name string) Field { return newField(name, KindTime) }

// DateField declares a calendar date column
func DateField(name string) Field { return newField(name, KindDate) }

// ClockField declares a time of day column
func ClockField(name string) Field { return newField(name, KindClock) }

// BoolField declares a boolean column
func BoolField(name string) Field { return newField(name, KindBool) }

// IntField declares an integer column
func IntField(name string) Field { return newField(name, KindInt) }

// EnumField declares a text column restricted to the given values
func EnumField(name string, values ...string) Field {
	f := newField(name, KindEnum)
	f.Enum = values
	return f
}

// As maps the field to a differently named column
func (f Field) As(column string) Field {
	f.Column = column
	return f
}

// NoSort excludes the field from ordering
func (f Field) NoSort() Field {
	f.Sortable = false
	return f
}

// NoFilter excludes the field from filtering
func (f Field) NoFilter() Field {
	f.Filterable = false
	return f
}

// Private keeps the field selectable but hides it from filtering and ordering
func (f Field) Private() Field {
	return f.NoSort().NoFilter()
}

// Supports reports whether op can be applied to the field's kind
func (f Field) Supports(op Operator) bool {
	for _, candidate := range kindOperators[f.Kind] {
		if candidate == op {
			return true
		}
	}
	return false
}

func (f Field) validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("field name cannot be empty")
	}
	if strings.Contains(f.Name, "__") {
		return fmt.Errorf("field %s: name cannot contain the operator separator", f.Name)
	}
	if strings.TrimSpace(f.Column) == "" {
		return fmt.Errorf("field %s: column cannot be empty", f.Name)
	}
	if _, ok := kindOperators[f.Kind]; !ok {
		return fmt.Errorf("field %s: unknown kind %s", f.Name, f.Kind)
	}
	if f.Kind == KindEnum && len(f.Enum) == 0 {
		return fmt.Errorf("field %s: enum requires at least one value", f.Name)
	}
	return nil
}

// Coerce converts a typed value or a raw query-string value to the field's semantic type
func (f Field) Coerce(value interface{}) (interface{}, error) {
	switch f.Kind {
	case KindString:
		s, ok := asString(value)
		if !ok {
			return nil, ValidationError(f.Name, "expected text, got %T", value)
		}
		return s, nil

	case KindEnum:
		s, ok := asString(value)
		if !ok {
			return nil, ValidationError(f.Name, "expected text, got %T", value)
		}
		for _, allowed := range f.Enum {
			if s == allowed {
				return s, nil
			}
		}
		return nil, ValidationError(f.Name, "%q is not one of %s", s, strings.Join(f.Enum, ", "))

	case KindUUID:
		switch v := value.(type) {
		case uuid.UUID:
			return v, nil
		case string:
			id, err := uuid.Parse(strings.TrimSpace(v))
			if err != nil {
				return nil, ValidationError(f.Name, "invalid uuid %q", v)
			}
			return id, nil
		}
		return nil, ValidationError(f.Name, "expected uuid, got %T", value)

	case KindTime, KindDate:
		switch v := value.(type) {
		case time.Time:
			return v, nil
		case string:
			t, err := parseTime(strings.TrimSpace(v))
			if err != nil {
				return nil, ValidationError(f.Name, "invalid time %q", v)
			}
			return t, nil
		}
		return nil, ValidationError(f.Name, "expected time, got %T", value)

	case KindClock:
		s, ok := asString(value)
		if !ok {
			return nil, ValidationError(f.Name, "expected a time of day, got %T", value)
		}
		clock, err := parseClock(strings.TrimSpace(s))
		if err != nil {
			return nil, ValidationError(f.Name, "invalid time of day %q", s)
		}
		return clock, nil

	case KindBool:
		return coerceBool(f.Name, value)

	case KindInt:
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int32:
			return int64(v), nil
		case int64:
			return v, nil
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, ValidationError(f.Name, "invalid integer %q", v)
			}
			return n, nil
		}
		return nil, ValidationError(f.Name, "expected integer, got %T", value)
	}

	return nil, SchemaError("", f.Name, "unknown kind %s", f.Kind)
}

// CoerceList converts a slice or a comma separated string into a list of coerced values
func (f Field) CoerceList(value interface{}) ([]interface{}, error) {
	var raw []interface{}

	switch v := value.(type) {
	case string:
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				raw = append(raw, part)
			}
		}
	case []interface{}:
		raw = v
	case []string:
		for _, s := range v {
			raw = append(raw, s)
		}
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice {
			return nil, ValidationError(f.Name, "expected a list, got %T", value)
		}
		for i := 0; i < rv.Len(); i++ {
			raw = append(raw, rv.Index(i).Interface())
		}
	}

	if len(raw) == 0 {
		return nil, ValidationError(f.Name, "in requires at least one value")
	}

	out := make([]interface{}, len(raw))
	for i, item := range raw {
		coerced, err := f.Coerce(item)
		if err != nil {
			return nil, err
		}
		out[i] = coerced
	}
	return out, nil
}

func coerceBool(name string, value interface{}) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, ValidationError(name, "invalid boolean %q", v)
		}
		return b, nil
	}
	return false, ValidationError(name, "expected boolean, got %T", value)
}

func asString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case fmt.Stringer:
		return v.String(), true
	}
	rv := reflect.ValueOf(value)
	if rv.IsValid() && rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

var clockLayouts = []string{"15:04:05.999999999", "15:04"}

// parseClock normalizes a time of day to hh:mm:ss
func parseClock(s string) (string, error) {
	var lastErr error
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.Format("15:04:05"), nil
		}
		lastErr = err
	}
	return "", lastErr
}
