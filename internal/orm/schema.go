package orm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// PrimaryKey is the column every schema uses as its identifier
const PrimaryKey = "id"

// Schema is the explicit registry of an entity's table, fields and relations.
// Lookups by field name are map misses, never reflection.
type Schema[T any] struct {
	table           string
	id              func(*T) uuid.UUID
	fields          map[string]Field
	order           []string
	columns         []string
	relations       map[string]Relation[T]
	defaultOrdering string
}

// NewSchema registers the fields of an entity table. The field list must contain
// a uuid field named "id"; empty or duplicate names are rejected.
func NewSchema[T any](table string, id func(*T) uuid.UUID, fields ...Field) (*Schema[T], error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("schema: table name cannot be empty")
	}
	if id == nil {
		return nil, fmt.Errorf("schema %s: id accessor is required", table)
	}

	s := &Schema[T]{
		table:     table,
		id:        id,
		fields:    make(map[string]Field, len(fields)),
		relations: make(map[string]Relation[T]),
	}

	for _, f := range fields {
		if err := f.validate(); err != nil {
			return nil, fmt.Errorf("schema %s: %w", table, err)
		}
		if _, exists := s.fields[f.Name]; exists {
			return nil, fmt.Errorf("schema %s: duplicate field %s", table, f.Name)
		}
		s.fields[f.Name] = f
		s.order = append(s.order, f.Name)
		s.columns = append(s.columns, fmt.Sprintf("%s.%s", table, f.Column))
	}

	pk, ok := s.fields[PrimaryKey]
	if !ok || pk.Kind != KindUUID {
		return nil, fmt.Errorf("schema %s: a uuid %q field is required", table, PrimaryKey)
	}

	return s, nil
}

// MustSchema is NewSchema for package-level declarations
func MustSchema[T any](table string, id func(*T) uuid.UUID, fields ...Field) *Schema[T] {
	s, err := NewSchema(table, id, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// WithDefaultOrdering sets the ordering used when a query does not name one
func (s *Schema[T]) WithDefaultOrdering(ordering string) *Schema[T] {
	s.defaultOrdering = ordering
	return s
}

// Relate attaches relations to the schema. Relations are registered after
// construction so that schemas can reference each other.
func (s *Schema[T]) Relate(relations ...Relation[T]) error {
	for _, rel := range relations {
		name := rel.relationName()
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("schema %s: relation name cannot be empty", s.table)
		}
		if _, exists := s.relations[name]; exists {
			return fmt.Errorf("schema %s: duplicate relation %s", s.table, name)
		}
		if _, clash := s.fields[name]; clash {
			return fmt.Errorf("schema %s: relation %s shadows a field", s.table, name)
		}
		s.relations[name] = rel
	}
	return nil
}

// MustRelate is Relate for package-level wiring
func (s *Schema[T]) MustRelate(relations ...Relation[T]) *Schema[T] {
	if err := s.Relate(relations...); err != nil {
		panic(err)
	}
	return s
}

// Table returns the table name
func (s *Schema[T]) Table() string {
	return s.table
}

// Columns returns the qualified select list
func (s *Schema[T]) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Field looks up a registered field
func (s *Schema[T]) Field(name string) (Field, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// FieldNames returns the registered field names in declaration order
func (s *Schema[T]) FieldNames() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Relations returns the registered relation names, sorted
func (s *Schema[T]) Relations() []string {
	names := make([]string, 0, len(s.relations))
	for name := range s.relations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Qualified returns table.column for a registered field
func (s *Schema[T]) Qualified(name string) string {
	if f, ok := s.fields[name]; ok {
		return fmt.Sprintf("%s.%s", s.table, f.Column)
	}
	return fmt.Sprintf("%s.%s", s.table, name)
}

// IDColumn returns the primary key column reference
func (s *Schema[T]) IDColumn() UUIDColumn {
	return UUIDColumn{Column[uuid.UUID]{Name: PrimaryKey, Table: s.table}}
}

// ID returns the identifier of a record
func (s *Schema[T]) ID(record *T) uuid.UUID {
	return s.id(record)
}

// Query starts a query against the schema's table on the given store
func (s *Schema[T]) Query(ctx context.Context, store *Store) *Query[T] {
	return newQuery(ctx, store, s)
}

// loadRelations eager loads the named relations onto records
func (s *Schema[T]) loadRelations(ctx context.Context, store *Store, records []T, names []string) error {
	if len(records) == 0 {
		return nil
	}
	for _, name := range names {
		rel, ok := s.relations[name]
		if !ok {
			return SchemaError(s.table, name, "unknown relation %q", name)
		}
		if err := rel.load(ctx, store, s.id, records); err != nil {
			return fmt.Errorf("failed to load relationship %s: %w", name, err)
		}
	}
	return nil
}

func (s *Schema[T]) checkRelations(names []string) error {
	for _, name := range names {
		if _, ok := s.relations[name]; !ok {
			return SchemaError(s.table, name, "unknown relation %q", name)
		}
	}
	return nil
}
