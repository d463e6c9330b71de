package orm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

// Query provides a fluent interface for building queries against one schema
type Query[T any] struct {
	store  *Store
	schema *Schema[T]
	ctx    context.Context
	err    error

	limit       *uint64
	offset      *uint64
	orderBy     []string
	whereClause squirrel.And
	includes    []string
}

func newQuery[T any](ctx context.Context, store *Store, schema *Schema[T]) *Query[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Query[T]{
		store:       store,
		schema:      schema,
		ctx:         ctx,
		whereClause: squirrel.And{},
	}
}

// Where adds a condition. Match-all conditions are ignored.
func (q *Query[T]) Where(condition Condition) *Query[T] {
	if q.err != nil || condition.IsZero() {
		return q
	}
	if conj, ok := condition.ToSqlizer().(squirrel.And); ok {
		q.whereClause = append(q.whereClause, conj...)
		return q
	}
	q.whereClause = append(q.whereClause, condition.ToSqlizer())
	return q
}

// Filter adds the predicate built from a filter mapping
func (q *Query[T]) Filter(filters map[string]interface{}) *Query[T] {
	if q.err != nil {
		return q
	}
	cond, err := q.schema.Filter(filters)
	if err != nil {
		q.err = err
		return q
	}
	return q.Where(cond)
}

// OrderBy adds raw ORDER BY expressions
func (q *Query[T]) OrderBy(expressions ...string) *Query[T] {
	if q.err != nil {
		return q
	}
	q.orderBy = append(q.orderBy, expressions...)
	return q
}

// Order adds an ordering directive such as "name" or "-created_at".
// The primary key is appended in the same direction as a tie-break.
func (q *Query[T]) Order(ordering string) *Query[T] {
	if q.err != nil {
		return q
	}
	exprs, err := q.schema.orderExpressions(ordering)
	if err != nil {
		q.err = err
		return q
	}
	q.orderBy = append(q.orderBy, exprs...)
	return q
}

// Limit sets the LIMIT clause
func (q *Query[T]) Limit(limit uint64) *Query[T] {
	if q.err != nil {
		return q
	}
	q.limit = &limit
	return q
}

// Offset sets the OFFSET clause
func (q *Query[T]) Offset(offset uint64) *Query[T] {
	if q.err != nil {
		return q
	}
	q.offset = &offset
	return q
}

// Include adds relationships to eager load
func (q *Query[T]) Include(relationships ...string) *Query[T] {
	if q.err != nil {
		return q
	}
	if err := q.schema.checkRelations(relationships); err != nil {
		q.err = err
		return q
	}
	for _, name := range relationships {
		if !containsString(q.includes, name) {
			q.includes = append(q.includes, name)
		}
	}
	return q
}

// IncludeAll eager loads every relation the schema registers
func (q *Query[T]) IncludeAll() *Query[T] {
	return q.Include(q.schema.Relations()...)
}

func (q *Query[T]) buildSelect() squirrel.SelectBuilder {
	builder := squirrel.Select(q.schema.columns...).
		From(q.schema.table).
		PlaceholderFormat(squirrel.Dollar)

	if len(q.whereClause) > 0 {
		builder = builder.Where(q.whereClause)
	}

	if len(q.orderBy) > 0 {
		builder = builder.OrderBy(q.orderBy...)
	}

	if q.limit != nil {
		builder = builder.Limit(*q.limit)
	}

	if q.offset != nil {
		builder = builder.Offset(*q.offset)
	}

	return builder
}

// Find executes the query and returns all matching records
func (q *Query[T]) Find() ([]T, error) {
	if q.err != nil {
		return nil, q.err
	}

	records := make([]T, 0)
	if err := q.store.selectInto(q.ctx, OpFind, q.schema.table, q.buildSelect(), &records); err != nil {
		return nil, err
	}

	if len(q.includes) > 0 {
		if err := q.schema.loadRelations(q.ctx, q.store, records, q.includes); err != nil {
			return nil, err
		}
	}

	return records, nil
}

// First executes the query and returns the first matching record
func (q *Query[T]) First() (*T, error) {
	q.Limit(1)
	records, err := q.Find()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, NotFoundError("first", q.schema.table)
	}

	return &records[0], nil
}

// Count returns the number of rows matching the conditions, ignoring window and ordering
func (q *Query[T]) Count() (int64, error) {
	if q.err != nil {
		return 0, q.err
	}

	countBuilder := squirrel.Select("COUNT(*)").
		From(q.schema.table).
		PlaceholderFormat(squirrel.Dollar)

	if len(q.whereClause) > 0 {
		countBuilder = countBuilder.Where(q.whereClause)
	}

	var count int64
	if err := q.store.getInto(q.ctx, OpCount, q.schema.table, countBuilder, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// Exists reports whether any row matches
func (q *Query[T]) Exists() (bool, error) {
	count, err := q.Count()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes matching rows. A query without conditions is refused.
func (q *Query[T]) Delete() (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	if len(q.whereClause) == 0 {
		return 0, &Error{
			Op:    string(OpDelete),
			Table: q.schema.table,
			Err:   fmt.Errorf("refusing to delete without conditions"),
		}
	}

	deleteBuilder := squirrel.Delete(q.schema.table).
		Where(q.whereClause).
		PlaceholderFormat(squirrel.Dollar)

	return q.store.exec(q.ctx, OpDelete, q.schema.table, deleteBuilder)
}

// Update sets columns on matching rows. A query without conditions is refused.
func (q *Query[T]) Update(values map[string]interface{}) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	if len(values) == 0 {
		return 0, &Error{
			Op:    string(OpUpdate),
			Table: q.schema.table,
			Err:   fmt.Errorf("no updates provided"),
		}
	}
	if len(q.whereClause) == 0 {
		return 0, &Error{
			Op:    string(OpUpdate),
			Table: q.schema.table,
			Err:   fmt.Errorf("refusing to update without conditions"),
		}
	}

	updateBuilder := squirrel.Update(q.schema.table).
		SetMap(values).
		Where(q.whereClause).
		PlaceholderFormat(squirrel.Dollar)

	return q.store.exec(q.ctx, OpUpdate, q.schema.table, updateBuilder)
}

// Paginate applies filters, ordering and the page window of opts and returns
// the page together with metadata computed over the whole filtered set.
func (q *Query[T]) Paginate(opts QueryOptions) (*PageResult[T], error) {
	if q.err != nil {
		return nil, q.err
	}

	defaults := q.store.Defaults()
	if q.schema.defaultOrdering != "" {
		defaults.Ordering = q.schema.defaultOrdering
	}

	opts, err := opts.normalize(defaults)
	if err != nil {
		return nil, err
	}

	q.Filter(opts.Filters).Order(opts.Ordering)
	if q.err != nil {
		return nil, q.err
	}

	total, err := q.Count()
	if err != nil {
		return nil, err
	}

	result := &PageResult[T]{
		Founds: []T{},
		SearchOptions: SearchMetadata{
			Page:       opts.Page,
			PageSize:   opts.PageSize,
			Ordering:   opts.Ordering,
			TotalCount: total,
			Pages:      PageCount(total, opts.PageSize),
		},
	}

	if opts.PageSize.IsAll() {
		result.SearchOptions.Page = DefaultPage
		if total == 0 {
			return result, nil
		}
	} else {
		offset, limit, ok := opts.window(total)
		if !ok {
			return result, nil
		}
		q.Offset(offset).Limit(limit)
	}

	records, err := q.Find()
	if err != nil {
		return nil, err
	}
	result.Founds = records

	return result, nil
}

// orderExpressions resolves "field" or "-field" to ORDER BY expressions with a primary key tie-break
func (s *Schema[T]) orderExpressions(ordering string) ([]string, error) {
	ordering = strings.TrimSpace(ordering)
	if ordering == "" {
		return []string{s.Qualified(PrimaryKey) + " ASC"}, nil
	}

	direction := "ASC"
	name := ordering
	if strings.HasPrefix(ordering, "-") {
		direction = "DESC"
		name = ordering[1:]
	}

	field, ok := s.fields[name]
	if !ok || !field.Sortable {
		return nil, SchemaError(s.table, name, "unknown ordering field %q", name)
	}

	exprs := []string{s.Qualified(name) + " " + direction}
	if name != PrimaryKey {
		exprs = append(exprs, s.Qualified(PrimaryKey)+" "+direction)
	}
	return exprs, nil
}

// Insert adds one row built from column values
func (s *Schema[T]) Insert(ctx context.Context, store *Store, values map[string]interface{}) error {
	insertBuilder := squirrel.Insert(s.table).
		SetMap(values).
		PlaceholderFormat(squirrel.Dollar)

	_, err := store.exec(ctx, OpCreate, s.table, insertBuilder)
	return err
}

// FindByID loads one record by primary key, eager loading the named relations
func (s *Schema[T]) FindByID(ctx context.Context, store *Store, id interface{}, include ...string) (*T, error) {
	record, err := s.Query(ctx, store).
		Where(Condition{squirrel.Eq{s.Qualified(PrimaryKey): id}}).
		Include(include...).
		First()
	if err != nil {
		return nil, err
	}
	return record, nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
