package orm

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// Store is the unit-of-work factory handed to repositories.
// A Store bound to a transaction runs every statement on that transaction.
type Store struct {
	db         *sqlx.DB
	executor   DBExecutor
	middleware *middlewareManager
	defaults   Defaults
}

// Option configures a Store
type Option func(*Store)

// WithMiddleware installs query middleware, outermost first
func WithMiddleware(middleware ...QueryMiddleware) Option {
	return func(s *Store) {
		for _, m := range middleware {
			s.middleware.AddMiddleware(m)
		}
	}
}

// WithDefaults sets the page size and ordering used when a query leaves them unset
func WithDefaults(defaults Defaults) Option {
	return func(s *Store) {
		s.defaults = defaults
	}
}

// NewStore creates a Store over a connection pool
func NewStore(db *sqlx.DB, opts ...Option) *Store {
	s := &Store{
		db:         db,
		executor:   db,
		middleware: newMiddlewareManager(),
		defaults:   Defaults{PageSize: PageSizeOf(DefaultPageSize)},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newStoreWithExecutor creates a Store sharing configuration but running on executor
func (s *Store) newStoreWithExecutor(executor DBExecutor) *Store {
	return &Store{
		db:         s.db,
		executor:   executor,
		middleware: s.middleware,
		defaults:   s.defaults,
	}
}

// WithTransaction executes fn within a database transaction.
// When the store is already bound to a transaction, fn joins it.
func (s *Store) WithTransaction(ctx context.Context, fn func(*Store) error) error {
	return s.WithTransactionOptions(ctx, nil, fn)
}

// WithReadTransaction executes fn within a read-only transaction
func (s *Store) WithReadTransaction(ctx context.Context, fn func(*Store) error) error {
	return s.WithTransactionOptions(ctx, ReadOnlyTransactionOptions(), fn)
}

// WithTransactionOptions executes fn within a database transaction with specific options.
// The transaction is rolled back when fn returns an error or panics.
func (s *Store) WithTransactionOptions(ctx context.Context, opts *TransactionOptions, fn func(*Store) error) error {
	if s.InTransaction() {
		return fn(s)
	}

	if s.db == nil {
		return fmt.Errorf("cannot start transaction: store has no database connection")
	}

	tx, err := s.db.BeginTxx(ctx, opts.ToTxOptions())
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", ParsePostgreSQLError(err, "begin", ""))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(s.newStoreWithExecutor(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", ParsePostgreSQLError(err, "commit", ""))
	}

	return nil
}

// InTransaction reports whether the store is bound to a transaction
func (s *Store) InTransaction() bool {
	_, ok := s.executor.(*sqlx.Tx)
	return ok
}

// Executor returns the current database executor
func (s *Store) Executor() DBExecutor {
	return s.executor
}

// DB returns the underlying connection pool
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Defaults returns the configured query defaults
func (s *Store) Defaults() Defaults {
	return s.defaults
}

// Use appends query middleware
func (s *Store) Use(middleware QueryMiddleware) {
	s.middleware.AddMiddleware(middleware)
}

// run builds the statement and executes it through the middleware chain
func (s *Store) run(ctx context.Context, op OperationType, table string, stmt squirrel.Sqlizer, exec func(mc *MiddlewareContext) error) error {
	query, args, err := stmt.ToSql()
	if err != nil {
		return &Error{
			Op:    string(op),
			Table: table,
			Err:   fmt.Errorf("failed to build query: %w", err),
		}
	}

	mc := &MiddlewareContext{
		Operation: op,
		TableName: table,
		Query:     query,
		Args:      args,
		StartTime: time.Now(),
		Context:   ctx,
	}

	err = s.middleware.ExecuteMiddleware(mc, func(mc *MiddlewareContext) error {
		runErr := exec(mc)
		mc.Duration = time.Since(mc.StartTime)
		mc.Error = runErr
		return runErr
	})
	return err
}

// exec runs a write statement and returns the affected row count
func (s *Store) exec(ctx context.Context, op OperationType, table string, stmt squirrel.Sqlizer) (int64, error) {
	var affected int64
	err := s.run(ctx, op, table, stmt, func(mc *MiddlewareContext) error {
		result, err := s.executor.ExecContext(ctx, mc.Query, mc.Args...)
		if err != nil {
			return ParsePostgreSQLError(err, string(op), table)
		}
		affected, err = result.RowsAffected()
		if err != nil {
			return &Error{
				Op:    string(op),
				Table: table,
				Err:   fmt.Errorf("failed to get rows affected: %w", err),
			}
		}
		mc.RowsAffected = affected
		return nil
	})
	return affected, err
}

// selectInto runs a read statement scanning every row into dest
func (s *Store) selectInto(ctx context.Context, op OperationType, table string, stmt squirrel.Sqlizer, dest interface{}) error {
	return s.run(ctx, op, table, stmt, func(mc *MiddlewareContext) error {
		if err := s.executor.SelectContext(ctx, dest, mc.Query, mc.Args...); err != nil {
			return ParsePostgreSQLError(err, string(op), table)
		}
		return nil
	})
}

// getInto runs a read statement scanning a single row into dest
func (s *Store) getInto(ctx context.Context, op OperationType, table string, stmt squirrel.Sqlizer, dest interface{}) error {
	return s.run(ctx, op, table, stmt, func(mc *MiddlewareContext) error {
		if err := s.executor.GetContext(ctx, dest, mc.Query, mc.Args...); err != nil {
			return ParsePostgreSQLError(err, string(op), table)
		}
		return nil
	})
}

// Exec runs an arbitrary write statement through the middleware chain
func (s *Store) Exec(ctx context.Context, table string, stmt squirrel.Sqlizer) (int64, error) {
	return s.exec(ctx, OpQuery, table, stmt)
}

// Select runs an arbitrary read statement through the middleware chain
func (s *Store) Select(ctx context.Context, table string, stmt squirrel.Sqlizer, dest interface{}) error {
	return s.selectInto(ctx, OpQuery, table, stmt, dest)
}
