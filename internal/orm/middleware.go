package orm

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// OperationType represents different types of database operations
type OperationType string

const (
	OpCreate OperationType = "create"
	OpUpdate OperationType = "update"
	OpDelete OperationType = "delete"
	OpFind   OperationType = "find"
	OpCount  OperationType = "count"
	OpQuery  OperationType = "query"
)

// MiddlewareContext contains information passed to middleware
type MiddlewareContext struct {
	Operation    OperationType
	TableName    string
	Query        string
	Args         []interface{}
	RowsAffected int64
	Error        error
	StartTime    time.Time
	Duration     time.Duration
	Context      context.Context
}

// QueryMiddlewareFunc executes a statement described by the middleware context
type QueryMiddlewareFunc func(ctx *MiddlewareContext) error

// QueryMiddleware wraps statement execution
type QueryMiddleware func(next QueryMiddlewareFunc) QueryMiddlewareFunc

// middlewareManager manages database middleware
type middlewareManager struct {
	middleware []QueryMiddleware
}

func newMiddlewareManager(middleware ...QueryMiddleware) *middlewareManager {
	mm := &middlewareManager{
		middleware: make([]QueryMiddleware, 0, len(middleware)),
	}
	mm.middleware = append(mm.middleware, middleware...)
	return mm
}

func (mm *middlewareManager) AddMiddleware(middleware QueryMiddleware) {
	mm.middleware = append(mm.middleware, middleware)
}

func (mm *middlewareManager) ExecuteMiddleware(ctx *MiddlewareContext, finalFunc QueryMiddlewareFunc) error {
	handler := finalFunc

	for i := len(mm.middleware) - 1; i >= 0; i-- {
		handler = mm.middleware[i](handler)
	}

	return handler(ctx)
}

// LoggingMiddleware logs every statement at debug level and failures at warn level
func LoggingMiddleware(logger zerolog.Logger) QueryMiddleware {
	return func(next QueryMiddlewareFunc) QueryMiddlewareFunc {
		return func(ctx *MiddlewareContext) error {
			err := next(ctx)

			duration := time.Since(ctx.StartTime)
			if err != nil {
				logger.Warn().
					Err(err).
					Str("op", string(ctx.Operation)).
					Str("table", ctx.TableName).
					Dur("duration", duration).
					Msg("query failed")
				return err
			}

			logger.Debug().
				Str("op", string(ctx.Operation)).
				Str("table", ctx.TableName).
				Str("sql", ctx.Query).
				Int64("rows", ctx.RowsAffected).
				Dur("duration", duration).
				Msg("query executed")

			return nil
		}
	}
}

// MetricsMiddleware collects operation metrics
func MetricsMiddleware(collector MetricsCollector) QueryMiddleware {
	return func(next QueryMiddlewareFunc) QueryMiddlewareFunc {
		return func(ctx *MiddlewareContext) error {
			start := time.Now()

			err := next(ctx)

			collector.RecordOperation(string(ctx.Operation), ctx.TableName, time.Since(start), err != nil)

			return err
		}
	}
}

// MetricsCollector interface for collecting operation metrics
type MetricsCollector interface {
	RecordOperation(operation, table string, duration time.Duration, hasError bool)
}
