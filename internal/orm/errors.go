package orm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Error kinds. Every error produced by this package wraps exactly one of them.
var (
	ErrSchema     = errors.New("unknown field or operator")
	ErrValidation = errors.New("invalid value")
	ErrDuplicated = errors.New("duplicate key violation")
	ErrNotFound   = errors.New("record not found")
	ErrForeignKey = errors.New("foreign key violation")
	ErrNotNull    = errors.New("not null constraint violation")
	ErrCheck      = errors.New("check constraint violation")
	ErrTransient  = errors.New("transient store failure")
	ErrCanceled   = errors.New("operation canceled")
)

// Error provides detailed error information
type Error struct {
	Op         string // Operation that failed
	Table      string // Table involved
	Field      string // Field or column name (if applicable)
	Constraint string // Constraint name (if applicable)
	Detail     string // Driver detail or human readable reason
	Err        error  // Kind sentinel or underlying error
	Retryable  bool
}

func (e *Error) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("orm: %s", e.Op))

	if e.Table != "" {
		parts = append(parts, fmt.Sprintf("table=%s", e.Table))
	}

	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}

	if e.Constraint != "" {
		parts = append(parts, fmt.Sprintf("constraint=%s", e.Constraint))
	}

	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}

	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// SchemaError reports a reference to a field, operator or relation the schema does not define.
func SchemaError(table, field, format string, args ...interface{}) error {
	return &Error{
		Op:     "schema",
		Table:  table,
		Field:  field,
		Detail: fmt.Sprintf(format, args...),
		Err:    ErrSchema,
	}
}

// ValidationError reports a structurally valid but semantically invalid input.
func ValidationError(field, format string, args ...interface{}) error {
	return &Error{
		Op:     "validate",
		Field:  field,
		Detail: fmt.Sprintf(format, args...),
		Err:    ErrValidation,
	}
}

// NotFoundError reports a lookup that matched no row.
func NotFoundError(op, table string) error {
	return &Error{
		Op:    op,
		Table: table,
		Err:   ErrNotFound,
	}
}

// ParsePostgreSQLError converts PostgreSQL errors to ORM errors
func ParsePostgreSQLError(err error, op, table string) error {
	if err == nil {
		return nil
	}

	var ormErr *Error
	if errors.As(err, &ormErr) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return NotFoundError(op, table)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Op: op, Table: table, Err: ErrTransient, Detail: err.Error(), Retryable: true}
	}

	if errors.Is(err, context.Canceled) {
		return &Error{Op: op, Table: table, Err: ErrCanceled}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fromPQError(pqErr, op, table)
	}

	return fromMessage(err, op, table)
}

func fromPQError(pqErr *pq.Error, op, table string) error {
	e := &Error{
		Op:         op,
		Table:      table,
		Constraint: pqErr.Constraint,
		Field:      pqErr.Column,
		Detail:     pqErr.Detail,
	}

	switch {
	case pqErr.Code == "23505":
		e.Err = ErrDuplicated
	case pqErr.Code == "23503":
		e.Err = ErrForeignKey
	case pqErr.Code == "23502":
		e.Err = ErrNotNull
	case pqErr.Code == "23514":
		e.Err = ErrCheck
	case pqErr.Code == "57014":
		e.Err = ErrCanceled
	case pqErr.Code == "40001" || pqErr.Code == "40P01":
		e.Err = ErrTransient
		e.Retryable = true
	case pqErr.Code.Class() == "08" || pqErr.Code.Class() == "53" || pqErr.Code.Class() == "57":
		e.Err = ErrTransient
		e.Retryable = true
	default:
		e.Err = pqErr
		e.Detail = ""
	}

	if e.Detail == "" && e.Err != pqErr {
		e.Detail = pqErr.Message
	}
	if e.Field == "" {
		e.Field = keyColumn(pqErr.Detail)
	}

	return e
}

func fromMessage(err error, op, table string) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "duplicate key value violates unique constraint"):
		return &Error{Op: op, Table: table, Err: ErrDuplicated, Constraint: extractConstraintName(errStr), Detail: errStr}
	case strings.Contains(errStr, "violates foreign key constraint"):
		return &Error{Op: op, Table: table, Err: ErrForeignKey, Constraint: extractConstraintName(errStr), Detail: errStr}
	case strings.Contains(errStr, "violates not-null constraint"):
		return &Error{Op: op, Table: table, Err: ErrNotNull, Field: extractColumnName(errStr)}
	case strings.Contains(errStr, "connection refused"),
		strings.Contains(errStr, "connection reset"),
		strings.Contains(errStr, "broken pipe"),
		strings.Contains(errStr, "bad connection"):
		return &Error{Op: op, Table: table, Err: ErrTransient, Detail: errStr, Retryable: true}
	}

	return &Error{Op: op, Table: table, Err: err}
}

func extractConstraintName(errStr string) string {
	start := strings.Index(errStr, "\"")
	if start == -1 {
		return ""
	}
	end := strings.Index(errStr[start+1:], "\"")
	if end == -1 {
		return ""
	}
	return errStr[start+1 : start+1+end]
}

func extractColumnName(errStr string) string {
	columnIdx := strings.Index(errStr, "column \"")
	if columnIdx == -1 {
		return ""
	}
	start := columnIdx + 8
	end := strings.Index(errStr[start:], "\"")
	if end == -1 {
		return ""
	}
	return errStr[start : start+end]
}

// keyColumn reads the column out of a "Key (email)=(...)" detail; composite keys yield ""
func keyColumn(detail string) string {
	rest, ok := strings.CutPrefix(detail, "Key (")
	if !ok {
		return ""
	}
	col, _, ok := strings.Cut(rest, ")")
	if !ok || strings.Contains(col, ",") {
		return ""
	}
	return col
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var ormErr *Error
	if errors.As(err, &ormErr) {
		return ormErr.Retryable
	}
	return false
}

// GetConstraintName extracts the constraint name from an error
func GetConstraintName(err error) string {
	var ormErr *Error
	if errors.As(err, &ormErr) {
		return ormErr.Constraint
	}
	return ""
}

// GetField extracts the offending field from an error
func GetField(err error) string {
	var ormErr *Error
	if errors.As(err, &ormErr) {
		return ormErr.Field
	}
	return ""
}

// GetDetail extracts the driver or validation detail from an error
func GetDetail(err error) string {
	var ormErr *Error
	if errors.As(err, &ormErr) {
		return ormErr.Detail
	}
	return ""
}
