package orm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	baseErr := errors.New("base error")
	ormErr := &Error{
		Op:    "create",
		Table: "users",
		Err:   baseErr,
	}

	t.Run("Error method", func(t *testing.T) {
		assert.Equal(t, "orm: create: table=users: base error", ormErr.Error())
	})

	t.Run("Unwrap method", func(t *testing.T) {
		assert.Equal(t, baseErr, errors.Unwrap(ormErr))
		assert.True(t, errors.Is(ormErr, baseErr))
	})

	t.Run("kind constructors", func(t *testing.T) {
		assert.ErrorIs(t, SchemaError("events", "colour", "unknown filter field %q", "colour"), ErrSchema)
		assert.ErrorIs(t, ValidationError("page", "must be at least 1"), ErrValidation)
		assert.ErrorIs(t, NotFoundError("find", "events"), ErrNotFound)
		assert.Equal(t, "colour", GetField(SchemaError("events", "colour", "x")))
	})
}

func TestParsePostgreSQLError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantKind       error
		wantConstraint string
		wantDetail     string
		wantField      string
		wantRetryable  bool
	}{
		{
			name: "unique violation",
			err: &pq.Error{
				Code:       "23505",
				Message:    "duplicate key value violates unique constraint \"users_email_key\"",
				Detail:     "Key (email)=(test@example.com) already exists.",
				Constraint: "users_email_key",
			},
			wantKind:       ErrDuplicated,
			wantConstraint: "users_email_key",
			wantDetail:     "Key (email)=(test@example.com) already exists.",
			wantField:      "email",
		},
		{
			name: "composite key violation on join table",
			err: &pq.Error{
				Code:       "23505",
				Message:    "duplicate key value violates unique constraint \"event_categories_pkey\"",
				Constraint: "event_categories_pkey",
			},
			wantKind:       ErrDuplicated,
			wantConstraint: "event_categories_pkey",
			wantDetail:     "duplicate key value violates unique constraint \"event_categories_pkey\"",
		},
		{
			name: "foreign key violation",
			err: &pq.Error{
				Code:       "23503",
				Message:    "insert or update on table \"events\" violates foreign key constraint \"events_owner_id_fkey\"",
				Constraint: "events_owner_id_fkey",
			},
			wantKind:       ErrForeignKey,
			wantConstraint: "events_owner_id_fkey",
		},
		{
			name:          "serialization failure",
			err:           &pq.Error{Code: "40001", Message: "could not serialize access"},
			wantKind:      ErrTransient,
			wantRetryable: true,
		},
		{
			name:          "connection exception class",
			err:           &pq.Error{Code: "08006", Message: "connection failure"},
			wantKind:      ErrTransient,
			wantRetryable: true,
		},
		{
			name:     "no rows",
			err:      sql.ErrNoRows,
			wantKind: ErrNotFound,
		},
		{
			name:          "deadline",
			err:           fmt.Errorf("query: %w", context.DeadlineExceeded),
			wantKind:      ErrTransient,
			wantRetryable: true,
		},
		{
			name:     "canceled",
			err:      context.Canceled,
			wantKind: ErrCanceled,
		},
		{
			name:          "connection refused message",
			err:           errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			wantKind:      ErrTransient,
			wantRetryable: true,
		},
		{
			name:           "unique violation message without driver error",
			err:            errors.New("pq: duplicate key value violates unique constraint \"categories_name_key\""),
			wantKind:       ErrDuplicated,
			wantConstraint: "categories_name_key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParsePostgreSQLError(tt.err, "create", "users")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Equal(t, tt.wantRetryable, IsRetryable(err))
			if tt.wantConstraint != "" {
				assert.Equal(t, tt.wantConstraint, GetConstraintName(err))
			}
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, GetDetail(err))
			}
			assert.Equal(t, tt.wantField, GetField(err))
		})
	}

	t.Run("nil error", func(t *testing.T) {
		assert.NoError(t, ParsePostgreSQLError(nil, "create", "users"))
	})

	t.Run("already classified errors pass through", func(t *testing.T) {
		original := NotFoundError("first", "events")
		assert.Same(t, original, ParsePostgreSQLError(original, "update", "events"))
	})

	t.Run("unknown errors keep the driver error", func(t *testing.T) {
		pqErr := &pq.Error{Code: "42601", Message: "syntax error"}
		err := ParsePostgreSQLError(pqErr, "find", "events")
		var got *pq.Error
		require.True(t, errors.As(err, &got))
		assert.Equal(t, pq.ErrorCode("42601"), got.Code)
		assert.False(t, IsRetryable(err))
	})
}
