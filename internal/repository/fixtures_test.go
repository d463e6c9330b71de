package repository

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/eventhub/internal/domain"
	"github.com/eleven-am/eventhub/internal/orm"
)

var (
	fixedNow = time.Date(2025, 5, 4, 10, 30, 0, 0, time.UTC)

	userColumns     = []string{"id", "email", "password", "user_token", "first_name", "last_name", "phone_no", "is_active", "is_admin", "created_at", "updated_at"}
	eventColumns    = []string{"id", "name", "description", "date", "start_time", "end_time", "location", "image", "evt_type", "owner_id", "created_at", "updated_at"}
	categoryColumns = []string{"id", "name", "created_at", "updated_at"}

	userSelect     = "SELECT users.id, users.email, users.password, users.user_token, users.first_name, users.last_name, users.phone_no, users.is_active, users.is_admin, users.created_at, users.updated_at FROM users"
	eventSelect    = "SELECT events.id, events.name, events.description, events.date, events.start_time, events.end_time, events.location, events.image, events.evt_type, events.owner_id, events.created_at, events.updated_at FROM events"
	categorySelect = "SELECT categories.id, categories.name, categories.created_at, categories.updated_at FROM categories"
)

func q(sql string) string {
	return "^" + regexp.QuoteMeta(sql) + "$"
}

func newMock(t *testing.T) (*orm.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return orm.NewStore(sqlx.NewDb(db, "postgres")), mock
}

// sequence hands out the given ids in order
func sequence(ids ...uuid.UUID) func() uuid.UUID {
	i := 0
	return func() uuid.UUID {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

func testOptions(ids ...uuid.UUID) []Option {
	opts := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(zerolog.Nop()),
	}
	if len(ids) > 0 {
		opts = append(opts, WithIDSource(sequence(ids...)))
	}
	return opts
}

func userRow(rows *sqlmock.Rows, id uuid.UUID, email string) *sqlmock.Rows {
	return rows.AddRow(id.String(), email, nil, "0123456789abcdef", "Ada", "Lovelace", nil, true, false, fixedNow, fixedNow)
}

func eventRow(rows *sqlmock.Rows, id, owner uuid.UUID, name string, created time.Time) *sqlmock.Rows {
	return rows.AddRow(id.String(), name, "desc", fixedNow, "19:30:00", nil, "Hall", "", string(domain.EventPublic), owner.String(), created, created)
}

func categoryRow(rows *sqlmock.Rows, id uuid.UUID, name string) *sqlmock.Rows {
	return rows.AddRow(id.String(), name, fixedNow, fixedNow)
}

// expectEventRead mocks FindByID on an event with categories then owner loaded
func expectEventRead(mock sqlmock.Sqlmock, id, owner uuid.UUID, categories map[uuid.UUID]string, order ...uuid.UUID) {
	mock.ExpectQuery(q(eventSelect + " WHERE (events.id = $1) LIMIT 1")).
		WithArgs(id.String()).
		WillReturnRows(eventRow(sqlmock.NewRows(eventColumns), id, owner, "Concert", fixedNow))

	links := sqlmock.NewRows([]string{"source_id", "target_id"})
	for _, c := range order {
		links.AddRow(id.String(), c.String())
	}
	mock.ExpectQuery(q("SELECT event_id AS source_id, category_id AS target_id FROM event_categories WHERE event_id = ANY($1::uuid[])")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(links)

	if len(order) > 0 {
		rows := sqlmock.NewRows(categoryColumns)
		for _, c := range order {
			categoryRow(rows, c, categories[c])
		}
		mock.ExpectQuery(q(categorySelect + " WHERE (categories.id = ANY($1::uuid[])) ORDER BY categories.name ASC, categories.id ASC")).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(rows)
	}

	mock.ExpectQuery(q(userSelect + " WHERE (users.id = ANY($1::uuid[]))")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(userRow(sqlmock.NewRows(userColumns), owner, "owner@example.com"))
}
