package orm

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

type testOwner struct {
	ID        uuid.UUID `db:"id"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
	Gigs      []testGig `db:"-"`
}

type testGig struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Kind      string    `db:"kind"`
	Date      time.Time `db:"date"`
	Public    bool      `db:"public"`
	OwnerID   uuid.UUID `db:"owner_id"`
	CreatedAt time.Time `db:"created_at"`

	Owner *testOwner `db:"-"`
	Tags  []testTag  `db:"-"`
}

type testTag struct {
	ID   uuid.UUID `db:"id"`
	Name string    `db:"name"`
}

var (
	gigColumns   = []string{"id", "name", "kind", "date", "public", "owner_id", "created_at"}
	ownerColumns = []string{"id", "email", "created_at"}
	tagColumns   = []string{"id", "name"}

	gigTags = JoinTable{Name: "gig_tags", SourceFK: "gig_id", TargetFK: "tag_id"}
)

type testSchemas struct {
	owners *Schema[testOwner]
	gigs   *Schema[testGig]
	tags   *Schema[testTag]
}

func newTestSchemas(t *testing.T) testSchemas {
	t.Helper()

	owners, err := NewSchema("owners", func(o *testOwner) uuid.UUID { return o.ID },
		UUIDField("id"),
		StringField("email"),
		TimeField("created_at"),
	)
	require.NoError(t, err)
	owners.WithDefaultOrdering("-created_at")

	gigs, err := NewSchema("gigs", func(g *testGig) uuid.UUID { return g.ID },
		UUIDField("id"),
		StringField("name"),
		EnumField("kind", "public", "private"),
		DateField("date"),
		BoolField("public"),
		UUIDField("owner_id"),
		TimeField("created_at"),
	)
	require.NoError(t, err)
	gigs.WithDefaultOrdering("-created_at")

	tags, err := NewSchema("tags", func(c *testTag) uuid.UUID { return c.ID },
		UUIDField("id"),
		StringField("name"),
	)
	require.NoError(t, err)
	tags.WithDefaultOrdering("name")

	require.NoError(t, gigs.Relate(
		BelongsTo(
			"owner", owners,
			func(g *testGig) uuid.UUID { return g.OwnerID },
			func(g *testGig, o *testOwner) { g.Owner = o },
		),
		ManyToMany(
			"tags", tags, gigTags,
			func(g *testGig, tags []testTag) { g.Tags = tags },
		),
	))

	require.NoError(t, owners.Relate(
		HasMany(
			"gigs", gigs, "owner_id",
			func(g *testGig) uuid.UUID { return g.OwnerID },
			func(o *testOwner, gigs []testGig) { o.Gigs = gigs },
		),
	))

	return testSchemas{owners: owners, gigs: gigs, tags: tags}
}

func newMockStore(t *testing.T, opts ...Option) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStore(sqlx.NewDb(db, "postgres"), opts...), mock
}
