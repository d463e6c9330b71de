package repository

import (
	"github.com/google/uuid"

	"github.com/eleven-am/eventhub/internal/domain"
	"github.com/eleven-am/eventhub/internal/orm"
)

const (
	usersTable      = "users"
	eventsTable     = "events"
	categoriesTable = "categories"
)

// Join tables seen from either side of the event/category association
var (
	eventCategories = orm.JoinTable{Name: "event_categories", SourceFK: "event_id", TargetFK: "category_id"}
	categoryEvents  = orm.JoinTable{Name: "event_categories", SourceFK: "category_id", TargetFK: "event_id"}
)

var (
	UserSchema = orm.MustSchema(usersTable, func(u *domain.User) uuid.UUID { return u.ID },
		orm.UUIDField("id"),
		orm.StringField("email"),
		orm.StringField("password").Private(),
		orm.StringField("user_token").Private(),
		orm.StringField("first_name"),
		orm.StringField("last_name"),
		orm.StringField("phone_no"),
		orm.BoolField("is_active"),
		orm.BoolField("is_admin"),
		orm.TimeField("created_at"),
		orm.TimeField("updated_at"),
	).WithDefaultOrdering("-created_at")

	EventSchema = orm.MustSchema(eventsTable, func(e *domain.Event) uuid.UUID { return e.ID },
		orm.UUIDField("id"),
		orm.StringField("name"),
		orm.StringField("description").NoSort(),
		orm.DateField("date"),
		orm.ClockField("start_time"),
		orm.ClockField("end_time"),
		orm.StringField("location"),
		orm.StringField("image").Private(),
		orm.EnumField("evt_type", domain.EventTypes...),
		orm.UUIDField("owner_id"),
		orm.TimeField("created_at"),
		orm.TimeField("updated_at"),
	).WithDefaultOrdering("-created_at")

	CategorySchema = orm.MustSchema(categoriesTable, func(c *domain.Category) uuid.UUID { return c.ID },
		orm.UUIDField("id"),
		orm.StringField("name"),
		orm.TimeField("created_at"),
		orm.TimeField("updated_at"),
	).WithDefaultOrdering("name")
)

var (
	eventOwner   = orm.UUIDColumn{Column: orm.Column[uuid.UUID]{Name: "owner_id", Table: eventsTable}}
	userEmail    = orm.Column[string]{Name: "email", Table: usersTable}
	categoryName = orm.Column[string]{Name: "name", Table: categoriesTable}
)

func init() {
	EventSchema.MustRelate(
		orm.BelongsTo("owner", UserSchema,
			func(e *domain.Event) uuid.UUID { return e.OwnerID },
			func(e *domain.Event, u *domain.User) { e.Owner = u },
		),
		orm.ManyToMany("categories", CategorySchema, eventCategories,
			func(e *domain.Event, categories []domain.Category) { e.Categories = categories },
		),
	)

	UserSchema.MustRelate(
		orm.HasMany("events", EventSchema, "owner_id",
			func(e *domain.Event) uuid.UUID { return e.OwnerID },
			func(u *domain.User, events []domain.Event) { u.Events = events },
		),
	)
}

// OwnedBy scopes event operations to one owner
func OwnedBy(ownerID uuid.UUID) orm.Condition {
	return eventOwner.Eq(ownerID)
}

// Tables lists the columns each table must expose for the repositories to work
func Tables() map[string][]string {
	return map[string][]string{
		usersTable:           UserSchema.FieldNames(),
		eventsTable:          EventSchema.FieldNames(),
		categoriesTable:      CategorySchema.FieldNames(),
		eventCategories.Name: {eventCategories.SourceFK, eventCategories.TargetFK},
	}
}
