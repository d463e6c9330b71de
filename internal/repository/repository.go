// Package repository exposes one facade per entity. Every operation runs in
// a single unit of work obtained from the injected orm.Store.
package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eleven-am/eventhub/internal/domain"
	"github.com/eleven-am/eventhub/internal/logger"
	"github.com/eleven-am/eventhub/internal/orm"
)

type options struct {
	newID  func() uuid.UUID
	now    func() time.Time
	policy domain.MissingCategoryPolicy
	log    zerolog.Logger
}

// Option configures a repository
type Option func(*options)

// WithIDSource replaces uuid.New as the identifier source
func WithIDSource(fn func() uuid.UUID) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// WithClock replaces time.Now for created_at and updated_at
func WithClock(fn func() time.Time) Option {
	return func(o *options) {
		if fn != nil {
			o.now = fn
		}
	}
}

// WithMissingCategoryPolicy sets how unknown category names are handled
func WithMissingCategoryPolicy(policy domain.MissingCategoryPolicy) Option {
	return func(o *options) {
		if policy.Valid() {
			o.policy = policy
		}
	}
}

// WithLogger sets the repository logger
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

func newOptions(opts []Option) options {
	o := options{
		newID:  uuid.New,
		now:    time.Now,
		policy: domain.MissingIgnore,
		log:    logger.DB(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) timestamp() time.Time {
	return o.now().UTC()
}

// Repositories bundles the entity facades over one store
type Repositories struct {
	Users      *Users
	Events     *Events
	Categories *Categories
}

// New builds every repository over store with shared options
func New(store *orm.Store, opts ...Option) *Repositories {
	return &Repositories{
		Users:      NewUsers(store, opts...),
		Events:     NewEvents(store, opts...),
		Categories: NewCategories(store, opts...),
	}
}

func byID[T any](schema *orm.Schema[T], id uuid.UUID, scopes []orm.Condition) orm.Condition {
	return orm.And(append([]orm.Condition{schema.IDColumn().Eq(id)}, scopes...)...)
}

func readPage[T any](q *orm.Query[T], opts orm.QueryOptions, eager bool, scopes []orm.Condition) (*orm.PageResult[T], error) {
	q = q.Where(orm.And(scopes...))
	if eager {
		q = q.IncludeAll()
	}
	return q.Paginate(opts)
}
