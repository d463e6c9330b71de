package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/eleven-am/eventhub/internal/domain"
	"github.com/eleven-am/eventhub/internal/orm"
)

// Events is the event facade. Categories are attached by name.
type Events struct {
	store  *orm.Store
	opts   options
	linker categoryLinker
}

func NewEvents(store *orm.Store, opts ...Option) *Events {
	o := newOptions(opts)
	return &Events{store: store, opts: o, linker: categoryLinker{opts: o}}
}

// Create inserts the event and links its categories in one transaction,
// then reads it back with owner and categories loaded.
func (r *Events) Create(ctx context.Context, in domain.NewEvent) (*domain.Event, error) {
	id := r.opts.newID()
	now := r.opts.timestamp()

	eventType := in.EventType
	if eventType == "" {
		eventType = domain.EventPublic
	}

	var created *domain.Event
	err := r.store.WithTransaction(ctx, func(tx *orm.Store) error {
		err := EventSchema.Insert(ctx, tx, map[string]interface{}{
			"id":          id,
			"name":        in.Name,
			"description": in.Description,
			"date":        in.Date,
			"start_time":  in.StartTime,
			"end_time":    in.EndTime,
			"location":    in.Location,
			"image":       in.Image,
			"evt_type":    string(eventType),
			"owner_id":    in.OwnerID,
			"created_at":  now,
			"updated_at":  now,
		})
		if err != nil {
			return err
		}

		if _, err := r.linker.link(ctx, tx, id, in.Categories); err != nil {
			return err
		}

		created, err = EventSchema.FindByID(ctx, tx, id, EventSchema.Relations()...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ReadByOptions returns one page of events. Scopes are AND-ed with the filters.
func (r *Events) ReadByOptions(ctx context.Context, opts orm.QueryOptions, eager bool, scopes ...orm.Condition) (*orm.PageResult[domain.Event], error) {
	var page *orm.PageResult[domain.Event]
	err := r.store.WithReadTransaction(ctx, func(tx *orm.Store) error {
		var err error
		page, err = readPage(EventSchema.Query(ctx, tx), opts, eager, scopes)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (r *Events) ReadByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	var event *domain.Event
	err := r.store.WithReadTransaction(ctx, func(tx *orm.Store) error {
		var err error
		event, err = EventSchema.FindByID(ctx, tx, id, EventSchema.Relations()...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Update applies the present fields of patch to the event matching id and
// scopes. A present category list replaces the event's categories.
func (r *Events) Update(ctx context.Context, id uuid.UUID, patch domain.EventPatch, scopes ...orm.Condition) (*domain.Event, error) {
	changes := patch.Changes()
	changes["updated_at"] = r.opts.timestamp()

	var updated *domain.Event
	err := r.store.WithTransaction(ctx, func(tx *orm.Store) error {
		n, err := EventSchema.Query(ctx, tx).Where(byID(EventSchema, id, scopes)).Update(changes)
		if err != nil {
			return err
		}
		if n == 0 {
			return orm.NotFoundError("update", eventsTable)
		}

		if names, ok := patch.Categories.Get(); ok {
			if _, err := r.linker.link(ctx, tx, id, names); err != nil {
				return err
			}
		}

		updated, err = EventSchema.FindByID(ctx, tx, id, EventSchema.Relations()...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteByID removes the event's category links and then the event
func (r *Events) DeleteByID(ctx context.Context, id uuid.UUID, scopes ...orm.Condition) error {
	return r.store.WithTransaction(ctx, func(tx *orm.Store) error {
		cond := byID(EventSchema, id, scopes)
		if _, err := eventCategories.DeleteWhereSource(ctx, tx, eventsTable, cond); err != nil {
			return err
		}
		n, err := EventSchema.Query(ctx, tx).Where(cond).Delete()
		if err != nil {
			return err
		}
		if n == 0 {
			return orm.NotFoundError("delete", eventsTable)
		}
		return nil
	})
}
