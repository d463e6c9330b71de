package repository

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/eleven-am/eventhub/internal/domain"
	"github.com/eleven-am/eventhub/internal/orm"
)

// Categories is the category facade
type Categories struct {
	store *orm.Store
	opts  options
}

func NewCategories(store *orm.Store, opts ...Option) *Categories {
	return &Categories{store: store, opts: newOptions(opts)}
}

// Create inserts a category. A taken name fails with orm.ErrDuplicated.
func (r *Categories) Create(ctx context.Context, in domain.NewCategory) (*domain.Category, error) {
	id := r.opts.newID()
	now := r.opts.timestamp()

	var created *domain.Category
	err := r.store.WithTransaction(ctx, func(tx *orm.Store) error {
		err := CategorySchema.Insert(ctx, tx, map[string]interface{}{
			"id":         id,
			"name":       in.Name,
			"created_at": now,
			"updated_at": now,
		})
		if err != nil {
			return err
		}
		created, err = CategorySchema.FindByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *Categories) ReadByOptions(ctx context.Context, opts orm.QueryOptions, eager bool, scopes ...orm.Condition) (*orm.PageResult[domain.Category], error) {
	var page *orm.PageResult[domain.Category]
	err := r.store.WithReadTransaction(ctx, func(tx *orm.Store) error {
		var err error
		page, err = readPage(CategorySchema.Query(ctx, tx), opts, eager, scopes)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (r *Categories) ReadByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	var category *domain.Category
	err := r.store.WithReadTransaction(ctx, func(tx *orm.Store) error {
		var err error
		category, err = CategorySchema.FindByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (r *Categories) Update(ctx context.Context, id uuid.UUID, patch domain.CategoryPatch, scopes ...orm.Condition) (*domain.Category, error) {
	changes := patch.Changes()
	changes["updated_at"] = r.opts.timestamp()

	var updated *domain.Category
	err := r.store.WithTransaction(ctx, func(tx *orm.Store) error {
		n, err := CategorySchema.Query(ctx, tx).Where(byID(CategorySchema, id, scopes)).Update(changes)
		if err != nil {
			return err
		}
		if n == 0 {
			return orm.NotFoundError("update", categoriesTable)
		}
		updated, err = CategorySchema.FindByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteByID removes the category and its event links
func (r *Categories) DeleteByID(ctx context.Context, id uuid.UUID, scopes ...orm.Condition) error {
	return r.store.WithTransaction(ctx, func(tx *orm.Store) error {
		cond := byID(CategorySchema, id, scopes)
		if _, err := categoryEvents.DeleteWhereSource(ctx, tx, categoriesTable, cond); err != nil {
			return err
		}
		n, err := CategorySchema.Query(ctx, tx).Where(cond).Delete()
		if err != nil {
			return err
		}
		if n == 0 {
			return orm.NotFoundError("delete", categoriesTable)
		}
		return nil
	})
}

// LinkResult reports one category reconciliation
type LinkResult struct {
	orm.SyncResult
	Missing []string
	Created []string
}

// categoryLinker resolves category names to ids and reconciles the event_categories rows of one event
type categoryLinker struct {
	opts options
}

func (l categoryLinker) link(ctx context.Context, tx *orm.Store, eventID uuid.UUID, names []string) (LinkResult, error) {
	var result LinkResult

	names = dedupeNames(names)
	found, err := resolveCategories(ctx, tx, names)
	if err != nil {
		return result, err
	}

	for _, name := range names {
		if _, ok := found[name]; !ok {
			result.Missing = append(result.Missing, name)
		}
	}

	if len(result.Missing) > 0 {
		switch l.opts.policy {
		case domain.MissingReject:
			return result, orm.ValidationError("categories", "unknown categories: %s", strings.Join(result.Missing, ", "))
		case domain.MissingCreate:
			if err := l.createMissing(ctx, tx, result.Missing); err != nil {
				return result, err
			}
			created, err := resolveCategories(ctx, tx, result.Missing)
			if err != nil {
				return result, err
			}
			for name, id := range created {
				found[name] = id
			}
			result.Created, result.Missing = result.Missing, nil
		default:
			l.opts.log.Info().
				Str("event_id", eventID.String()).
				Strs("categories", result.Missing).
				Msg("ignoring unknown categories")
		}
	}

	ids := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		if id, ok := found[name]; ok {
			ids = append(ids, id)
		}
	}

	sync, err := eventCategories.Sync(ctx, tx, eventID, ids)
	if err != nil {
		return result, err
	}
	result.SyncResult = sync
	return result, nil
}

// createMissing inserts the named categories, leaving rows created concurrently in place
func (l categoryLinker) createMissing(ctx context.Context, tx *orm.Store, names []string) error {
	now := l.opts.timestamp()
	stmt := squirrel.Insert(categoriesTable).
		Columns("id", "name", "created_at", "updated_at").
		Suffix("ON CONFLICT (name) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)
	for _, name := range names {
		stmt = stmt.Values(l.opts.newID(), name, now, now)
	}
	_, err := tx.Exec(ctx, categoriesTable, stmt)
	return err
}

func resolveCategories(ctx context.Context, tx *orm.Store, names []string) (map[string]uuid.UUID, error) {
	found := make(map[string]uuid.UUID, len(names))
	if len(names) == 0 {
		return found, nil
	}

	categories, err := CategorySchema.Query(ctx, tx).Where(categoryName.In(names...)).Find()
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		found[c.Name] = c.ID
	}
	return found, nil
}

func dedupeNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
