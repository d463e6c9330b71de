package orm

import (
	"context"

	"github.com/google/uuid"
)

// Relation is an eager-loadable relationship of T. Loading issues a fixed
// number of batched queries for the whole record set, never one per record.
type Relation[T any] interface {
	relationName() string
	load(ctx context.Context, store *Store, id func(*T) uuid.UUID, records []T) error
}

type belongsTo[T any, R any] struct {
	name       string
	target     *Schema[R]
	foreignKey func(*T) uuid.UUID
	set        func(*T, *R)
}

// BelongsTo declares that each T references one R through foreignKey
func BelongsTo[T any, R any](name string, target *Schema[R], foreignKey func(*T) uuid.UUID, set func(*T, *R)) Relation[T] {
	return &belongsTo[T, R]{name: name, target: target, foreignKey: foreignKey, set: set}
}

func (r *belongsTo[T, R]) relationName() string { return r.name }

func (r *belongsTo[T, R]) load(ctx context.Context, store *Store, _ func(*T) uuid.UUID, records []T) error {
	keys := make([]uuid.UUID, 0, len(records))
	seen := make(map[uuid.UUID]struct{}, len(records))
	for i := range records {
		key := r.foreignKey(&records[i])
		if key == uuid.Nil {
			continue
		}
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}

	if len(keys) == 0 {
		return nil
	}

	related, err := r.target.Query(ctx, store).
		Where(r.target.IDColumn().Any(keys)).
		Find()
	if err != nil {
		return err
	}

	byID := make(map[uuid.UUID]*R, len(related))
	for i := range related {
		byID[r.target.ID(&related[i])] = &related[i]
	}

	for i := range records {
		if target, ok := byID[r.foreignKey(&records[i])]; ok {
			r.set(&records[i], target)
		}
	}

	return nil
}

type hasMany[T any, R any] struct {
	name       string
	target     *Schema[R]
	foreignKey string
	owner      func(*R) uuid.UUID
	set        func(*T, []R)
}

// HasMany declares that each T is referenced by many R through the foreignKey column of R
func HasMany[T any, R any](name string, target *Schema[R], foreignKey string, owner func(*R) uuid.UUID, set func(*T, []R)) Relation[T] {
	return &hasMany[T, R]{name: name, target: target, foreignKey: foreignKey, owner: owner, set: set}
}

func (r *hasMany[T, R]) relationName() string { return r.name }

func (r *hasMany[T, R]) load(ctx context.Context, store *Store, id func(*T) uuid.UUID, records []T) error {
	keys := distinctIDs(records, id)
	if len(keys) == 0 {
		return nil
	}

	fk := UUIDColumn{Column[uuid.UUID]{Name: r.foreignKey, Table: r.target.table}}
	related, err := r.target.Query(ctx, store).
		Where(fk.Any(keys)).
		Order(r.target.defaultOrdering).
		Find()
	if err != nil {
		return err
	}

	grouped := make(map[uuid.UUID][]R, len(keys))
	for i := range related {
		owner := r.owner(&related[i])
		grouped[owner] = append(grouped[owner], related[i])
	}

	for i := range records {
		children := grouped[id(&records[i])]
		if children == nil {
			children = []R{}
		}
		r.set(&records[i], children)
	}

	return nil
}

type manyToMany[T any, R any] struct {
	name   string
	target *Schema[R]
	join   JoinTable
	set    func(*T, []R)
}

// ManyToMany declares that T and R are linked through a join table
func ManyToMany[T any, R any](name string, target *Schema[R], join JoinTable, set func(*T, []R)) Relation[T] {
	return &manyToMany[T, R]{name: name, target: target, join: join, set: set}
}

func (r *manyToMany[T, R]) relationName() string { return r.name }

func (r *manyToMany[T, R]) load(ctx context.Context, store *Store, id func(*T) uuid.UUID, records []T) error {
	keys := distinctIDs(records, id)
	if len(keys) == 0 {
		return nil
	}

	links, err := r.join.Links(ctx, store, keys)
	if err != nil {
		return err
	}

	sourcesByTarget := make(map[uuid.UUID][]uuid.UUID)
	targets := make([]uuid.UUID, 0, len(links))
	for _, l := range links {
		if _, ok := sourcesByTarget[l.Target]; !ok {
			targets = append(targets, l.Target)
		}
		sourcesByTarget[l.Target] = append(sourcesByTarget[l.Target], l.Source)
	}

	grouped := make(map[uuid.UUID][]R, len(keys))
	if len(targets) > 0 {
		related, err := r.target.Query(ctx, store).
			Where(r.target.IDColumn().Any(targets)).
			Order(r.target.defaultOrdering).
			Find()
		if err != nil {
			return err
		}

		for i := range related {
			for _, source := range sourcesByTarget[r.target.ID(&related[i])] {
				grouped[source] = append(grouped[source], related[i])
			}
		}
	}

	for i := range records {
		children := grouped[id(&records[i])]
		if children == nil {
			children = []R{}
		}
		r.set(&records[i], children)
	}

	return nil
}

func distinctIDs[T any](records []T, id func(*T) uuid.UUID) []uuid.UUID {
	keys := make([]uuid.UUID, 0, len(records))
	seen := make(map[uuid.UUID]struct{}, len(records))
	for i := range records {
		key := id(&records[i])
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}
