package orm

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// JoinTable is an association table holding (source, target) key pairs under a composite primary key
type JoinTable struct {
	Name     string
	SourceFK string
	TargetFK string
}

// Link is one row of a join table
type Link struct {
	Source uuid.UUID `db:"source_id"`
	Target uuid.UUID `db:"target_id"`
}

// SyncResult reports what Sync changed
type SyncResult struct {
	Added   []uuid.UUID
	Removed []uuid.UUID
}

// Changed reports whether any link was written
func (r SyncResult) Changed() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

// Links loads every link whose source is in sourceIDs with one query
func (j JoinTable) Links(ctx context.Context, store *Store, sourceIDs []uuid.UUID) ([]Link, error) {
	links := make([]Link, 0)
	if len(sourceIDs) == 0 {
		return links, nil
	}

	stmt := squirrel.Select(j.SourceFK+" AS source_id", j.TargetFK+" AS target_id").
		From(j.Name).
		Where(squirrel.Expr(j.SourceFK+" = ANY(?::uuid[])", pq.Array(uuidStrings(sourceIDs)))).
		PlaceholderFormat(squirrel.Dollar)

	if err := store.selectInto(ctx, OpFind, j.Name, stmt, &links); err != nil {
		return nil, err
	}
	return links, nil
}

// Sync makes the targets linked to sourceID equal to targetIDs. It deletes links
// that are no longer wanted and inserts the missing ones; when the sets already
// match nothing is written. It must run inside the caller's transaction.
// A duplicate pair surfaces as ErrDuplicated through the composite primary key.
func (j JoinTable) Sync(ctx context.Context, store *Store, sourceID uuid.UUID, targetIDs []uuid.UUID) (SyncResult, error) {
	var result SyncResult

	current := make([]uuid.UUID, 0)
	stmt := squirrel.Select(j.TargetFK).
		From(j.Name).
		Where(squirrel.Eq{j.SourceFK: sourceID}).
		PlaceholderFormat(squirrel.Dollar)
	if err := store.selectInto(ctx, OpFind, j.Name, stmt, &current); err != nil {
		return result, err
	}

	desired := dedupeIDs(targetIDs)
	currentSet := toSet(current)
	desiredSet := toSet(desired)

	for _, id := range current {
		if _, keep := desiredSet[id]; !keep {
			result.Removed = append(result.Removed, id)
		}
	}
	for _, id := range desired {
		if _, exists := currentSet[id]; !exists {
			result.Added = append(result.Added, id)
		}
	}

	if len(result.Removed) > 0 {
		del := squirrel.Delete(j.Name).
			Where(squirrel.Eq{j.SourceFK: sourceID}).
			Where(squirrel.Expr(j.TargetFK+" = ANY(?::uuid[])", pq.Array(uuidStrings(result.Removed)))).
			PlaceholderFormat(squirrel.Dollar)
		if _, err := store.exec(ctx, OpDelete, j.Name, del); err != nil {
			return result, err
		}
	}

	if len(result.Added) > 0 {
		ins := squirrel.Insert(j.Name).
			Columns(j.SourceFK, j.TargetFK).
			PlaceholderFormat(squirrel.Dollar)
		for _, id := range result.Added {
			ins = ins.Values(sourceID, id)
		}
		if _, err := store.exec(ctx, OpCreate, j.Name, ins); err != nil {
			return result, err
		}
	}

	return result, nil
}

// DeleteSources removes every link of the given sources
func (j JoinTable) DeleteSources(ctx context.Context, store *Store, sourceIDs ...uuid.UUID) (int64, error) {
	if len(sourceIDs) == 0 {
		return 0, nil
	}
	del := squirrel.Delete(j.Name).
		Where(squirrel.Expr(j.SourceFK+" = ANY(?::uuid[])", pq.Array(uuidStrings(sourceIDs)))).
		PlaceholderFormat(squirrel.Dollar)
	return store.exec(ctx, OpDelete, j.Name, del)
}

// DeleteWhereSource removes the links of every source selected by a subquery on another table
func (j JoinTable) DeleteWhereSource(ctx context.Context, store *Store, sourceTable string, cond Condition) (int64, error) {
	sub := squirrel.Select(PrimaryKey).From(sourceTable).Where(cond.ToSqlizer())
	subSQL, subArgs, err := sub.ToSql()
	if err != nil {
		return 0, &Error{Op: string(OpDelete), Table: j.Name, Err: err}
	}
	del := squirrel.Delete(j.Name).
		Where(squirrel.Expr(j.SourceFK+" IN ("+subSQL+")", subArgs...)).
		PlaceholderFormat(squirrel.Dollar)
	return store.exec(ctx, OpDelete, j.Name, del)
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
