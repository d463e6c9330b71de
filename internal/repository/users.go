package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/eleven-am/eventhub/internal/domain"
	"github.com/eleven-am/eventhub/internal/orm"
)

// Users is the account facade
type Users struct {
	store *orm.Store
	opts  options
}

func NewUsers(store *orm.Store, opts ...Option) *Users {
	return &Users{store: store, opts: newOptions(opts)}
}

// Create inserts an account. A taken email or token fails with orm.ErrDuplicated.
func (r *Users) Create(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	id := r.opts.newID()
	now := r.opts.timestamp()

	var created *domain.User
	err := r.store.WithTransaction(ctx, func(tx *orm.Store) error {
		err := UserSchema.Insert(ctx, tx, map[string]interface{}{
			"id":         id,
			"email":      in.Email,
			"password":   in.Password,
			"user_token": in.UserToken,
			"first_name": in.FirstName,
			"last_name":  in.LastName,
			"phone_no":   in.PhoneNo,
			"is_active":  in.IsActive,
			"is_admin":   in.IsAdmin,
			"created_at": now,
			"updated_at": now,
		})
		if err != nil {
			return err
		}
		created, err = UserSchema.FindByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *Users) ReadByOptions(ctx context.Context, opts orm.QueryOptions, eager bool, scopes ...orm.Condition) (*orm.PageResult[domain.User], error) {
	var page *orm.PageResult[domain.User]
	err := r.store.WithReadTransaction(ctx, func(tx *orm.Store) error {
		var err error
		page, err = readPage(UserSchema.Query(ctx, tx), opts, eager, scopes)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (r *Users) ReadByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user *domain.User
	err := r.store.WithReadTransaction(ctx, func(tx *orm.Store) error {
		var err error
		user, err = UserSchema.FindByID(ctx, tx, id, UserSchema.Relations()...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail looks an account up by its exact email
func (r *Users) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user *domain.User
	err := r.store.WithReadTransaction(ctx, func(tx *orm.Store) error {
		var err error
		user, err = UserSchema.Query(ctx, tx).Where(userEmail.Eq(email)).First()
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Users) Update(ctx context.Context, id uuid.UUID, patch domain.UserPatch, scopes ...orm.Condition) (*domain.User, error) {
	changes := patch.Changes()
	changes["updated_at"] = r.opts.timestamp()

	var updated *domain.User
	err := r.store.WithTransaction(ctx, func(tx *orm.Store) error {
		n, err := UserSchema.Query(ctx, tx).Where(byID(UserSchema, id, scopes)).Update(changes)
		if err != nil {
			return err
		}
		if n == 0 {
			return orm.NotFoundError("update", usersTable)
		}
		updated, err = UserSchema.FindByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteByID removes the category links of the user's events, the events,
// and then the user, in one transaction.
func (r *Users) DeleteByID(ctx context.Context, id uuid.UUID, scopes ...orm.Condition) error {
	return r.store.WithTransaction(ctx, func(tx *orm.Store) error {
		cond := byID(UserSchema, id, scopes)
		exists, err := UserSchema.Query(ctx, tx).Where(cond).Exists()
		if err != nil {
			return err
		}
		if !exists {
			return orm.NotFoundError("delete", usersTable)
		}

		owned := OwnedBy(id)
		if _, err := eventCategories.DeleteWhereSource(ctx, tx, eventsTable, owned); err != nil {
			return err
		}
		if _, err := EventSchema.Query(ctx, tx).Where(owned).Delete(); err != nil {
			return err
		}

		n, err := UserSchema.Query(ctx, tx).Where(cond).Delete()
		if err != nil {
			return err
		}
		if n == 0 {
			return orm.NotFoundError("delete", usersTable)
		}
		return nil
	})
}
