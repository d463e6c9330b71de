// Package service orchestrates repositories across entities and applies the
// rules that depend on who is asking.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/eleven-am/eventhub/internal/auth"
	"github.com/eleven-am/eventhub/internal/domain"
	"github.com/eleven-am/eventhub/internal/orm"
)

var (
	ErrUnauthorized    = errors.New("invalid credentials")
	ErrInactiveAccount = errors.New("account is inactive")
	ErrForbidden       = errors.New("forbidden")
)

type EventRepository interface {
	Create(ctx context.Context, in domain.NewEvent) (*domain.Event, error)
	ReadByOptions(ctx context.Context, opts orm.QueryOptions, eager bool, scopes ...orm.Condition) (*orm.PageResult[domain.Event], error)
	ReadByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.EventPatch, scopes ...orm.Condition) (*domain.Event, error)
	DeleteByID(ctx context.Context, id uuid.UUID, scopes ...orm.Condition) error
}

type CategoryRepository interface {
	Create(ctx context.Context, in domain.NewCategory) (*domain.Category, error)
	ReadByOptions(ctx context.Context, opts orm.QueryOptions, eager bool, scopes ...orm.Condition) (*orm.PageResult[domain.Category], error)
	ReadByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.CategoryPatch, scopes ...orm.Condition) (*domain.Category, error)
	DeleteByID(ctx context.Context, id uuid.UUID, scopes ...orm.Condition) error
}

type UserRepository interface {
	Create(ctx context.Context, in domain.NewUser) (*domain.User, error)
	ReadByOptions(ctx context.Context, opts orm.QueryOptions, eager bool, scopes ...orm.Condition) (*orm.PageResult[domain.User], error)
	ReadByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.UserPatch, scopes ...orm.Condition) (*domain.User, error)
	DeleteByID(ctx context.Context, id uuid.UUID, scopes ...orm.Condition) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Sign(userID uuid.UUID, admin bool) (string, time.Time, error)
}

type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (auth.GoogleIdentity, error)
}
