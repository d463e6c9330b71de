package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/eleven-am/eventhub/internal/auth"
	"github.com/eleven-am/eventhub/internal/domain"
	"github.com/eleven-am/eventhub/internal/orm"
)

type MockEvents struct{ mock.Mock }

func (m *MockEvents) Create(ctx context.Context, in domain.NewEvent) (*domain.Event, error) {
	args := m.Called(ctx, in)
	return eventArg(args, 0), args.Error(1)
}
func (m *MockEvents) ReadByOptions(ctx context.Context, opts orm.QueryOptions, eager bool, scopes ...orm.Condition) (*orm.PageResult[domain.Event], error) {
	args := m.Called(ctx, opts, eager, scopes)
	var page *orm.PageResult[domain.Event]
	if v := args.Get(0); v != nil {
		page = v.(*orm.PageResult[domain.Event])
	}
	return page, args.Error(1)
}
func (m *MockEvents) ReadByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	args := m.Called(ctx, id)
	return eventArg(args, 0), args.Error(1)
}
func (m *MockEvents) Update(ctx context.Context, id uuid.UUID, patch domain.EventPatch, scopes ...orm.Condition) (*domain.Event, error) {
	args := m.Called(ctx, id, patch, scopes)
	return eventArg(args, 0), args.Error(1)
}
func (m *MockEvents) DeleteByID(ctx context.Context, id uuid.UUID, scopes ...orm.Condition) error {
	return m.Called(ctx, id, scopes).Error(0)
}

func eventArg(args mock.Arguments, i int) *domain.Event {
	if v := args.Get(i); v != nil {
		return v.(*domain.Event)
	}
	return nil
}

type MockCategories struct{ mock.Mock }

func (m *MockCategories) Create(ctx context.Context, in domain.NewCategory) (*domain.Category, error) {
	args := m.Called(ctx, in)
	return categoryArg(args, 0), args.Error(1)
}
func (m *MockCategories) ReadByOptions(ctx context.Context, opts orm.QueryOptions, eager bool, scopes ...orm.Condition) (*orm.PageResult[domain.Category], error) {
	args := m.Called(ctx, opts, eager, scopes)
	var page *orm.PageResult[domain.Category]
	if v := args.Get(0); v != nil {
		page = v.(*orm.PageResult[domain.Category])
	}
	return page, args.Error(1)
}
func (m *MockCategories) ReadByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	args := m.Called(ctx, id)
	return categoryArg(args, 0), args.Error(1)
}
func (m *MockCategories) Update(ctx context.Context, id uuid.UUID, patch domain.CategoryPatch, scopes ...orm.Condition) (*domain.Category, error) {
	args := m.Called(ctx, id, patch, scopes)
	return categoryArg(args, 0), args.Error(1)
}
func (m *MockCategories) DeleteByID(ctx context.Context, id uuid.UUID, scopes ...orm.Condition) error {
	return m.Called(ctx, id, scopes).Error(0)
}

func categoryArg(args mock.Arguments, i int) *domain.Category {
	if v := args.Get(i); v != nil {
		return v.(*domain.Category)
	}
	return nil
}

type MockUsers struct{ mock.Mock }

func (m *MockUsers) Create(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	args := m.Called(ctx, in)
	return userArg(args, 0), args.Error(1)
}
func (m *MockUsers) ReadByOptions(ctx context.Context, opts orm.QueryOptions, eager bool, scopes ...orm.Condition) (*orm.PageResult[domain.User], error) {
	args := m.Called(ctx, opts, eager, scopes)
	var page *orm.PageResult[domain.User]
	if v := args.Get(0); v != nil {
		page = v.(*orm.PageResult[domain.User])
	}
	return page, args.Error(1)
}
func (m *MockUsers) ReadByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	return userArg(args, 0), args.Error(1)
}
func (m *MockUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	return userArg(args, 0), args.Error(1)
}
func (m *MockUsers) Update(ctx context.Context, id uuid.UUID, patch domain.UserPatch, scopes ...orm.Condition) (*domain.User, error) {
	args := m.Called(ctx, id, patch, scopes)
	return userArg(args, 0), args.Error(1)
}
func (m *MockUsers) DeleteByID(ctx context.Context, id uuid.UUID, scopes ...orm.Condition) error {
	return m.Called(ctx, id, scopes).Error(0)
}

func userArg(args mock.Arguments, i int) *domain.User {
	if v := args.Get(i); v != nil {
		return v.(*domain.User)
	}
	return nil
}

type MockHasher struct{ mock.Mock }

func (m *MockHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}
func (m *MockHasher) Compare(hash, password string) error {
	return m.Called(hash, password).Error(0)
}

type MockTokens struct{ mock.Mock }

func (m *MockTokens) Sign(userID uuid.UUID, admin bool) (string, time.Time, error) {
	args := m.Called(userID, admin)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type MockGoogle struct{ mock.Mock }

func (m *MockGoogle) Verify(ctx context.Context, idToken string) (auth.GoogleIdentity, error) {
	args := m.Called(ctx, idToken)
	return args.Get(0).(auth.GoogleIdentity), args.Error(1)
}

var noScopes []orm.Condition
