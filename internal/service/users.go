package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/eleven-am/eventhub/internal/domain"
	"github.com/eleven-am/eventhub/internal/orm"
)

const minPasswordLength = 8

// ProfileUpdate is a change a user makes to their own account.
// Changing the password requires OldPassword when the account has one.
type ProfileUpdate struct {
	Email       domain.Optional[string]
	FirstName   domain.Optional[string]
	LastName    domain.Optional[string]
	PhoneNo     domain.Optional[string]
	OldPassword string
	NewPassword domain.Optional[string]
}

type UserService struct {
	users  UserRepository
	hasher PasswordHasher
}

func NewUserService(users UserRepository, hasher PasswordHasher) *UserService {
	return &UserService{users: users, hasher: hasher}
}

func (s *UserService) List(ctx context.Context, opts orm.QueryOptions, eager bool) (*orm.PageResult[domain.User], error) {
	return s.users.ReadByOptions(ctx, opts, eager)
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.ReadByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, in ProfileUpdate) (*domain.User, error) {
	patch := domain.UserPatch{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		PhoneNo:   in.PhoneNo,
	}

	if email, ok := in.Email.Get(); ok {
		email = normalizeEmail(email)
		if email == "" {
			return nil, orm.ValidationError("email", "email cannot be empty")
		}
		patch.Email = domain.Some(email)
	}

	if password, ok := in.NewPassword.Get(); ok {
		if len(password) < minPasswordLength {
			return nil, orm.ValidationError("password", "password must be at least %d characters", minPasswordLength)
		}

		current, err := s.users.ReadByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.HasPassword() {
			if err := s.hasher.Compare(*current.Password, in.OldPassword); err != nil {
				return nil, ErrUnauthorized
			}
		}

		hash, err := s.hasher.Hash(password)
		if err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		patch.Password = domain.Some(hash)
	}

	return s.users.Update(ctx, id, patch)
}

// Delete removes the user together with their events
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.users.DeleteByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
