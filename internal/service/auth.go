package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/eleven-am/eventhub/internal/auth"
	"github.com/eleven-am/eventhub/internal/domain"
	"github.com/eleven-am/eventhub/internal/logger"
	"github.com/eleven-am/eventhub/internal/orm"
)

// Session is the result of a successful sign-up or sign-in
type Session struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *domain.User `json:"user"`
}

type SignUpInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	PhoneNo   *string
}

type AuthService struct {
	users    UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	google   IdentityVerifier
	newToken func() (string, error)
	log      zerolog.Logger
}

func NewAuthService(users UserRepository, hasher PasswordHasher, tokens TokenIssuer, google IdentityVerifier) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		google:   google,
		newToken: auth.NewUserToken,
		log:      logger.Auth(),
	}
}

// SignUp creates a password account and signs it in
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, orm.ValidationError("email", "email is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, orm.ValidationError("password", "password must be at least %d characters", minPasswordLength)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	user, err := s.createUser(ctx, domain.NewUser{
		Email:     email,
		Password:  &hash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		PhoneNo:   in.PhoneNo,
		IsActive:  true,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("user signed up")
	return s.session(user)
}

// SignIn checks an email and password. Accounts without a password cannot sign in this way.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, orm.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveAccount
	}
	if !user.HasPassword() {
		s.log.Debug().Str("user_id", user.ID.String()).Msg("password sign-in on account without password")
		return nil, ErrUnauthorized
	}
	if err := s.hasher.Compare(*user.Password, password); err != nil {
		return nil, ErrUnauthorized
	}

	return s.session(user)
}

// GoogleSignIn verifies a Google ID token and signs the matching account in,
// creating it on first use. Accounts are matched by email, so only tokens
// whose email Google has verified are accepted.
func (s *AuthService) GoogleSignIn(ctx context.Context, idToken string) (*Session, error) {
	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		s.log.Debug().Err(err).Msg("google token rejected")
		return nil, ErrUnauthorized
	}
	if !identity.EmailVerified {
		s.log.Debug().Str("subject", identity.Subject).Msg("google email not verified")
		return nil, ErrUnauthorized
	}

	user, err := s.users.FindByEmail(ctx, identity.Email)
	switch {
	case errors.Is(err, orm.ErrNotFound):
		user, err = s.createUser(ctx, domain.NewUser{
			Email:     identity.Email,
			FirstName: identity.FirstName,
			LastName:  identity.LastName,
			IsActive:  true,
		})
		if err != nil {
			return nil, err
		}
		s.log.Info().Str("user_id", user.ID.String()).Msg("user signed up with google")
	case err != nil:
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveAccount
	}
	return s.session(user)
}

func (s *AuthService) createUser(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	token, err := s.newToken()
	if err != nil {
		return nil, err
	}
	in.UserToken = token
	return s.users.Create(ctx, in)
}

func (s *AuthService) session(user *domain.User) (*Session, error) {
	token, exp, err := s.tokens.Sign(user.ID, user.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, TokenType: "Bearer", ExpiresAt: exp, User: user}, nil
}
