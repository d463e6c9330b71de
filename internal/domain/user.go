package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account. Password holds a bcrypt hash and is nil for accounts
// that only sign in through Google.
type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Email     string  `db:"email" json:"email"`
	Password  *string `db:"password" json:"-"`
	UserToken string  `db:"user_token" json:"-"`
	FirstName string  `db:"first_name" json:"first_name"`
	LastName  string  `db:"last_name" json:"last_name"`
	PhoneNo   *string `db:"phone_no" json:"phone_no"`
	IsActive  bool    `db:"is_active" json:"is_active"`
	IsAdmin   bool    `db:"is_admin" json:"is_admin"`

	Events []Event `db:"-" json:"events,omitempty"`
}

// HasPassword reports whether the account can sign in with a password
func (u *User) HasPassword() bool {
	return u.Password != nil && *u.Password != ""
}

// NewUser carries the values of an account to create
type NewUser struct {
	Email     string
	Password  *string
	UserToken string
	FirstName string
	LastName  string
	PhoneNo   *string
	IsActive  bool
	IsAdmin   bool
}

// UserPatch is a partial update of an account. Password carries a hash.
type UserPatch struct {
	Email     Optional[string] `json:"email"`
	FirstName Optional[string] `json:"first_name"`
	LastName  Optional[string] `json:"last_name"`
	PhoneNo   Optional[string] `json:"phone_no"`
	Password  Optional[string] `json:"-"`
	IsActive  Optional[bool]   `json:"is_active"`
	IsAdmin   Optional[bool]   `json:"is_admin"`
}

// Changes returns the column values of the present fields
func (p UserPatch) Changes() map[string]interface{} {
	changes := make(map[string]interface{})
	if v, ok := p.Email.Get(); ok {
		changes["email"] = v
	}
	if v, ok := p.FirstName.Get(); ok {
		changes["first_name"] = v
	}
	if v, ok := p.LastName.Get(); ok {
		changes["last_name"] = v
	}
	if v, ok := p.PhoneNo.Get(); ok {
		changes["phone_no"] = v
	}
	if v, ok := p.Password.Get(); ok {
		changes["password"] = v
	}
	if v, ok := p.IsActive.Get(); ok {
		changes["is_active"] = v
	}
	if v, ok := p.IsAdmin.Get(); ok {
		changes["is_admin"] = v
	}
	return changes
}
