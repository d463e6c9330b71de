package domain

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Name string `db:"name" json:"name"`
}

type NewCategory struct {
	Name string
}

type CategoryPatch struct {
	Name Optional[string] `json:"name"`
}

// Changes returns the column values of the present fields
func (p CategoryPatch) Changes() map[string]interface{} {
	changes := make(map[string]interface{})
	if v, ok := p.Name.Get(); ok {
		changes["name"] = v
	}
	return changes
}

// MissingCategoryPolicy decides what happens to category names that match no category
type MissingCategoryPolicy string

const (
	// MissingIgnore drops unmatched names
	MissingIgnore MissingCategoryPolicy = "ignore"
	// MissingReject fails the operation with a validation error
	MissingReject MissingCategoryPolicy = "reject"
	// MissingCreate creates the missing categories
	MissingCreate MissingCategoryPolicy = "create"
)

// Valid reports whether p is a known policy
func (p MissingCategoryPolicy) Valid() bool {
	switch p {
	case MissingIgnore, MissingReject, MissingCreate:
		return true
	}
	return false
}
