package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType is the visibility of an event
type EventType string

const (
	EventPublic  EventType = "public"
	EventPrivate EventType = "private"
)

// EventTypes lists every accepted event type
var EventTypes = []string{string(EventPublic), string(EventPrivate)}

// Valid reports whether t is a known event type
func (t EventType) Valid() bool {
	return t == EventPublic || t == EventPrivate
}

type Event struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	Date        time.Time  `db:"date" json:"date"`
	StartTime   *TimeOfDay `db:"start_time" json:"start_time"`
	EndTime     *TimeOfDay `db:"end_time" json:"end_time"`
	Location    string     `db:"location" json:"location"`
	Image       string     `db:"image" json:"image"`
	EventType   EventType  `db:"evt_type" json:"evt_type"`
	OwnerID     uuid.UUID  `db:"owner_id" json:"owner_id"`

	Owner      *User      `db:"-" json:"owner,omitempty"`
	Categories []Category `db:"-" json:"categories,omitempty"`
}

// NewEvent carries the values of an event to create. Categories are names.
type NewEvent struct {
	OwnerID     uuid.UUID
	Name        string
	Description string
	Date        time.Time
	StartTime   *TimeOfDay
	EndTime     *TimeOfDay
	Location    string
	Image       string
	EventType   EventType
	Categories  []string
}

// EventPatch is a partial update of an event. A present Categories list
// replaces the event's categories; an absent one leaves them untouched.
type EventPatch struct {
	Name        Optional[string]    `json:"name"`
	Description Optional[string]    `json:"description"`
	Date        Optional[time.Time] `json:"date"`
	StartTime   Optional[TimeOfDay] `json:"start_time"`
	EndTime     Optional[TimeOfDay] `json:"end_time"`
	Location    Optional[string]    `json:"location"`
	Image       Optional[string]    `json:"image"`
	EventType   Optional[EventType] `json:"evt_type"`
	Categories  Optional[[]string]  `json:"categories"`
}

// Changes returns the column values of the present fields, categories excluded
func (p EventPatch) Changes() map[string]interface{} {
	changes := make(map[string]interface{})
	if v, ok := p.Name.Get(); ok {
		changes["name"] = v
	}
	if v, ok := p.Description.Get(); ok {
		changes["description"] = v
	}
	if v, ok := p.Date.Get(); ok {
		changes["date"] = v
	}
	if v, ok := p.StartTime.Get(); ok {
		changes["start_time"] = v
	}
	if v, ok := p.EndTime.Get(); ok {
		changes["end_time"] = v
	}
	if v, ok := p.Location.Get(); ok {
		changes["location"] = v
	}
	if v, ok := p.Image.Get(); ok {
		changes["image"] = v
	}
	if v, ok := p.EventType.Get(); ok {
		changes["evt_type"] = string(v)
	}
	return changes
}
