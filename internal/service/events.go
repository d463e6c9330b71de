package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/eleven-am/eventhub/internal/domain"
	"github.com/eleven-am/eventhub/internal/orm"
	"github.com/eleven-am/eventhub/internal/repository"
)

type EventService struct {
	events EventRepository
}

func NewEventService(events EventRepository) *EventService {
	return &EventService{events: events}
}

func (s *EventService) List(ctx context.Context, opts orm.QueryOptions, eager bool) (*orm.PageResult[domain.Event], error) {
	return s.events.ReadByOptions(ctx, opts, eager)
}

// ListByOwner lists one user's events. The owner scope is AND-ed with the client filters.
func (s *EventService) ListByOwner(ctx context.Context, ownerID uuid.UUID, opts orm.QueryOptions, eager bool) (*orm.PageResult[domain.Event], error) {
	return s.events.ReadByOptions(ctx, opts, eager, repository.OwnedBy(ownerID))
}

func (s *EventService) Get(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	return s.events.ReadByID(ctx, id)
}

// Create stores an event owned by the principal. The returned event carries its owner and categories.
func (s *EventService) Create(ctx context.Context, principal uuid.UUID, in domain.NewEvent) (*domain.Event, error) {
	in.OwnerID = principal
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, orm.ValidationError("name", "name is required")
	}
	if in.EventType == "" {
		in.EventType = domain.EventPublic
	}
	if !in.EventType.Valid() {
		return nil, orm.ValidationError("evt_type", "unknown event type %q", in.EventType)
	}
	return s.events.Create(ctx, in)
}

// Update changes an event owned by the principal
func (s *EventService) Update(ctx context.Context, principal, id uuid.UUID, patch domain.EventPatch) (*domain.Event, error) {
	if t, ok := patch.EventType.Get(); ok && !t.Valid() {
		return nil, orm.ValidationError("evt_type", "unknown event type %q", t)
	}
	if name, ok := patch.Name.Get(); ok && strings.TrimSpace(name) == "" {
		return nil, orm.ValidationError("name", "name cannot be empty")
	}
	return s.events.Update(ctx, id, patch, repository.OwnedBy(principal))
}

// Delete removes an event owned by the principal
func (s *EventService) Delete(ctx context.Context, principal, id uuid.UUID) error {
	return s.events.DeleteByID(ctx, id, repository.OwnedBy(principal))
}
