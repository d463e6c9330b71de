package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/eleven-am/eventhub/internal/domain"
	"github.com/eleven-am/eventhub/internal/orm"
	"github.com/eleven-am/eventhub/internal/transport/http/middleware"
	"github.com/eleven-am/eventhub/internal/transport/http/response"
)

type EventService interface {
	List(ctx context.Context, opts orm.QueryOptions, eager bool) (*orm.PageResult[domain.Event], error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, opts orm.QueryOptions, eager bool) (*orm.PageResult[domain.Event], error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	Create(ctx context.Context, principal uuid.UUID, in domain.NewEvent) (*domain.Event, error)
	Update(ctx context.Context, principal, id uuid.UUID, patch domain.EventPatch) (*domain.Event, error)
	Delete(ctx context.Context, principal, id uuid.UUID) error
}

type createEventRequest struct {
	Name        string            `json:"name" validate:"required,max=200"`
	Description string            `json:"description" validate:"max=5000"`
	Date        time.Time         `json:"date" validate:"required"`
	StartTime   *domain.TimeOfDay `json:"start_time"`
	EndTime     *domain.TimeOfDay `json:"end_time"`
	Location    string            `json:"location" validate:"max=300"`
	Image       string            `json:"image" validate:"max=500"`
	EventType   string            `json:"evt_type" validate:"omitempty,oneof=public private"`
	Categories  []string          `json:"categories" validate:"max=20,dive,required,max=50"`
}

type EventsHandler struct {
	events      EventService
	maxPageSize int
}

func NewEventsHandler(events EventService, maxPageSize int) *EventsHandler {
	return &EventsHandler{events: events, maxPageSize: maxPageSize}
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	req, err := ParseListRequest(r.URL.Query(), h.maxPageSize)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	page, err := h.events.List(r.Context(), req.Options, req.Eager)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, page)
}

// ListByOwner serves /users/{id}/events
func (h *EventsHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	req, err := ParseListRequest(r.URL.Query(), h.maxPageSize)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	page, err := h.events.ListByOwner(r.Context(), ownerID, req.Options, req.Eager)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, page)
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	event, err := h.events.Get(r.Context(), id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, event)
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.Principal(r.Context())

	var body createEventRequest
	if err := decodeJSON(r, &body); err != nil {
		response.Err(w, r, err)
		return
	}

	event, err := h.events.Create(r.Context(), principal.UserID, domain.NewEvent{
		Name:        body.Name,
		Description: body.Description,
		Date:        body.Date,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
		Location:    body.Location,
		Image:       body.Image,
		EventType:   domain.EventType(body.EventType),
		Categories:  body.Categories,
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Created(w, event)
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.Principal(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var patch domain.EventPatch
	if err := decodeJSON(r, &patch); err != nil {
		response.Err(w, r, err)
		return
	}

	event, err := h.events.Update(r.Context(), principal.UserID, id, patch)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, event)
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.Principal(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	if err := h.events.Delete(r.Context(), principal.UserID, id); err != nil {
		response.Err(w, r, err)
		return
	}
	response.NoContent(w)
}
