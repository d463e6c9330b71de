package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/eleven-am/eventhub/internal/domain"
	"github.com/eleven-am/eventhub/internal/orm"
	"github.com/eleven-am/eventhub/internal/service"
	"github.com/eleven-am/eventhub/internal/transport/http/middleware"
	"github.com/eleven-am/eventhub/internal/transport/http/response"
)

type UserService interface {
	List(ctx context.Context, opts orm.QueryOptions, eager bool) (*orm.PageResult[domain.User], error)
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, in service.ProfileUpdate) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type updateProfileRequest struct {
	Email       domain.Optional[string] `json:"email"`
	FirstName   domain.Optional[string] `json:"first_name"`
	LastName    domain.Optional[string] `json:"last_name"`
	PhoneNo     domain.Optional[string] `json:"phone_no"`
	OldPassword string                  `json:"old_password"`
	NewPassword domain.Optional[string] `json:"new_password"`
}

type UsersHandler struct {
	users       UserService
	maxPageSize int
}

func NewUsersHandler(users UserService, maxPageSize int) *UsersHandler {
	return &UsersHandler{users: users, maxPageSize: maxPageSize}
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	req, err := ParseListRequest(r.URL.Query(), h.maxPageSize)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	page, err := h.users.List(r.Context(), req.Options, req.Eager)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, page)
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, user)
}

func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.Principal(r.Context())

	user, err := h.users.Get(r.Context(), principal.UserID)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, user)
}

func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.Principal(r.Context())

	var body updateProfileRequest
	if err := decodeJSON(r, &body); err != nil {
		response.Err(w, r, err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), principal.UserID, service.ProfileUpdate{
		Email:       body.Email,
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		PhoneNo:     body.PhoneNo,
		OldPassword: body.OldPassword,
		NewPassword: body.NewPassword,
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, user)
}

func (h *UsersHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.Principal(r.Context())

	if err := h.users.Delete(r.Context(), principal.UserID); err != nil {
		response.Err(w, r, err)
		return
	}
	response.NoContent(w)
}
