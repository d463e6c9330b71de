package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/eleven-am/eventhub/internal/domain"
	"github.com/eleven-am/eventhub/internal/orm"
	"github.com/eleven-am/eventhub/internal/transport/http/response"
)

type CategoryService interface {
	Create(ctx context.Context, in domain.NewCategory) (*domain.Category, error)
	List(ctx context.Context, opts orm.QueryOptions) (*orm.PageResult[domain.Category], error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.CategoryPatch) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type createCategoryRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

type CategoriesHandler struct {
	categories  CategoryService
	maxPageSize int
}

func NewCategoriesHandler(categories CategoryService, maxPageSize int) *CategoriesHandler {
	return &CategoriesHandler{categories: categories, maxPageSize: maxPageSize}
}

func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	req, err := ParseListRequest(r.URL.Query(), h.maxPageSize)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	page, err := h.categories.List(r.Context(), req.Options)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, page)
}

func (h *CategoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	category, err := h.categories.Get(r.Context(), id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, category)
}

func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createCategoryRequest
	if err := decodeJSON(r, &body); err != nil {
		response.Err(w, r, err)
		return
	}

	category, err := h.categories.Create(r.Context(), domain.NewCategory{Name: body.Name})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Created(w, category)
}

func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var patch domain.CategoryPatch
	if err := decodeJSON(r, &patch); err != nil {
		response.Err(w, r, err)
		return
	}

	category, err := h.categories.Update(r.Context(), id, patch)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, category)
}

func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	if err := h.categories.Delete(r.Context(), id); err != nil {
		response.Err(w, r, err)
		return
	}
	response.NoContent(w)
}
