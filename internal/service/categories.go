package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/eleven-am/eventhub/internal/domain"
	"github.com/eleven-am/eventhub/internal/orm"
)

const maxCategoryName = 50

type CategoryService struct {
	categories CategoryRepository
}

func NewCategoryService(categories CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

func (s *CategoryService) Create(ctx context.Context, in domain.NewCategory) (*domain.Category, error) {
	name, err := categoryName(in.Name)
	if err != nil {
		return nil, err
	}
	return s.categories.Create(ctx, domain.NewCategory{Name: name})
}

func (s *CategoryService) List(ctx context.Context, opts orm.QueryOptions) (*orm.PageResult[domain.Category], error) {
	return s.categories.ReadByOptions(ctx, opts, false)
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.categories.ReadByID(ctx, id)
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, patch domain.CategoryPatch) (*domain.Category, error) {
	if raw, ok := patch.Name.Get(); ok {
		name, err := categoryName(raw)
		if err != nil {
			return nil, err
		}
		patch.Name = domain.Some(name)
	}
	return s.categories.Update(ctx, id, patch)
}

func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.categories.DeleteByID(ctx, id)
}

func categoryName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", orm.ValidationError("name", "name is required")
	}
	if len(name) > maxCategoryName {
		return "", orm.ValidationError("name", "name must be at most %d characters", maxCategoryName)
	}
	return name, nil
}
