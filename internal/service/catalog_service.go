package service

import (
	"context"
	"errors"

	"learnhub/api/internal/ids"
	"learnhub/api/internal/models"
)

var (
	ErrCategoryHasChildren    = errors.New("category still has subcategories")
	ErrSubcategoryHasChildren = errors.New("subcategory still has videos")
)

type CategoryStore interface {
	Create(ctx context.Context, category models.Category) error
	GetByID(ctx context.Context, id string) (models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, category models.Category) (models.Category, error)
	Delete(ctx context.Context, id string) error
}

type SubcategoryStore interface {
	Create(ctx context.Context, subcategory models.Subcategory) error
	GetByID(ctx context.Context, id string) (models.Subcategory, error)
	List(ctx context.Context) ([]models.Subcategory, error)
	ListByCategory(ctx context.Context, categoryID string) ([]models.Subcategory, error)
	CountByCategory(ctx context.Context, categoryID string) (int, error)
	ExistsDuplicate(ctx context.Context, name string, categoryID string, excludeID string) (bool, error)
	Update(ctx context.Context, subcategory models.Subcategory) (models.Subcategory, error)
	Delete(ctx context.Context, id string) error
}

type VideoCounter interface {
	CountBySubcategory(ctx context.Context, subcategoryID string) (int, error)
}

// CatalogService guards the category → subcategory tree. Nodes with
// children never delete; callers must empty a node first.
type CatalogService struct {
	categories    CategoryStore
	subcategories SubcategoryStore
	videos        VideoCounter
}

func NewCatalogService(categories CategoryStore, subcategories SubcategoryStore, videos VideoCounter) *CatalogService {
	return &CatalogService{
		categories:    categories,
		subcategories: subcategories,
		videos:        videos,
	}
}

type CategoryInput struct {
	Name        string
	Description string
	ImageURL    string
	ImageKey    *string
}

func (s *CatalogService) CreateCategory(ctx context.Context, input CategoryInput) (models.Category, error) {
	category := models.Category{
		ID:          ids.New(),
		Name:        input.Name,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		ImageKey:    input.ImageKey,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return models.Category{}, err
	}
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, input CategoryInput) (models.Category, error) {
	return s.categories.Update(ctx, models.Category{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		ImageKey:    input.ImageKey,
	})
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	count, err := s.subcategories.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryHasChildren
	}
	return s.categories.Delete(ctx, id)
}

type SubcategoryInput struct {
	Name        string
	Description string
	CategoryID  string
}

func (s *CatalogService) CreateSubcategory(ctx context.Context, input SubcategoryInput) (models.Subcategory, error) {
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		return models.Subcategory{}, err
	}

	subcategory := models.Subcategory{
		ID:          ids.New(),
		Name:        input.Name,
		Description: input.Description,
		CategoryID:  input.CategoryID,
	}
	if err := s.subcategories.Create(ctx, subcategory); err != nil {
		return models.Subcategory{}, err
	}
	return subcategory, nil
}

func (s *CatalogService) UpdateSubcategory(ctx context.Context, id string, input SubcategoryInput) (models.Subcategory, error) {
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		return models.Subcategory{}, err
	}
	return s.subcategories.Update(ctx, models.Subcategory{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		CategoryID:  input.CategoryID,
	})
}

func (s *CatalogService) DeleteSubcategory(ctx context.Context, id string) error {
	count, err := s.videos.CountBySubcategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSubcategoryHasChildren
	}

	if _, err := s.subcategories.GetByID(ctx, id); err != nil {
		return err
	}
	return s.subcategories.Delete(ctx, id)
}
