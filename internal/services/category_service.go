package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog-admin-service/internal/models"
	"catalog-admin-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CategoryService manages the category tree
type CategoryService struct {
	store  *repository.Store
	logger *logrus.Entry
}

func NewCategoryService(store *repository.Store, logger *logrus.Logger) *CategoryService {
	return &CategoryService{store: store, logger: logger.WithField("component", "category-service")}
}

func (s *CategoryService) Create(ctx context.Context, req models.CreateCategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, newValidationError("name", "name is required")
	}
	if req.ParentID != nil {
		if _, err := s.store.Categories.GetByID(ctx, *req.ParentID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, newValidationError("parentId", "parent category %s does not exist", *req.ParentID)
			}
			return nil, err
		}
	}

	category := &models.Category{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		ParentID:    req.ParentID,
		Position:    req.Position,
		IsActive:    true,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if err := s.store.Categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	s.logger.WithField("category_id", category.ID).Info("Category created")
	return category, nil
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.store.Categories.GetByID(ctx, id)
	return category, mapNotFound(err, ErrCategoryNotFound)
}

func (s *CategoryService) List(ctx context.Context, filters models.CategoryFilters, page models.Page) ([]models.Category, int64, error) {
	return s.store.Categories.List(ctx, filters, page)
}

// Update applies a partial update. Moving a category under itself or one of
// its descendants is rejected.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req models.UpdateCategoryRequest) (*models.Category, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, newValidationError("name", "name must not be empty")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.ParentID != nil {
		parentID := *req.ParentID
		if parentID == id {
			return nil, newValidationError("parentId", "a category cannot be its own parent")
		}
		if _, err := s.store.Categories.GetByID(ctx, parentID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, newValidationError("parentId", "parent category %s does not exist", parentID)
			}
			return nil, err
		}
		cyclic, err := s.store.Categories.IsDescendant(ctx, id, parentID)
		if err != nil {
			return nil, err
		}
		if cyclic {
			return nil, newValidationError("parentId", "a category cannot be moved under its own descendant")
		}
		updates["parent_id"] = parentID
	}

	if len(updates) > 0 {
		if err := s.store.Categories.Update(ctx, id, updates); err != nil {
			return nil, mapNotFound(err, ErrCategoryNotFound)
		}
	}
	return s.Get(ctx, id)
}

// Delete removes a category that has neither children nor products
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	children, err := s.store.Categories.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	products, err := s.store.Categories.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 || products > 0 {
		return &ConflictError{
			Code:    CodeCategoryInUse,
			Message: fmt.Sprintf("category has %d child categories and %d products", children, products),
		}
	}

	if err := s.store.Categories.Delete(ctx, id); err != nil {
		return mapNotFound(err, ErrCategoryNotFound)
	}
	s.logger.WithField("category_id", id).Info("Category deleted")
	return nil
}

// ListAttributeSets returns the attribute sets assigned to a category
func (s *CategoryService) ListAttributeSets(ctx context.Context, id uuid.UUID) ([]models.AttributeSet, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Categories.ListAttributeSets(ctx, id)
}
