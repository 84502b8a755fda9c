package category

import (
	"context"
	"fmt"

	"opsboard/internal/core/apperror"
	"opsboard/pkg/logger"
)

// Service provides business logic for the category catalog.
type Service struct {
	repo Repository
}

// NewService creates a new category service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a new category after a name-uniqueness check.
func (s *Service) Create(ctx context.Context, cat *Category) error {
	if err := cat.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.GetByName(ctx, cat.Name); err == nil && existing != nil {
		return apperror.NewDuplicate("category", "name", cat.Name)
	}

	if err := s.repo.Create(ctx, cat); err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	logger.Info(ctx, "category created", "category_id", cat.ID, "name", cat.Name)
	return nil
}

// Update renames a category.
func (s *Service) Update(ctx context.Context, cat *Category) error {
	if err := cat.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.GetByName(ctx, cat.Name); err == nil && existing != nil && existing.ID != cat.ID {
		return apperror.NewDuplicate("category", "name", cat.Name)
	}

	if err := s.repo.Update(ctx, cat); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a category. Categories still referenced by products
// cannot be removed.
func (s *Service) Delete(ctx context.Context, id int64) error {
	count, err := s.repo.ProductCount(ctx, id)
	if err != nil {
		return fmt.Errorf("count category products: %w", err)
	}
	if count > 0 {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "category has products and cannot be deleted").
			WithDetail("product_count", count)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	logger.Info(ctx, "category deleted", "category_id", id)
	return nil
}

// GetByID retrieves a category.
func (s *Service) GetByID(ctx context.Context, id int64) (*Category, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all categories ordered by name.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}
