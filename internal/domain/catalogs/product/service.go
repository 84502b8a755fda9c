package product

import (
	"context"
	"fmt"

	"opsboard/internal/core/apperror"
	"opsboard/internal/core/tx"
	"opsboard/internal/domain/inventory"
	"opsboard/pkg/logger"
)

// Service provides business logic for the product catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new product service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Create adds a product after an article-uniqueness check.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.FindByArticle(ctx, p.ArticleNumber); err == nil && existing != nil {
		return apperror.NewDuplicate("product", "article_number", p.ArticleNumber)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	logger.Info(ctx, "product created",
		"product_id", p.ID,
		"article", p.ArticleNumber,
	)
	return nil
}

// Update modifies a product.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.FindByArticle(ctx, p.ArticleNumber); err == nil && existing != nil && existing.ID != p.ID {
		return apperror.NewDuplicate("product", "article_number", p.ArticleNumber)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	logger.Info(ctx, "product deleted", "product_id", id)
	return nil
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a filtered, paginated product listing.
func (s *Service) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	if filter.Threshold <= 0 {
		filter.Threshold = inventory.DefaultMinStock
	}
	return s.repo.List(ctx, filter)
}

// ReceiveStock increments remains by a positive receipt quantity.
func (s *Service) ReceiveStock(ctx context.Context, id int64, quantity int) (*Product, error) {
	if quantity <= 0 {
		return nil, apperror.NewValidation("receipt quantity must be positive")
	}

	var updated *Product
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetForUpdate(ctx, id); err != nil {
			return err
		}
		if err := s.repo.AdjustStock(ctx, id, quantity); err != nil {
			return err
		}
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock received",
		"product_id", id,
		"quantity", quantity,
		"remains", updated.Remains,
	)
	return updated, nil
}

// MinStockUpdate reports a threshold change together with everything the
// client-side reconciler needs to adjust its cached aggregates.
type MinStockUpdate struct {
	Product      *Product `json:"product"`
	PrevMinStock *int     `json:"prevMinStock,omitempty"`
	NewMinStock  *int     `json:"newMinStock,omitempty"`
	WasLow       bool     `json:"wasLow"`
	IsLow        bool     `json:"isLow"`
	DeltaLow     int      `json:"deltaLow"`
}

// UpdateMinStock changes a product's min-stock threshold and derives the
// low-stock classification delta using the shared predicate.
func (s *Service) UpdateMinStock(ctx context.Context, id int64, minStock *int) (*MinStockUpdate, error) {
	if minStock != nil && *minStock < 0 {
		return nil, apperror.NewValidation("min stock must not be negative")
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	prev := current.MinStock
	if err := s.repo.UpdateMinStock(ctx, id, minStock); err != nil {
		return nil, fmt.Errorf("update min stock: %w", err)
	}
	current.MinStock = minStock

	wasLow := current.Remains > 0 && inventory.IsLowStock(current.Remains, prev, inventory.DefaultMinStock)
	isLow := current.Remains > 0 && inventory.IsLowStock(current.Remains, minStock, inventory.DefaultMinStock)

	delta := 0
	switch {
	case isLow && !wasLow:
		delta = 1
	case !isLow && wasLow:
		delta = -1
	}

	return &MinStockUpdate{
		Product:      current,
		PrevMinStock: prev,
		NewMinStock:  minStock,
		WasLow:       wasLow,
		IsLow:        isLow,
		DeltaLow:     delta,
	}, nil
}

// FullList returns every product matching filter, ignoring pagination.
// Statistics views are computed over this full set, never a page of it.
func (s *Service) FullList(ctx context.Context, filter ListFilter) (ListResult, error) {
	filter.Limit = 0
	filter.Offset = 0
	if filter.Threshold <= 0 {
		filter.Threshold = inventory.DefaultMinStock
	}

	result, err := s.repo.List(ctx, filter)
	if err != nil {
		return ListResult{}, fmt.Errorf("list products for stats: %w", err)
	}
	return result, nil
}
