package sales

import (
	"context"
	"fmt"

	"opsboard/internal/core/apperror"
	"opsboard/internal/core/tx"
	"opsboard/internal/core/types"
	"opsboard/internal/domain/catalogs/product"
	"opsboard/pkg/logger"
)

// Service provides sale operations. Every stock-affecting operation runs
// in a single transaction: the product row is locked, sufficiency checked,
// remains adjusted, and the sale row written, all committing or rolling
// back together. No partial stock adjustment is ever visible.
type Service struct {
	repo      Repository
	products  product.Repository
	txManager tx.Manager
}

// NewService creates a new sales service.
func NewService(repo Repository, products product.Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		txManager: txManager,
	}
}

// Create records a sale, decrementing the product's remains.
func (s *Service) Create(ctx context.Context, in Input) (*Sale, error) {
	if err := in.Validate(ctx); err != nil {
		return nil, err
	}

	var created *Sale
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.products.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}

		if p.Remains < in.QuantitySold {
			return apperror.NewInsufficientStock(p.ID, in.QuantitySold, p.Remains)
		}

		if err := s.products.AdjustStock(ctx, p.ID, -in.QuantitySold); err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}

		sale := &Sale{
			SaleDate:     types.DayStart(in.SaleDate),
			ProductID:    p.ID,
			QuantitySold: in.QuantitySold,
			TotalPrice:   p.SalePrice.Mul(types.NewMoney(float64(in.QuantitySold))),
		}
		if err := s.repo.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}

		created = sale
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale recorded",
		"sale_id", created.ID,
		"product_id", created.ProductID,
		"quantity", created.QuantitySold,
	)
	return created, nil
}

// Update rewrites a sale's date and quantity. The stock delta between old
// and new quantity is applied with the same sufficiency check, and the
// total price is re-derived from the product's current sale price.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*Sale, error) {
	if err := in.Validate(ctx); err != nil {
		return nil, err
	}

	var updated *Sale
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sale, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if in.ProductID != sale.ProductID {
			return apperror.NewValidation("sale product cannot be changed")
		}

		p, err := s.products.GetForUpdate(ctx, sale.ProductID)
		if err != nil {
			return err
		}

		delta := in.QuantitySold - sale.QuantitySold
		if delta > 0 && p.Remains < delta {
			return apperror.NewInsufficientStock(p.ID, delta, p.Remains)
		}

		if delta != 0 {
			if err := s.products.AdjustStock(ctx, p.ID, -delta); err != nil {
				return fmt.Errorf("adjust stock: %w", err)
			}
		}

		sale.SaleDate = types.DayStart(in.SaleDate)
		sale.QuantitySold = in.QuantitySold
		sale.TotalPrice = p.SalePrice.Mul(types.NewMoney(float64(in.QuantitySold)))

		if err := s.repo.Update(ctx, sale); err != nil {
			return fmt.Errorf("update sale: %w", err)
		}

		updated = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete reverses a sale, restoring the product's remains.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sale, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if _, err := s.products.GetForUpdate(ctx, sale.ProductID); err != nil {
			return err
		}
		if err := s.products.AdjustStock(ctx, sale.ProductID, sale.QuantitySold); err != nil {
			return fmt.Errorf("restore stock: %w", err)
		}

		if err := s.repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete sale: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "sale reversed", "sale_id", id)
	return nil
}

// GetByID retrieves a sale.
func (s *Service) GetByID(ctx context.Context, id int64) (*Sale, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a filtered, paginated sale listing.
func (s *Service) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.repo.List(ctx, filter)
}
