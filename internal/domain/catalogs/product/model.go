// Package product provides the product catalog with stock tracking.
package product

import (
	"context"
	"strings"
	"time"

	"opsboard/internal/core/apperror"
	"opsboard/internal/core/types"
	"opsboard/internal/domain/inventory"
)

// Product is a stocked item for sale.
type Product struct {
	ID            int64       `db:"id" json:"id"`
	Name          string      `db:"name" json:"name"`
	CategoryID    int64       `db:"category_id" json:"categoryId"`
	ArticleNumber string      `db:"article_number" json:"articleNumber"`
	PurchasePrice types.Money `db:"purchase_price" json:"purchasePrice"`
	SalePrice     types.Money `db:"sale_price" json:"salePrice"`
	Remains       int         `db:"remains" json:"remains"`
	MinStock      *int        `db:"min_stock" json:"minStock,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updatedAt"`
}

// Validate checks required fields and value ranges.
func (p *Product) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("product name is required")
	}
	if strings.TrimSpace(p.ArticleNumber) == "" {
		return apperror.NewValidation("article number is required")
	}
	if p.CategoryID <= 0 {
		return apperror.NewValidation("category is required")
	}
	if p.PurchasePrice.IsNegative() || p.SalePrice.IsNegative() {
		return apperror.NewValidation("prices must not be negative")
	}
	if p.Remains < 0 {
		return apperror.NewValidation("remains must not be negative")
	}
	if p.MinStock != nil && *p.MinStock < 0 {
		return apperror.NewValidation("min stock must not be negative")
	}
	return nil
}

// LineItem projects the product into an inventory statistics line.
func (p *Product) LineItem() inventory.LineItem {
	return inventory.LineItem{
		ID:            p.ID,
		Name:          p.Name,
		Code:          p.ArticleNumber,
		Quantity:      p.Remains,
		MinStock:      p.MinStock,
		Price:         p.SalePrice,
		PurchasePrice: p.PurchasePrice,
	}
}
