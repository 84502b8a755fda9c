// Package sales provides sale records and the transactional stock
// adjustments tied to their lifecycle.
package sales

import (
	"context"
	"time"

	"opsboard/internal/core/apperror"
	"opsboard/internal/core/types"
)

// Sale is one sell transaction of a single product.
type Sale struct {
	ID           int64       `db:"id" json:"id"`
	SaleDate     time.Time   `db:"sale_date" json:"saleDate"`
	ProductID    int64       `db:"product_id" json:"productId"`
	QuantitySold int         `db:"quantity_sold" json:"quantitySold"`
	TotalPrice   types.Money `db:"total_price" json:"totalPrice"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updatedAt"`
}

// Input carries the caller-supplied fields of a sale. TotalPrice is always
// derived server-side from the product's current sale price.
type Input struct {
	SaleDate     time.Time
	ProductID    int64
	QuantitySold int
}

// Validate checks input ranges.
func (in *Input) Validate(ctx context.Context) error {
	if in.ProductID <= 0 {
		return apperror.NewValidation("product is required")
	}
	if in.QuantitySold <= 0 {
		return apperror.NewValidation("quantity sold must be positive")
	}
	if in.SaleDate.IsZero() {
		return apperror.NewValidation("sale date is required")
	}
	return nil
}
