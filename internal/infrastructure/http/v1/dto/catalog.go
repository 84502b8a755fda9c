package dto

import (
	"opsboard/internal/core/apperror"
	"opsboard/internal/core/types"
	"opsboard/internal/domain/catalogs/product"
)

// CategoryRequest creates or renames a category.
type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// ProductRequest creates or updates a product. Prices travel as
// strings to keep decimal precision intact.
type ProductRequest struct {
	Name          string `json:"name" binding:"required"`
	CategoryID    int64  `json:"categoryId" binding:"required"`
	ArticleNumber string `json:"articleNumber" binding:"required"`
	PurchasePrice string `json:"purchasePrice" binding:"required"`
	SalePrice     string `json:"salePrice" binding:"required"`
	Remains       int    `json:"remains"`
	MinStock      *int   `json:"minStock"`
}

// ToProduct converts the request into a domain product.
func (r *ProductRequest) ToProduct() (*product.Product, error) {
	purchase, err := types.NewMoneyFromString(r.PurchasePrice)
	if err != nil {
		return nil, apperror.NewValidation("invalid purchase price").WithDetail("purchasePrice", r.PurchasePrice)
	}
	sale, err := types.NewMoneyFromString(r.SalePrice)
	if err != nil {
		return nil, apperror.NewValidation("invalid sale price").WithDetail("salePrice", r.SalePrice)
	}
	return &product.Product{
		Name:          r.Name,
		CategoryID:    r.CategoryID,
		ArticleNumber: r.ArticleNumber,
		PurchasePrice: purchase,
		SalePrice:     sale,
		Remains:       r.Remains,
		MinStock:      r.MinStock,
	}, nil
}

// ProductListQuery narrows product listings.
type ProductListQuery struct {
	PaginationRequest
	CategoryID *int64 `form:"categoryId"`
	Search     string `form:"search"`
	LowStock   bool   `form:"lowStock"`
	// Threshold overrides the low-stock fallback for items without a
	// min stock of their own. Zero means the server default.
	Threshold int `form:"threshold"`
}

// Validate rejects out-of-range values before any query runs.
func (q *ProductListQuery) Validate() error {
	if q.Threshold < 0 {
		return apperror.NewValidation("threshold must not be negative").WithDetail("threshold", q.Threshold)
	}
	if q.Limit < 0 {
		return apperror.NewValidation("limit must not be negative").WithDetail("limit", q.Limit)
	}
	return nil
}

// MinStockRequest sets or clears a product's threshold.
type MinStockRequest struct {
	MinStock *int `json:"minStock"`
}

// ReceiveStockRequest adds received quantity to a product.
type ReceiveStockRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}
