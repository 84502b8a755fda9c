package product

import (
	"context"
)

// ListFilter narrows product listings.
type ListFilter struct {
	CategoryID *int64
	Search     string

	// LowStockOnly keeps only items at or below their effective threshold
	// (with Threshold as the fallback for items without a min stock) while
	// still in stock.
	LowStockOnly bool
	Threshold    int

	Limit  int
	Offset int
}

// ListResult is a paginated product listing.
type ListResult struct {
	Items      []Product `json:"items"`
	TotalCount int       `json:"totalCount"`
}

// Repository defines product data access.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	FindByArticle(ctx context.Context, article string) (*Product, error)
	List(ctx context.Context, filter ListFilter) (ListResult, error)

	// GetForUpdate locks the product row. Call inside a transaction before
	// a stock adjustment so concurrent sales serialize on the row.
	GetForUpdate(ctx context.Context, id int64) (*Product, error)

	// AdjustStock applies delta to remains. The row must already be locked
	// via GetForUpdate inside the enclosing transaction.
	AdjustStock(ctx context.Context, id int64, delta int) error

	// UpdateMinStock sets (or clears) the min-stock threshold.
	UpdateMinStock(ctx context.Context, id int64, minStock *int) error
}
