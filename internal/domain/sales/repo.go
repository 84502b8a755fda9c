package sales

import (
	"context"
	"time"
)

// ListFilter narrows sale listings.
type ListFilter struct {
	FromDate  *time.Time
	ToDate    *time.Time
	ProductID *int64
	Limit     int
	Offset    int
}

// ListResult is a paginated sale listing.
type ListResult struct {
	Items      []Sale `json:"items"`
	TotalCount int    `json:"totalCount"`
}

// Repository defines sale data access.
type Repository interface {
	Create(ctx context.Context, sale *Sale) error
	Update(ctx context.Context, sale *Sale) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Sale, error)
	List(ctx context.Context, filter ListFilter) (ListResult, error)
}
