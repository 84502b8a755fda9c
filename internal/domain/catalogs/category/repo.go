package category

import (
	"context"
)

// Repository defines category data access.
type Repository interface {
	Create(ctx context.Context, cat *Category) error
	Update(ctx context.Context, cat *Category) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context) ([]Category, error)

	// ProductCount returns the number of products referencing the category.
	ProductCount(ctx context.Context, id int64) (int, error)
}
