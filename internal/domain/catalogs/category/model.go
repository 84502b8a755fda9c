// Package category provides the product category catalog.
package category

import (
	"context"
	"strings"
	"time"

	"opsboard/internal/core/apperror"
)

// Category groups products for filtering and reporting.
type Category struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Validate checks required fields.
func (c *Category) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("category name is required")
	}
	return nil
}
