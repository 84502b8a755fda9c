// Package catalog_repo implements category and product repositories on
// PostgreSQL.
package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"opsboard/internal/core/apperror"
	"opsboard/internal/domain/catalogs/category"
	"opsboard/internal/infrastructure/storage/postgres"
)

const categoryTable = "categories"

var categoryCols = []string{"id", "name", "created_at", "updated_at"}

// builder returns a squirrel builder with PostgreSQL placeholders.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// CategoryRepo implements category.Repository.
type CategoryRepo struct {
	tx *postgres.TxManager
}

func NewCategoryRepo(tx *postgres.TxManager) *CategoryRepo {
	return &CategoryRepo{tx: tx}
}

var _ category.Repository = (*CategoryRepo)(nil)

func (r *CategoryRepo) Create(ctx context.Context, cat *category.Category) error {
	now := time.Now().UTC()
	cat.CreatedAt, cat.UpdatedAt = now, now

	sql, args, err := builder().
		Insert(categoryTable).
		Columns("name", "created_at", "updated_at").
		Values(cat.Name, cat.CreatedAt, cat.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert category: %w", err)
	}

	q := r.tx.GetQuerier(ctx)
	if err := q.QueryRow(ctx, sql, args...).Scan(&cat.ID); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("category", "name", cat.Name)
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepo) Update(ctx context.Context, cat *category.Category) error {
	cat.UpdatedAt = time.Now().UTC()

	sql, args, err := builder().
		Update(categoryTable).
		Set("name", cat.Name).
		Set("updated_at", cat.UpdatedAt).
		Where(squirrel.Eq{"id": cat.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update category: %w", err)
	}

	tag, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("category", "name", cat.Name)
		}
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("category", cat.ID)
	}
	return nil
}

func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	sql, args, err := builder().
		Delete(categoryTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete category: %w", err)
	}

	tag, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "category still has products")
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("category", id)
	}
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id int64) (*category.Category, error) {
	sql, args, err := builder().
		Select(categoryCols...).
		From(categoryTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select category: %w", err)
	}

	var cat category.Category
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), &cat, sql, args...); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("category", id)
		}
		return nil, fmt.Errorf("select category: %w", err)
	}
	return &cat, nil
}

func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*category.Category, error) {
	sql, args, err := builder().
		Select(categoryCols...).
		From(categoryTable).
		Where(squirrel.Eq{"name": name}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select category: %w", err)
	}

	var cat category.Category
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), &cat, sql, args...); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("category", name)
		}
		return nil, fmt.Errorf("select category: %w", err)
	}
	return &cat, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]category.Category, error) {
	sql, args, err := builder().
		Select(categoryCols...).
		From(categoryTable).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list categories: %w", err)
	}

	var cats []category.Category
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &cats, sql, args...); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (r *CategoryRepo) ProductCount(ctx context.Context, id int64) (int, error) {
	sql, args, err := builder().
		Select("COUNT(*)").
		From(productTable).
		Where(squirrel.Eq{"category_id": id}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build product count: %w", err)
	}

	var count int
	if err := r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("product count: %w", err)
	}
	return count, nil
}
