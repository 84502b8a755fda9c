// Package sale_repo implements the sale repository on PostgreSQL.
package sale_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"opsboard/internal/core/apperror"
	"opsboard/internal/domain/sales"
	"opsboard/internal/infrastructure/storage/postgres"
)

const saleTable = "sales"

var saleCols = []string{
	"id", "sale_date", "product_id", "quantity_sold", "total_price",
	"created_at", "updated_at",
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// SaleRepo implements sales.Repository.
type SaleRepo struct {
	tx *postgres.TxManager
}

func NewSaleRepo(tx *postgres.TxManager) *SaleRepo {
	return &SaleRepo{tx: tx}
}

var _ sales.Repository = (*SaleRepo)(nil)

func (r *SaleRepo) Create(ctx context.Context, sale *sales.Sale) error {
	now := time.Now().UTC()
	sale.CreatedAt, sale.UpdatedAt = now, now

	sql, args, err := builder().
		Insert(saleTable).
		Columns("sale_date", "product_id", "quantity_sold", "total_price",
			"created_at", "updated_at").
		Values(sale.SaleDate, sale.ProductID, sale.QuantitySold, sale.TotalPrice,
			sale.CreatedAt, sale.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert sale: %w", err)
	}

	if err := r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&sale.ID); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewNotFound("product", sale.ProductID)
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (r *SaleRepo) Update(ctx context.Context, sale *sales.Sale) error {
	sale.UpdatedAt = time.Now().UTC()

	sql, args, err := builder().
		Update(saleTable).
		Set("sale_date", sale.SaleDate).
		Set("quantity_sold", sale.QuantitySold).
		Set("total_price", sale.TotalPrice).
		Set("updated_at", sale.UpdatedAt).
		Where(squirrel.Eq{"id": sale.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update sale: %w", err)
	}

	tag, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", sale.ID)
	}
	return nil
}

func (r *SaleRepo) Delete(ctx context.Context, id int64) error {
	sql, args, err := builder().
		Delete(saleTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete sale: %w", err)
	}

	tag, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", id)
	}
	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, id int64) (*sales.Sale, error) {
	sql, args, err := builder().
		Select(saleCols...).
		From(saleTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select sale: %w", err)
	}

	var sale sales.Sale
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), &sale, sql, args...); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("sale", id)
		}
		return nil, fmt.Errorf("select sale: %w", err)
	}
	return &sale, nil
}

func (r *SaleRepo) List(ctx context.Context, f sales.ListFilter) (sales.ListResult, error) {
	base := builder().Select(saleCols...).From(saleTable)
	countQ := builder().Select("COUNT(*)").From(saleTable)

	var conds []squirrel.Sqlizer
	if f.FromDate != nil {
		conds = append(conds, squirrel.GtOrEq{"sale_date": *f.FromDate})
	}
	if f.ToDate != nil {
		conds = append(conds, squirrel.LtOrEq{"sale_date": *f.ToDate})
	}
	if f.ProductID != nil {
		conds = append(conds, squirrel.Eq{"product_id": *f.ProductID})
	}
	for _, c := range conds {
		base = base.Where(c)
		countQ = countQ.Where(c)
	}

	base = base.OrderBy("sale_date DESC", "id DESC")
	if f.Limit > 0 {
		base = base.Limit(uint64(f.Limit)).Offset(uint64(max(f.Offset, 0)))
	}

	sql, args, err := base.ToSql()
	if err != nil {
		return sales.ListResult{}, fmt.Errorf("build list sales: %w", err)
	}
	var items []sales.Sale
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &items, sql, args...); err != nil {
		return sales.ListResult{}, fmt.Errorf("list sales: %w", err)
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return sales.ListResult{}, fmt.Errorf("build count sales: %w", err)
	}
	var total int
	if err := r.tx.GetQuerier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return sales.ListResult{}, fmt.Errorf("count sales: %w", err)
	}

	return sales.ListResult{Items: items, TotalCount: total}, nil
}
