package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"opsboard/internal/core/apperror"
	"opsboard/internal/domain/catalogs/product"
	"opsboard/internal/infrastructure/storage/postgres"
)

const productTable = "products"

var productCols = []string{
	"id", "name", "category_id", "article_number",
	"purchase_price", "sale_price", "remains", "min_stock",
	"created_at", "updated_at",
}

// ProductRepo implements product.Repository.
type ProductRepo struct {
	tx *postgres.TxManager
}

func NewProductRepo(tx *postgres.TxManager) *ProductRepo {
	return &ProductRepo{tx: tx}
}

var _ product.Repository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	sql, args, err := builder().
		Insert(productTable).
		Columns("name", "category_id", "article_number",
			"purchase_price", "sale_price", "remains", "min_stock",
			"created_at", "updated_at").
		Values(p.Name, p.CategoryID, p.ArticleNumber,
			p.PurchasePrice, p.SalePrice, p.Remains, p.MinStock,
			p.CreatedAt, p.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert product: %w", err)
	}

	if err := r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&p.ID); err != nil {
		switch {
		case postgres.IsUniqueViolation(err):
			return apperror.NewDuplicate("product", "article_number", p.ArticleNumber)
		case postgres.IsForeignKeyViolation(err):
			return apperror.NewNotFound("category", p.CategoryID)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	p.UpdatedAt = time.Now().UTC()

	sql, args, err := builder().
		Update(productTable).
		Set("name", p.Name).
		Set("category_id", p.CategoryID).
		Set("article_number", p.ArticleNumber).
		Set("purchase_price", p.PurchasePrice).
		Set("sale_price", p.SalePrice).
		Set("min_stock", p.MinStock).
		Set("updated_at", p.UpdatedAt).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update product: %w", err)
	}

	tag, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		switch {
		case postgres.IsUniqueViolation(err):
			return apperror.NewDuplicate("product", "article_number", p.ArticleNumber)
		case postgres.IsForeignKeyViolation(err):
			return apperror.NewNotFound("category", p.CategoryID)
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", p.ID)
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	sql, args, err := builder().
		Delete(productTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete product: %w", err)
	}

	tag, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "product has recorded sales")
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", id)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, id, "")
}

func (r *ProductRepo) FindByArticle(ctx context.Context, article string) (*product.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"article_number": article}, article, "")
}

// GetForUpdate locks the product row for the enclosing transaction.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*product.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, id, "FOR UPDATE")
}

func (r *ProductRepo) getOne(ctx context.Context, where squirrel.Eq, key any, suffix string) (*product.Product, error) {
	q := builder().
		Select(productCols...).
		From(productTable).
		Where(where).
		Limit(1)
	if suffix != "" {
		q = q.Suffix(suffix)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select product: %w", err)
	}

	var p product.Product
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), &p, sql, args...); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("product", key)
		}
		return nil, fmt.Errorf("select product: %w", err)
	}
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context, f product.ListFilter) (product.ListResult, error) {
	base := builder().
		Select(productCols...).
		From(productTable)
	countQ := builder().
		Select("COUNT(*)").
		From(productTable)

	conds := r.listConds(f)
	for _, c := range conds {
		base = base.Where(c)
		countQ = countQ.Where(c)
	}

	base = base.OrderBy("name ASC", "id ASC")
	if f.Limit > 0 {
		base = base.Limit(uint64(f.Limit)).Offset(uint64(max(f.Offset, 0)))
	}

	sql, args, err := base.ToSql()
	if err != nil {
		return product.ListResult{}, fmt.Errorf("build list products: %w", err)
	}

	var items []product.Product
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &items, sql, args...); err != nil {
		return product.ListResult{}, fmt.Errorf("list products: %w", err)
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return product.ListResult{}, fmt.Errorf("build count products: %w", err)
	}
	var total int
	if err := r.tx.GetQuerier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return product.ListResult{}, fmt.Errorf("count products: %w", err)
	}

	return product.ListResult{Items: items, TotalCount: total}, nil
}

func (r *ProductRepo) listConds(f product.ListFilter) []squirrel.Sqlizer {
	var conds []squirrel.Sqlizer
	if f.CategoryID != nil {
		conds = append(conds, squirrel.Eq{"category_id": *f.CategoryID})
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		conds = append(conds, squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"article_number": pattern},
		})
	}
	if f.LowStockOnly {
		// In stock but at or below the effective threshold; items with no
		// explicit min_stock fall back to the global one.
		conds = append(conds,
			squirrel.Gt{"remains": 0},
			squirrel.Expr("remains <= COALESCE(min_stock, ?)", f.Threshold),
		)
	}
	return conds
}

// AdjustStock applies delta to remains. The guard rejects adjustments
// that would drive remains negative even if the caller skipped the
// row-lock read.
func (r *ProductRepo) AdjustStock(ctx context.Context, id int64, delta int) error {
	sql, args, err := builder().
		Update(productTable).
		Set("remains", squirrel.Expr("remains + ?", delta)).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Expr("remains + ? >= 0", delta)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build adjust stock: %w", err)
	}

	tag, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if postgres.IsCheckViolation(err) {
			return apperror.NewInsufficientStock(id, -delta, 0)
		}
		return fmt.Errorf("adjust stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewInsufficientStock(id, -delta, 0)
	}
	return nil
}

func (r *ProductRepo) UpdateMinStock(ctx context.Context, id int64, minStock *int) error {
	sql, args, err := builder().
		Update(productTable).
		Set("min_stock", minStock).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update min stock: %w", err)
	}

	tag, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update min stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", id)
	}
	return nil
}
