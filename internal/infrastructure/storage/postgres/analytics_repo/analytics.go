// Package analytics_repo implements the reporting queries on
// PostgreSQL. All aggregation happens in SQL; Go only shapes results.
package analytics_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"opsboard/internal/core/types"
	"opsboard/internal/domain/analytics"
	"opsboard/internal/infrastructure/storage/postgres"
)

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// AnalyticsRepo implements analytics.Repository.
type AnalyticsRepo struct {
	tx *postgres.TxManager
}

func NewAnalyticsRepo(tx *postgres.TxManager) *AnalyticsRepo {
	return &AnalyticsRepo{tx: tx}
}

var _ analytics.Repository = (*AnalyticsRepo)(nil)

// filterConds translates an analytics filter into WHERE clauses over
// the sales-products join.
func filterConds(f analytics.Filter) []squirrel.Sqlizer {
	var conds []squirrel.Sqlizer
	if f.StartDate != nil {
		conds = append(conds, squirrel.GtOrEq{"s.sale_date": *f.StartDate})
	}
	if f.EndDate != nil {
		// Inclusive day bound: anything before the next midnight counts.
		conds = append(conds, squirrel.Lt{"s.sale_date": f.EndDate.AddDate(0, 0, 1)})
	}
	if len(f.CategoryIDs) > 0 {
		conds = append(conds, squirrel.Eq{"p.category_id": f.CategoryIDs})
	}
	return conds
}

func (r *AnalyticsRepo) KPIs(ctx context.Context, f analytics.Filter) (analytics.KPIRow, error) {
	q := builder().
		Select(
			"COALESCE(SUM(s.total_price), 0) AS revenue",
			"COUNT(*) AS orders",
			"COALESCE(SUM(s.quantity_sold), 0) AS units_sold",
			"COALESCE(SUM((p.sale_price - p.purchase_price) * s.quantity_sold), 0) AS margin",
		).
		From("sales s").
		Join("products p ON p.id = s.product_id")
	for _, c := range filterConds(f) {
		q = q.Where(c)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return analytics.KPIRow{}, fmt.Errorf("build kpi query: %w", err)
	}

	var row analytics.KPIRow
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), &row, sql, args...); err != nil {
		return analytics.KPIRow{}, fmt.Errorf("kpi query: %w", err)
	}
	return row, nil
}

func (r *AnalyticsRepo) Revenue(ctx context.Context, f analytics.Filter) (types.Money, error) {
	q := builder().
		Select("COALESCE(SUM(s.total_price), 0)").
		From("sales s").
		Join("products p ON p.id = s.product_id")
	for _, c := range filterConds(f) {
		q = q.Where(c)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build revenue query: %w", err)
	}

	var sum types.Money
	if err := r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&sum); err != nil {
		return types.Zero(), fmt.Errorf("revenue query: %w", err)
	}
	return sum, nil
}

func (r *AnalyticsRepo) DailyRevenue(ctx context.Context, f analytics.Filter) ([]analytics.DailyPoint, error) {
	q := builder().
		Select(
			"s.sale_date::date AS sale_date",
			"COALESCE(SUM(s.total_price), 0) AS total",
		).
		From("sales s").
		Join("products p ON p.id = s.product_id").
		GroupBy("s.sale_date::date").
		OrderBy("s.sale_date::date ASC")
	for _, c := range filterConds(f) {
		q = q.Where(c)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build daily revenue: %w", err)
	}

	var rows []analytics.DailyPoint
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("daily revenue: %w", err)
	}
	return rows, nil
}

func (r *AnalyticsRepo) DailySalesCount(ctx context.Context, f analytics.Filter) ([]analytics.DailyCountPoint, error) {
	q := builder().
		Select(
			"s.sale_date::date AS sale_date",
			"COUNT(*) AS count",
		).
		From("sales s").
		Join("products p ON p.id = s.product_id").
		GroupBy("s.sale_date::date").
		OrderBy("s.sale_date::date ASC")
	for _, c := range filterConds(f) {
		q = q.Where(c)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build daily count: %w", err)
	}

	var rows []analytics.DailyCountPoint
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("daily count: %w", err)
	}
	return rows, nil
}

// metricOrder maps a rank metric to its ORDER BY column.
func metricOrder(metric analytics.RankMetric) string {
	if metric == analytics.MetricUnits {
		return "total_units DESC"
	}
	return "total_revenue DESC"
}

func (r *AnalyticsRepo) TopProducts(ctx context.Context, f analytics.Filter, metric analytics.RankMetric, limit int) ([]analytics.ProductRank, error) {
	q := builder().
		Select(
			"s.product_id",
			"p.name",
			"COALESCE(SUM(s.quantity_sold), 0) AS total_units",
			"COALESCE(SUM(s.total_price), 0) AS total_revenue",
		).
		From("sales s").
		Join("products p ON p.id = s.product_id").
		GroupBy("s.product_id", "p.name").
		OrderBy(metricOrder(metric), "s.product_id ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	for _, c := range filterConds(f) {
		q = q.Where(c)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build top products: %w", err)
	}

	var rows []analytics.ProductRank
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return rows, nil
}

func (r *AnalyticsRepo) CategorySales(ctx context.Context, f analytics.Filter, metric analytics.RankMetric, limit int) ([]analytics.CategoryRank, error) {
	q := builder().
		Select(
			"c.id AS category_id",
			"c.name",
			"COALESCE(SUM(s.quantity_sold), 0) AS total_units",
			"COALESCE(SUM(s.total_price), 0) AS total_revenue",
		).
		From("sales s").
		Join("products p ON p.id = s.product_id").
		Join("categories c ON c.id = p.category_id").
		GroupBy("c.id", "c.name").
		OrderBy(metricOrder(metric), "c.id ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	for _, c := range filterConds(f) {
		q = q.Where(c)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build category sales: %w", err)
	}

	var rows []analytics.CategoryRank
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("category sales: %w", err)
	}
	return rows, nil
}

func (r *AnalyticsRepo) RevenueSince(ctx context.Context, since time.Time) (types.Money, error) {
	q := builder().
		Select("COALESCE(SUM(total_price), 0)").
		From("sales")
	if !since.IsZero() {
		q = q.Where(squirrel.GtOrEq{"sale_date": since})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build revenue since: %w", err)
	}

	var sum types.Money
	if err := r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&sum); err != nil {
		return types.Zero(), fmt.Errorf("revenue since: %w", err)
	}
	return sum, nil
}
