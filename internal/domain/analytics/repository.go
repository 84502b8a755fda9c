package analytics

import (
	"context"
	"time"

	"opsboard/internal/core/types"
)

// Repository is the read side of the sales ledger. All aggregates are
// computed in the database; empty result sets come back as zero values,
// never as errors.
type Repository interface {
	// KPIs returns revenue, order count, units sold and current-price
	// margin over the filtered sale set in a single grouped query.
	KPIs(ctx context.Context, f Filter) (KPIRow, error)

	// Revenue returns Σ total_price over the filtered sale set.
	Revenue(ctx context.Context, f Filter) (types.Money, error)

	// DailyRevenue returns one row per calendar date that has at least
	// one sale, ordered by date ascending. Dates with no sales are
	// absent; densification is the caller's job.
	DailyRevenue(ctx context.Context, f Filter) ([]DailyPoint, error)

	// DailySalesCount returns per-date sale counts, same sparseness
	// contract as DailyRevenue.
	DailySalesCount(ctx context.Context, f Filter) ([]DailyCountPoint, error)

	// TopProducts returns at most limit products ordered by the chosen
	// metric descending, product id ascending on ties.
	TopProducts(ctx context.Context, f Filter, metric RankMetric, limit int) ([]ProductRank, error)

	// CategorySales returns per-category totals ordered by the chosen
	// metric descending, category id ascending on ties.
	CategorySales(ctx context.Context, f Filter, metric RankMetric, limit int) ([]CategoryRank, error)

	// RevenueSince returns Σ total_price for sales dated on or after
	// the given date. A zero date means all time.
	RevenueSince(ctx context.Context, since time.Time) (types.Money, error)
}
