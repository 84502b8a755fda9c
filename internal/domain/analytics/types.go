// Package analytics provides sales reporting: KPI aggregation, top-N
// rankings, trailing turnover windows, and dense daily series.
package analytics

import (
	"time"

	"opsboard/internal/core/apperror"
	"opsboard/internal/core/types"
	"opsboard/internal/domain/inventory"
)

// Filter restricts aggregation to a date window and category set.
// Nil dates leave that side of the window open; an empty category set
// applies no category restriction.
type Filter struct {
	// StartDate and EndDate are inclusive, date-only bounds.
	StartDate *time.Time
	EndDate   *time.Time

	// CategoryIDs restricts sales to products in these categories.
	CategoryIDs []int64
}

// KPIReport is the single-pass aggregate over a filtered sale set.
type KPIReport struct {
	Revenue   types.Money `json:"revenue"`
	Orders    int64       `json:"orders"`
	UnitsSold int64       `json:"unitsSold"`
	AvgCheck  types.Money `json:"avgCheck"`

	// Margin is Σ (salePrice − purchasePrice) × quantity using the
	// product's current prices, not the prices at sale time. A deliberate
	// simplification that must be preserved: reported figures would change
	// if margins were snapshotted historically.
	Margin     types.Money          `json:"margin"`
	MarginTone inventory.MarginTone `json:"marginTone"`
}

// KPIRow is the raw grouped-query output before derived fields.
type KPIRow struct {
	Revenue   types.Money `db:"revenue"`
	Orders    int64       `db:"orders"`
	UnitsSold int64       `db:"units_sold"`
	Margin    types.Money `db:"margin"`
}

// Turnover is revenue over trailing windows anchored at "now" in the
// anchor timezone.
type Turnover struct {
	Day     types.Money `json:"day"`
	Week    types.Money `json:"week"`
	Month   types.Money `json:"month"`
	Year    types.Money `json:"year"`
	AllTime types.Money `json:"allTime"`
}

// RankMetric selects the ordering for top-N rankings.
type RankMetric string

const (
	MetricRevenue RankMetric = "revenue"
	MetricUnits   RankMetric = "units"
)

// ParseRankMetric validates a metric string, defaulting to revenue.
func ParseRankMetric(s string) (RankMetric, error) {
	switch s {
	case "", string(MetricRevenue):
		return MetricRevenue, nil
	case string(MetricUnits):
		return MetricUnits, nil
	}
	return "", apperror.NewValidation("invalid ranking metric").WithDetail("metric", s)
}

// ProductRank is one top-N row grouped by product.
type ProductRank struct {
	ProductID    int64       `db:"product_id" json:"productId"`
	Name         string      `db:"name" json:"name"`
	TotalUnits   int64       `db:"total_units" json:"totalUnits"`
	TotalRevenue types.Money `db:"total_revenue" json:"totalRevenue"`
}

// CategoryRank is one top-N row grouped by category.
type CategoryRank struct {
	CategoryID   int64       `db:"category_id" json:"categoryId"`
	Name         string      `db:"name" json:"name"`
	TotalUnits   int64       `db:"total_units" json:"totalUnits"`
	TotalRevenue types.Money `db:"total_revenue" json:"totalRevenue"`
}

// DailyPoint is one date's summed revenue.
type DailyPoint struct {
	Date  time.Time   `db:"sale_date" json:"date"`
	Total types.Money `db:"total" json:"total"`
}

// DailyCountPoint is one date's sale count.
type DailyCountPoint struct {
	Date  time.Time `db:"sale_date" json:"date"`
	Count int64     `db:"count" json:"count"`
}
