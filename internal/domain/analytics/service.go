package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"opsboard/internal/core/apperror"
	"opsboard/internal/core/timeperiod"
	"opsboard/internal/core/types"
	"opsboard/internal/domain/inventory"
	"opsboard/pkg/logger"
)

// validSeriesDays are the accepted trailing-window lengths for daily
// series endpoints.
var validSeriesDays = map[int]struct{}{7: {}, 14: {}, 30: {}, 365: {}}

// Service exposes dashboard aggregates over the sales ledger.
type Service struct {
	repo  Repository
	saved SavedReportRepository

	// now is injectable for deterministic window tests.
	now func() time.Time
}

func NewService(repo Repository, saved SavedReportRepository) *Service {
	return &Service{repo: repo, saved: saved, now: timeperiod.AnchorNow}
}

// KPIs aggregates the filtered sale set and derives the average check
// and margin tone. An empty sale set yields all-zero figures.
func (s *Service) KPIs(ctx context.Context, f Filter) (KPIReport, error) {
	row, err := s.repo.KPIs(ctx, f)
	if err != nil {
		return KPIReport{}, err
	}

	report := KPIReport{
		Revenue:    row.Revenue,
		Orders:     row.Orders,
		UnitsSold:  row.UnitsSold,
		AvgCheck:   types.Zero(),
		Margin:     row.Margin,
		MarginTone: inventory.ClassifyMargin(row.Margin),
	}
	if row.Orders > 0 {
		report.AvgCheck = row.Revenue.Div(decimal.NewFromInt(row.Orders)).Round(2)
	}
	return report, nil
}

// Revenue returns total revenue for the filtered sale set.
func (s *Service) Revenue(ctx context.Context, f Filter) (types.Money, error) {
	return s.repo.Revenue(ctx, f)
}

// DailyRevenue returns a dense per-day revenue series over the trailing
// window of the given length, ending today in the anchor timezone.
// Days with no sales appear as zero points.
func (s *Service) DailyRevenue(ctx context.Context, days int, f Filter) ([]timeperiod.Point[types.Money], error) {
	iv, err := s.trailingWindow(days)
	if err != nil {
		return nil, err
	}
	f.StartDate, f.EndDate = &iv.Start, &iv.End

	rows, err := s.repo.DailyRevenue(ctx, f)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]types.Money, len(rows))
	for _, r := range rows {
		byDay[timeperiod.DayKey(r.Date)] = r.Total
	}
	return timeperiod.AlignSeries(timeperiod.Buckets(iv, timeperiod.Week), byDay), nil
}

// DailySalesCount returns a dense per-day sale-count series, same
// window contract as DailyRevenue.
func (s *Service) DailySalesCount(ctx context.Context, days int, f Filter) ([]timeperiod.Point[int64], error) {
	iv, err := s.trailingWindow(days)
	if err != nil {
		return nil, err
	}
	f.StartDate, f.EndDate = &iv.Start, &iv.End

	rows, err := s.repo.DailySalesCount(ctx, f)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]int64, len(rows))
	for _, r := range rows {
		byDay[timeperiod.DayKey(r.Date)] = r.Count
	}
	return timeperiod.AlignSeries(timeperiod.Buckets(iv, timeperiod.Week), byDay), nil
}

func (s *Service) trailingWindow(days int) (timeperiod.Interval, error) {
	if _, ok := validSeriesDays[days]; !ok {
		return timeperiod.Interval{}, apperror.NewValidation("invalid series window").WithDetail("days", days)
	}
	today := types.DayStart(s.now())
	return timeperiod.Interval{Start: today.AddDate(0, 0, -(days - 1)), End: today}, nil
}

// TopProducts returns the best-selling products by the chosen metric.
// Ties are broken by product id ascending so rankings are stable.
// A zero limit returns every ranked product.
func (s *Service) TopProducts(ctx context.Context, f Filter, metric RankMetric, limit int) ([]ProductRank, error) {
	limit, err := clampLimit(limit)
	if err != nil {
		return nil, err
	}
	return s.repo.TopProducts(ctx, f, metric, limit)
}

// CategorySales returns per-category totals by the chosen metric.
// A zero limit returns every category.
func (s *Service) CategorySales(ctx context.Context, f Filter, metric RankMetric, limit int) ([]CategoryRank, error) {
	limit, err := clampLimit(limit)
	if err != nil {
		return nil, err
	}
	return s.repo.CategorySales(ctx, f, metric, limit)
}

// clampLimit validates a group limit. Zero means no limit at all; a
// negative limit is a caller error, not something to coerce.
func clampLimit(limit int) (int, error) {
	if limit < 0 {
		return 0, apperror.NewValidation("limit must not be negative").WithDetail("limit", limit)
	}
	return limit, nil
}

// Turnover computes revenue over five calendar windows anchored at the
// current moment in the anchor timezone: today, the week starting on
// Monday, the current month, the current year, and all time.
func (s *Service) Turnover(ctx context.Context) (Turnover, error) {
	now := s.now()
	today := types.DayStart(now)

	windows := []struct {
		name  string
		since time.Time
		dst   func(*Turnover) *types.Money
	}{
		{"day", today, func(t *Turnover) *types.Money { return &t.Day }},
		{"week", timeperiod.Resolve(timeperiod.Week, now).Start, func(t *Turnover) *types.Money { return &t.Week }},
		{"month", timeperiod.Resolve(timeperiod.Month, now).Start, func(t *Turnover) *types.Money { return &t.Month }},
		{"year", timeperiod.Resolve(timeperiod.Year, now).Start, func(t *Turnover) *types.Money { return &t.Year }},
		{"allTime", time.Time{}, func(t *Turnover) *types.Money { return &t.AllTime }},
	}

	var out Turnover
	for _, w := range windows {
		sum, err := s.repo.RevenueSince(ctx, w.since)
		if err != nil {
			logger.Error(ctx, "turnover window failed", "window", w.name, "error", err)
			return Turnover{}, err
		}
		*w.dst(&out) = sum
	}
	return out, nil
}
