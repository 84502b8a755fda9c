package analytics

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsboard/internal/core/apperror"
	"opsboard/internal/core/timeperiod"
	"opsboard/internal/core/types"
	"opsboard/internal/domain/inventory"
)

type saleRow struct {
	productID   int64
	categoryID  int64
	productName string
	date        time.Time
	qty         int64
	total       types.Money
	margin      types.Money
}

// fakeRepo aggregates an in-memory sale list the way the SQL side does,
// including the metric-desc, id-asc ordering contract.
type fakeRepo struct {
	rows []saleRow
}

func (r *fakeRepo) matching(f Filter) []saleRow {
	var out []saleRow
	for _, row := range r.rows {
		if f.StartDate != nil && types.DayStart(row.date).Before(types.DayStart(*f.StartDate)) {
			continue
		}
		if f.EndDate != nil && types.DayStart(row.date).After(types.DayStart(*f.EndDate)) {
			continue
		}
		if len(f.CategoryIDs) > 0 {
			found := false
			for _, id := range f.CategoryIDs {
				if id == row.categoryID {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, row)
	}
	return out
}

func (r *fakeRepo) KPIs(_ context.Context, f Filter) (KPIRow, error) {
	row := KPIRow{Revenue: types.Zero(), Margin: types.Zero()}
	for _, s := range r.matching(f) {
		row.Revenue = row.Revenue.Add(s.total)
		row.Margin = row.Margin.Add(s.margin)
		row.Orders++
		row.UnitsSold += s.qty
	}
	return row, nil
}

func (r *fakeRepo) Revenue(_ context.Context, f Filter) (types.Money, error) {
	sum := types.Zero()
	for _, s := range r.matching(f) {
		sum = sum.Add(s.total)
	}
	return sum, nil
}

func (r *fakeRepo) DailyRevenue(_ context.Context, f Filter) ([]DailyPoint, error) {
	byDay := map[string]*DailyPoint{}
	for _, s := range r.matching(f) {
		key := timeperiod.DayKey(s.date)
		if p, ok := byDay[key]; ok {
			p.Total = p.Total.Add(s.total)
		} else {
			byDay[key] = &DailyPoint{Date: types.DayStart(s.date), Total: s.total}
		}
	}
	var out []DailyPoint
	for _, p := range byDay {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *fakeRepo) DailySalesCount(_ context.Context, f Filter) ([]DailyCountPoint, error) {
	byDay := map[string]*DailyCountPoint{}
	for _, s := range r.matching(f) {
		key := timeperiod.DayKey(s.date)
		if p, ok := byDay[key]; ok {
			p.Count++
		} else {
			byDay[key] = &DailyCountPoint{Date: types.DayStart(s.date), Count: 1}
		}
	}
	var out []DailyCountPoint
	for _, p := range byDay {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *fakeRepo) TopProducts(_ context.Context, f Filter, metric RankMetric, limit int) ([]ProductRank, error) {
	byID := map[int64]*ProductRank{}
	for _, s := range r.matching(f) {
		p, ok := byID[s.productID]
		if !ok {
			p = &ProductRank{ProductID: s.productID, Name: s.productName, TotalRevenue: types.Zero()}
			byID[s.productID] = p
		}
		p.TotalUnits += s.qty
		p.TotalRevenue = p.TotalRevenue.Add(s.total)
	}
	var out []ProductRank
	for _, p := range byID {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		var cmp int
		if metric == MetricUnits {
			cmp = int(out[i].TotalUnits - out[j].TotalUnits)
		} else {
			cmp = out[i].TotalRevenue.Cmp(out[j].TotalRevenue)
		}
		if cmp != 0 {
			return cmp > 0
		}
		return out[i].ProductID < out[j].ProductID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) CategorySales(_ context.Context, f Filter, metric RankMetric, limit int) ([]CategoryRank, error) {
	byID := map[int64]*CategoryRank{}
	for _, s := range r.matching(f) {
		c, ok := byID[s.categoryID]
		if !ok {
			c = &CategoryRank{CategoryID: s.categoryID, TotalRevenue: types.Zero()}
			byID[s.categoryID] = c
		}
		c.TotalUnits += s.qty
		c.TotalRevenue = c.TotalRevenue.Add(s.total)
	}
	var out []CategoryRank
	for _, c := range byID {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		var cmp int
		if metric == MetricUnits {
			cmp = int(out[i].TotalUnits - out[j].TotalUnits)
		} else {
			cmp = out[i].TotalRevenue.Cmp(out[j].TotalRevenue)
		}
		if cmp != 0 {
			return cmp > 0
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) RevenueSince(_ context.Context, since time.Time) (types.Money, error) {
	sum := types.Zero()
	for _, s := range r.rows {
		if !since.IsZero() && s.date.Before(since) {
			continue
		}
		sum = sum.Add(s.total)
	}
	return sum, nil
}

type fakeSavedRepo struct {
	created []*SavedReport
}

func (r *fakeSavedRepo) Create(_ context.Context, rep *SavedReport) error {
	r.created = append(r.created, rep)
	return nil
}

func (r *fakeSavedRepo) GetByID(_ context.Context, id uuid.UUID) (*SavedReport, error) {
	for _, rep := range r.created {
		if rep.ID == id {
			return rep, nil
		}
	}
	return nil, apperror.NewNotFound("report", id)
}

func (r *fakeSavedRepo) List(_ context.Context, limit, offset int) ([]SavedReport, error) {
	var out []SavedReport
	for i := len(r.created) - 1; i >= 0; i-- {
		out = append(out, *r.created[i])
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSavedRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, rep := range r.created {
		if rep.ID == id {
			r.created = append(r.created[:i], r.created[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFound("report", id)
}

func newTestService(rows []saleRow, now time.Time) (*Service, *fakeSavedRepo) {
	saved := &fakeSavedRepo{}
	svc := NewService(&fakeRepo{rows: rows}, saved)
	svc.now = func() time.Time { return now }
	return svc, saved
}

var anchorNow = time.Date(2026, time.August, 12, 15, 30, 0, 0, timeperiod.AnchorZone())

func day(d int) time.Time {
	return time.Date(2026, time.August, d, 12, 0, 0, 0, timeperiod.AnchorZone())
}

func TestKPIs_EmptySetYieldsZeros(t *testing.T) {
	svc, _ := newTestService(nil, anchorNow)

	report, err := svc.KPIs(context.Background(), Filter{})
	require.NoError(t, err)

	assert.True(t, report.Revenue.IsZero())
	assert.Zero(t, report.Orders)
	assert.Zero(t, report.UnitsSold)
	assert.True(t, report.AvgCheck.IsZero())
	assert.Equal(t, inventory.MarginProfit, report.MarginTone)
}

func TestKPIs_DerivesAvgCheckAndTone(t *testing.T) {
	rows := []saleRow{
		{productID: 1, categoryID: 1, date: day(10), qty: 2, total: types.MustMoney("200"), margin: types.MustMoney("40")},
		{productID: 2, categoryID: 1, date: day(11), qty: 1, total: types.MustMoney("100"), margin: types.MustMoney("-90")},
	}
	svc, _ := newTestService(rows, anchorNow)

	report, err := svc.KPIs(context.Background(), Filter{})
	require.NoError(t, err)

	assert.True(t, report.Revenue.Equal(types.MustMoney("300")))
	assert.Equal(t, int64(2), report.Orders)
	assert.Equal(t, int64(3), report.UnitsSold)
	assert.True(t, report.AvgCheck.Equal(types.MustMoney("150")))
	assert.True(t, report.Margin.Equal(types.MustMoney("-50")))
	assert.Equal(t, inventory.MarginLoss, report.MarginTone)
}

func TestKPIs_CategoryFilter(t *testing.T) {
	rows := []saleRow{
		{productID: 1, categoryID: 1, date: day(10), qty: 1, total: types.MustMoney("100"), margin: types.MustMoney("10")},
		{productID: 2, categoryID: 2, date: day(10), qty: 1, total: types.MustMoney("50"), margin: types.MustMoney("5")},
	}
	svc, _ := newTestService(rows, anchorNow)

	report, err := svc.KPIs(context.Background(), Filter{CategoryIDs: []int64{2}})
	require.NoError(t, err)

	assert.True(t, report.Revenue.Equal(types.MustMoney("50")))
	assert.Equal(t, int64(1), report.Orders)
}

func TestTopProducts_TieBreakAndLimit(t *testing.T) {
	rows := []saleRow{
		{productID: 1, productName: "A", categoryID: 1, date: day(10), qty: 1, total: types.MustMoney("100")},
		{productID: 2, productName: "B", categoryID: 1, date: day(10), qty: 1, total: types.MustMoney("300")},
		{productID: 3, productName: "C", categoryID: 1, date: day(10), qty: 1, total: types.MustMoney("200")},
	}
	svc, _ := newTestService(rows, anchorNow)

	top, err := svc.TopProducts(context.Background(), Filter{}, MetricRevenue, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "B", top[0].Name)
	assert.Equal(t, "C", top[1].Name)
}

func TestTopProducts_EqualMetricOrdersByID(t *testing.T) {
	rows := []saleRow{
		{productID: 9, productName: "late", categoryID: 1, date: day(10), qty: 1, total: types.MustMoney("100")},
		{productID: 2, productName: "early", categoryID: 1, date: day(10), qty: 1, total: types.MustMoney("100")},
	}
	svc, _ := newTestService(rows, anchorNow)

	top, err := svc.TopProducts(context.Background(), Filter{}, MetricRevenue, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(2), top[0].ProductID)
	assert.Equal(t, int64(9), top[1].ProductID)
}

func TestTopProducts_UnitsMetric(t *testing.T) {
	rows := []saleRow{
		{productID: 1, productName: "cheap-bulk", categoryID: 1, date: day(10), qty: 10, total: types.MustMoney("50")},
		{productID: 2, productName: "pricey-single", categoryID: 1, date: day(10), qty: 1, total: types.MustMoney("900")},
	}
	svc, _ := newTestService(rows, anchorNow)

	top, err := svc.TopProducts(context.Background(), Filter{}, MetricUnits, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "cheap-bulk", top[0].Name)
}

func TestDailyRevenue_DensifiesWindow(t *testing.T) {
	// Window is 2026-08-06 .. 2026-08-12; only two days have sales.
	rows := []saleRow{
		{productID: 1, categoryID: 1, date: day(7), qty: 1, total: types.MustMoney("100")},
		{productID: 1, categoryID: 1, date: day(7), qty: 1, total: types.MustMoney("50")},
		{productID: 1, categoryID: 1, date: day(12), qty: 1, total: types.MustMoney("25")},
	}
	svc, _ := newTestService(rows, anchorNow)

	series, err := svc.DailyRevenue(context.Background(), 7, Filter{})
	require.NoError(t, err)
	require.Len(t, series, 7)

	assert.Equal(t, "2026-08-06", series[0].Key)
	assert.Equal(t, "2026-08-12", series[6].Key)
	assert.True(t, series[1].Value.Equal(types.MustMoney("150")), "08-07 sums both sales")
	assert.True(t, series[6].Value.Equal(types.MustMoney("25")))
	for _, i := range []int{0, 2, 3, 4, 5} {
		assert.True(t, series[i].Value.IsZero(), "quiet day %s must be zero-filled", series[i].Key)
	}
}

func TestDailyRevenue_ExcludesSalesOutsideWindow(t *testing.T) {
	rows := []saleRow{
		{productID: 1, categoryID: 1, date: day(1), qty: 1, total: types.MustMoney("999")},
	}
	svc, _ := newTestService(rows, anchorNow)

	series, err := svc.DailyRevenue(context.Background(), 7, Filter{})
	require.NoError(t, err)
	for _, p := range series {
		assert.True(t, p.Value.IsZero())
	}
}

func TestDailyRevenue_RejectsArbitraryWindow(t *testing.T) {
	svc, _ := newTestService(nil, anchorNow)

	_, err := svc.DailyRevenue(context.Background(), 13, Filter{})
	assert.Error(t, err)
}

func TestDailySalesCount_CountsPerDay(t *testing.T) {
	rows := []saleRow{
		{productID: 1, categoryID: 1, date: day(12), qty: 1, total: types.MustMoney("10")},
		{productID: 2, categoryID: 1, date: day(12), qty: 3, total: types.MustMoney("30")},
	}
	svc, _ := newTestService(rows, anchorNow)

	series, err := svc.DailySalesCount(context.Background(), 7, Filter{})
	require.NoError(t, err)
	require.Len(t, series, 7)
	assert.Equal(t, int64(2), series[6].Value)
}

func TestTurnover_CalendarWindows(t *testing.T) {
	// anchorNow is Wednesday 2026-08-12, so the week window opens on
	// Monday 2026-08-10, the month on 2026-08-01 and the year on
	// 2026-01-01. day(9) is the Sunday just before the week boundary.
	rows := []saleRow{
		{productID: 1, categoryID: 1, date: anchorNow.Add(-2 * time.Hour), qty: 1, total: types.MustMoney("10")},
		{productID: 1, categoryID: 1, date: day(11), qty: 1, total: types.MustMoney("20")},
		{productID: 1, categoryID: 1, date: day(9), qty: 1, total: types.MustMoney("40")},
		{productID: 1, categoryID: 1, date: time.Date(2026, time.March, 1, 12, 0, 0, 0, timeperiod.AnchorZone()), qty: 1, total: types.MustMoney("80")},
		{productID: 1, categoryID: 1, date: time.Date(2023, time.May, 1, 12, 0, 0, 0, timeperiod.AnchorZone()), qty: 1, total: types.MustMoney("160")},
	}
	svc, _ := newTestService(rows, anchorNow)

	tv, err := svc.Turnover(context.Background())
	require.NoError(t, err)

	assert.True(t, tv.Day.Equal(types.MustMoney("10")))
	assert.True(t, tv.Week.Equal(types.MustMoney("30")))
	assert.True(t, tv.Month.Equal(types.MustMoney("70")))
	assert.True(t, tv.Year.Equal(types.MustMoney("150")))
	assert.True(t, tv.AllTime.Equal(types.MustMoney("310")))

	assert.True(t, tv.Day.LessThanOrEqual(tv.Week))
	assert.True(t, tv.Week.LessThanOrEqual(tv.Month))
	assert.True(t, tv.Month.LessThanOrEqual(tv.Year))
	assert.True(t, tv.Year.LessThanOrEqual(tv.AllTime))
}

func TestTopProducts_ZeroLimitReturnsAll(t *testing.T) {
	var rows []saleRow
	for i := int64(1); i <= 60; i++ {
		rows = append(rows, saleRow{
			productID:  i,
			categoryID: 1,
			date:       day(10),
			qty:        1,
			total:      decimal.NewFromInt(i),
		})
	}
	svc, _ := newTestService(rows, anchorNow)

	top, err := svc.TopProducts(context.Background(), Filter{}, MetricRevenue, 0)
	require.NoError(t, err)
	assert.Len(t, top, 60)

	top, err = svc.TopProducts(context.Background(), Filter{}, MetricRevenue, 10)
	require.NoError(t, err)
	assert.Len(t, top, 10)

	_, err = svc.TopProducts(context.Background(), Filter{}, MetricRevenue, -1)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestSaveReport_SnapshotsCurrentAggregate(t *testing.T) {
	rows := []saleRow{
		{productID: 1, categoryID: 1, date: day(10), qty: 1, total: types.MustMoney("100"), margin: types.MustMoney("10")},
	}
	svc, saved := newTestService(rows, anchorNow)

	report, err := svc.SaveReport(context.Background(), SaveReportInput{
		Kind:  ReportKPI,
		Title: "august kpis",
	})
	require.NoError(t, err)
	require.Len(t, saved.created, 1)
	assert.Equal(t, ReportKPI, report.Kind)
	assert.NotEmpty(t, report.Snapshot)
	assert.NotEqual(t, uuid.Nil, report.ID)
}

func TestSaveReport_RequiresTitle(t *testing.T) {
	svc, saved := newTestService(nil, anchorNow)

	_, err := svc.SaveReport(context.Background(), SaveReportInput{Kind: ReportKPI})
	assert.Error(t, err)
	assert.Empty(t, saved.created)
}

func TestParseRankMetric(t *testing.T) {
	m, err := ParseRankMetric("")
	require.NoError(t, err)
	assert.Equal(t, MetricRevenue, m)

	m, err = ParseRankMetric("units")
	require.NoError(t, err)
	assert.Equal(t, MetricUnits, m)

	_, err = ParseRankMetric("profit")
	assert.Error(t, err)
}
