package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsboard/internal/core/timeperiod"
)

func TestParseCategoryIDs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []int64
	}{
		{"empty", "", nil},
		{"single", "7", []int64{7}},
		{"list", "1,2,3", []int64{1, 2, 3}},
		{"spaces", " 1 , 2 ", []int64{1, 2}},
		{"drops malformed", "1,abc,3", []int64{1, 3}},
		{"drops negative and zero", "-5,0,4", []int64{4}},
		{"all malformed", "x,y", []int64{}},
		{"trailing comma", "1,2,", []int64{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCategoryIDs(tt.raw))
		})
	}
}

func TestAnalyticsQueryFilter(t *testing.T) {
	q := AnalyticsQuery{
		StartDate:  "2026-08-01",
		EndDate:    "2026-08-15",
		Categories: "2,junk,5",
	}

	f, err := q.Filter()
	require.NoError(t, err)

	assert.Equal(t, []int64{2, 5}, f.CategoryIDs)
	require.NotNil(t, f.StartDate)
	require.NotNil(t, f.EndDate)
	assert.Equal(t, time.August, f.StartDate.Month())
	assert.Equal(t, 15, f.EndDate.Day())
	assert.Equal(t, timeperiod.AnchorZone(), f.StartDate.Location())
}

func TestAnalyticsQueryFilterBadDate(t *testing.T) {
	q := AnalyticsQuery{StartDate: "15.08.2026"}
	_, err := q.Filter()
	assert.Error(t, err)
}

func TestPeriodQueryDefaultsToDay(t *testing.T) {
	now := time.Date(2026, 8, 12, 15, 0, 0, 0, timeperiod.AnchorZone())

	var q PeriodQuery
	token, iv, err := q.Interval(now)
	require.NoError(t, err)

	assert.Equal(t, timeperiod.Day, token)
	assert.Equal(t, now.Year(), iv.Start.Year())
	assert.True(t, iv.Contains(now))
}

func TestPeriodQueryRangeRequiresBounds(t *testing.T) {
	now := timeperiod.AnchorNow()

	q := PeriodQuery{Period: "range"}
	_, _, err := q.Interval(now)
	assert.Error(t, err)

	q = PeriodQuery{Period: "range", From: "2026-08-01", To: "2026-08-10"}
	token, iv, err := q.Interval(now)
	require.NoError(t, err)
	assert.Equal(t, timeperiod.Range, token)
	assert.Equal(t, 1, iv.Start.Day())
	assert.Equal(t, 10, iv.End.Day())
}

func TestPeriodQueryUnknownToken(t *testing.T) {
	q := PeriodQuery{Period: "fortnight"}
	_, _, err := q.Interval(timeperiod.AnchorNow())
	assert.Error(t, err)
}

func TestSeriesQueryDefaults(t *testing.T) {
	var q SeriesQuery
	q.Defaults()
	assert.Equal(t, 7, q.Days)

	q = SeriesQuery{Days: 30}
	q.Defaults()
	assert.Equal(t, 30, q.Days)
}
