package timeperiod

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, iv Interval, g Token) []Bucket {
	t.Helper()
	var out []Bucket
	for b := range Buckets(iv, g) {
		out = append(out, b)
	}
	return out
}

func TestBuckets_DayEmits24HourSlots(t *testing.T) {
	iv := Resolve(Day, wednesday)
	buckets := collect(t, iv, Day)

	require.Len(t, buckets, 24)
	assert.Equal(t, "00", buckets[0].Key)
	assert.Equal(t, "23", buckets[23].Key)
	assert.Equal(t, "09:00", buckets[9].Label)
}

func TestBuckets_WeekEmitsSevenDays(t *testing.T) {
	iv := Resolve(Week, wednesday)
	buckets := collect(t, iv, Week)

	require.Len(t, buckets, 7)
	assert.Equal(t, "2026-08-10", buckets[0].Key)
	assert.Equal(t, "2026-08-16", buckets[6].Key)
}

func TestBuckets_YearEmitsTwelveMonths(t *testing.T) {
	// Bounds that do not span a full year still produce 12 month buckets.
	iv := ResolveRange(
		time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.June, 5, 0, 0, 0, 0, time.UTC),
	)
	buckets := collect(t, iv, Year)

	require.Len(t, buckets, 12)
	assert.Equal(t, "2026-01", buckets[0].Key)
	assert.Equal(t, "2026-12", buckets[11].Key)
}

func TestBuckets_Restartable(t *testing.T) {
	seq := Buckets(Resolve(Week, wednesday), Week)

	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}

	assert.Equal(t, 7, first)
	assert.Equal(t, 7, second)
}

func TestAlignSeries_ZeroFillsMissingBuckets(t *testing.T) {
	iv := Resolve(Week, wednesday)
	rows := map[string]decimal.Decimal{
		"2026-08-11": decimal.NewFromInt(150),
		"2026-08-14": decimal.NewFromInt(90),
	}

	series := AlignSeries(Buckets(iv, Week), rows)

	require.Len(t, series, 7)
	assert.True(t, series[0].Value.IsZero())
	assert.True(t, series[1].Value.Equal(decimal.NewFromInt(150)))
	assert.True(t, series[4].Value.Equal(decimal.NewFromInt(90)))
	assert.True(t, series[6].Value.IsZero())
}

func TestAlignSeries_AllZeroSeriesKeepsEveryBucket(t *testing.T) {
	series := AlignSeries(Buckets(Resolve(Day, wednesday), Day), map[string]int{})

	require.Len(t, series, 24)
	for _, p := range series {
		assert.Zero(t, p.Value)
	}
}
