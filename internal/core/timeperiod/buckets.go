package timeperiod

import (
	"fmt"
	"iter"
	"time"
)

// Bucket is one fixed-width slot on a dense timeline. Key is stable and
// used to join sparse aggregate rows; Label is what charts display.
type Bucket struct {
	Key   string
	Label string
	Start time.Time
}

// Keys used to join aggregate rows onto buckets.
const (
	hourKeyLayout  = "15"
	dayKeyLayout   = "2006-01-02"
	monthKeyLayout = "2006-01"
)

// HourKey returns the bucket key for an hour-of-day timestamp.
func HourKey(t time.Time) string { return t.Format(hourKeyLayout) }

// DayKey returns the bucket key for a calendar day.
func DayKey(t time.Time) string { return t.Format(dayKeyLayout) }

// MonthKey returns the bucket key for a calendar month.
func MonthKey(t time.Time) string { return t.Format(monthKeyLayout) }

// Buckets produces the finite ordered bucket sequence for an interval.
// The sequence is lazily evaluated and restartable: ranging over it again
// replays the same buckets.
//
//   - Day granularity: 24 hour-of-day buckets for the interval's first day.
//   - Year granularity: 12 month buckets of the start's year, regardless of
//     whether the bounds span exactly a year.
//   - Everything else: one bucket per calendar day, Start..End inclusive.
func Buckets(iv Interval, granularity Token) iter.Seq[Bucket] {
	switch granularity {
	case Day:
		return hourBuckets(iv.Start)
	case Year:
		return monthBuckets(iv.Start.Year(), iv.Start.Location())
	default:
		return dayBuckets(iv)
	}
}

func hourBuckets(day time.Time) iter.Seq[Bucket] {
	return func(yield func(Bucket) bool) {
		for h := 0; h < 24; h++ {
			start := day.Add(time.Duration(h) * time.Hour)
			b := Bucket{
				Key:   start.Format(hourKeyLayout),
				Label: fmt.Sprintf("%02d:00", h),
				Start: start,
			}
			if !yield(b) {
				return
			}
		}
	}
}

func dayBuckets(iv Interval) iter.Seq[Bucket] {
	return func(yield func(Bucket) bool) {
		for d := iv.Start; !d.After(iv.End); d = d.AddDate(0, 0, 1) {
			b := Bucket{
				Key:   d.Format(dayKeyLayout),
				Label: d.Format("02 Jan"),
				Start: d,
			}
			if !yield(b) {
				return
			}
		}
	}
}

func monthBuckets(year int, loc *time.Location) iter.Seq[Bucket] {
	return func(yield func(Bucket) bool) {
		for m := time.January; m <= time.December; m++ {
			start := time.Date(year, m, 1, 0, 0, 0, 0, loc)
			b := Bucket{
				Key:   start.Format(monthKeyLayout),
				Label: start.Format("Jan"),
				Start: start,
			}
			if !yield(b) {
				return
			}
		}
	}
}

// Point is one aligned series entry.
type Point[T any] struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value T      `json:"value"`
}

// AlignSeries joins sparse keyed rows onto the dense bucket sequence.
// Buckets with no matching row carry T's zero value, which keeps "no data"
// distinguishable from an omitted slot. How an all-zero series is rendered
// is the caller's concern.
func AlignSeries[T any](buckets iter.Seq[Bucket], rows map[string]T) []Point[T] {
	var out []Point[T]
	for b := range buckets {
		p := Point[T]{Key: b.Key, Label: b.Label}
		if v, ok := rows[b.Key]; ok {
			p.Value = v
		}
		out = append(out, p)
	}
	return out
}
