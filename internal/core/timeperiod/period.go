// Package timeperiod resolves logical period tokens into concrete date
// intervals and slices those intervals into dense, chart-ready buckets.
package timeperiod

import (
	"time"

	"opsboard/internal/core/apperror"
	"opsboard/internal/core/types"
)

// Token is a logical period selector.
type Token string

const (
	Day   Token = "day"
	Week  Token = "week"
	Month Token = "month"
	Year  Token = "year"
	Range Token = "range"
)

// ParseToken validates a period token string.
func ParseToken(s string) (Token, error) {
	switch Token(s) {
	case Day, Week, Month, Year, Range:
		return Token(s), nil
	}
	return "", apperror.NewValidation("invalid period token").WithDetail("period", s)
}

// Interval is an inclusive calendar-day-aligned [Start, End] window.
// Both bounds are local midnights of their respective days.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t's calendar day falls inside the interval.
func (iv Interval) Contains(t time.Time) bool {
	d := types.DayStart(t)
	return !d.Before(iv.Start) && !d.After(iv.End)
}

// Resolve turns a period token plus "now" into a concrete interval.
// Range tokens must be resolved with ResolveRange; passing Range here
// yields the current day, matching the behaviour for an unknown token.
// Resolve never fails: every token maps to a bounded pair.
func Resolve(token Token, now time.Time) Interval {
	today := types.DayStart(now)

	switch token {
	case Week:
		return Interval{Start: mondayOf(today), End: mondayOf(today).AddDate(0, 0, 6)}
	case Month:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return Interval{Start: first, End: first.AddDate(0, 1, -1)}
	case Year:
		return Interval{
			Start: time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location()),
			End:   time.Date(today.Year(), time.December, 31, 0, 0, 0, 0, today.Location()),
		}
	default:
		return Interval{Start: today, End: today}
	}
}

// ResolveRange builds an interval from explicit bounds.
// Bounds are day-aligned but deliberately not validated for order;
// that is the caller's responsibility.
func ResolveRange(from, to time.Time) Interval {
	return Interval{Start: types.DayStart(from), End: types.DayStart(to)}
}

// mondayOf returns the Monday of the week containing day.
func mondayOf(day time.Time) time.Time {
	wd := int(day.Weekday())
	if wd == 0 {
		wd = 7 // Sunday
	}
	return day.AddDate(0, 0, 1-wd)
}

// moscowTZ is the anchor zone for trailing turnover windows.
var moscowTZ = loadMoscow()

func loadMoscow() *time.Location {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

// AnchorNow returns the current time in the turnover anchor timezone.
func AnchorNow() time.Time {
	return time.Now().In(moscowTZ)
}

// AnchorZone returns the turnover anchor timezone.
func AnchorZone() *time.Location {
	return moscowTZ
}
