package dto

import (
	"strconv"
	"strings"
	"time"

	"opsboard/internal/core/apperror"
	"opsboard/internal/core/timeperiod"
	"opsboard/internal/core/types"
	"opsboard/internal/domain/analytics"
)

// AnalyticsQuery carries the raw filter parameters shared by the
// reporting endpoints.
type AnalyticsQuery struct {
	StartDate  string `form:"startDate"`
	EndDate    string `form:"endDate"`
	Categories string `form:"categories"`
	Metric     string `form:"metric"`
	Limit      int    `form:"limit"`
}

// ParseCategoryIDs splits a comma-separated id list. Malformed entries
// are dropped, not rejected: a bad id in a hand-edited URL narrows the
// filter instead of failing the whole dashboard.
func ParseCategoryIDs(raw string) []int64 {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Filter converts the query into a domain analytics filter.
func (q *AnalyticsQuery) Filter() (analytics.Filter, error) {
	f := analytics.Filter{CategoryIDs: ParseCategoryIDs(q.Categories)}

	if q.StartDate != "" {
		d, err := types.ParseDate(q.StartDate, timeperiod.AnchorZone())
		if err != nil {
			return analytics.Filter{}, apperror.NewValidation("invalid startDate").WithDetail("startDate", q.StartDate)
		}
		f.StartDate = &d
	}
	if q.EndDate != "" {
		d, err := types.ParseDate(q.EndDate, timeperiod.AnchorZone())
		if err != nil {
			return analytics.Filter{}, apperror.NewValidation("invalid endDate").WithDetail("endDate", q.EndDate)
		}
		f.EndDate = &d
	}
	return f, nil
}

// PeriodQuery selects a logical time period, with explicit bounds for
// the range token.
type PeriodQuery struct {
	Period string `form:"period"`
	From   string `form:"from"`
	To     string `form:"to"`
}

// Interval resolves the period against now. Defaults to day.
func (q *PeriodQuery) Interval(now time.Time) (timeperiod.Token, timeperiod.Interval, error) {
	raw := q.Period
	if raw == "" {
		raw = string(timeperiod.Day)
	}
	token, err := timeperiod.ParseToken(raw)
	if err != nil {
		return "", timeperiod.Interval{}, err
	}

	if token == timeperiod.Range {
		from, err := types.ParseDate(q.From, timeperiod.AnchorZone())
		if err != nil {
			return "", timeperiod.Interval{}, apperror.NewValidation("invalid from date").WithDetail("from", q.From)
		}
		to, err := types.ParseDate(q.To, timeperiod.AnchorZone())
		if err != nil {
			return "", timeperiod.Interval{}, apperror.NewValidation("invalid to date").WithDetail("to", q.To)
		}
		return token, timeperiod.ResolveRange(from, to), nil
	}
	return token, timeperiod.Resolve(token, now), nil
}

// RevenueQuery resolves a logical period plus category filter for the
// plain revenue widget.
type RevenueQuery struct {
	PeriodQuery
	Categories string `form:"categories"`
}

// Filter resolves the period and builds the domain filter.
func (q *RevenueQuery) Filter(now time.Time) (timeperiod.Token, analytics.Filter, error) {
	token, iv, err := q.Interval(now)
	if err != nil {
		return "", analytics.Filter{}, err
	}
	return token, analytics.Filter{
		StartDate:   &iv.Start,
		EndDate:     &iv.End,
		CategoryIDs: ParseCategoryIDs(q.Categories),
	}, nil
}

// SeriesQuery selects one of the fixed trailing windows for daily
// series charts. The wire parameter is `period`, a day count.
type SeriesQuery struct {
	AnalyticsQuery
	Days int `form:"period"`
}

// Defaults picks the 7-day window when none was requested. Window
// validity is enforced by the analytics service.
func (q *SeriesQuery) Defaults() {
	if q.Days == 0 {
		q.Days = 7
	}
}

// SaveReportRequest asks for a snapshot of a current aggregate.
type SaveReportRequest struct {
	Kind       string `json:"kind" binding:"required"`
	Title      string `json:"title" binding:"required"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Categories string `json:"categories"`
	Metric     string `json:"metric"`
	Limit      int    `json:"limit"`
}
