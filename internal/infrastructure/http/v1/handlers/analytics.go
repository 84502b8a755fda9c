package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"opsboard/internal/core/apperror"
	"opsboard/internal/core/timeperiod"
	"opsboard/internal/domain/analytics"
	"opsboard/internal/infrastructure/http/v1/dto"
)

// AnalyticsHandler serves the dashboard aggregates.
type AnalyticsHandler struct {
	BaseHandler
	service *analytics.Service
}

func NewAnalyticsHandler(service *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// KPIs returns revenue, orders, units, average check and margin for the
// filtered sale set.
func (h *AnalyticsHandler) KPIs(c *gin.Context) {
	var q dto.AnalyticsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	f, err := q.Filter()
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.KPIs(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Revenue returns total revenue for a logical period (day, week,
// month, year or an explicit range).
func (h *AnalyticsHandler) Revenue(c *gin.Context) {
	var q dto.RevenueQuery
	if !h.BindQuery(c, &q) {
		return
	}
	token, f, err := q.Filter(timeperiod.AnchorNow())
	if err != nil {
		h.Error(c, err)
		return
	}

	revenue, err := h.service.Revenue(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"period":    token,
		"startDate": f.StartDate,
		"endDate":   f.EndDate,
		"revenue":   revenue,
	})
}

// DailyRevenue returns the dense daily revenue series for a trailing
// window of 7, 14, 30 or 365 days.
func (h *AnalyticsHandler) DailyRevenue(c *gin.Context) {
	var q dto.SeriesQuery
	if !h.BindQuery(c, &q) {
		return
	}
	q.Defaults()
	f, err := q.Filter()
	if err != nil {
		h.Error(c, err)
		return
	}

	series, err := h.service.DailyRevenue(c.Request.Context(), q.Days, f)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": q.Days, "points": series})
}

// DailySalesCount returns the dense daily sale-count series.
func (h *AnalyticsHandler) DailySalesCount(c *gin.Context) {
	var q dto.SeriesQuery
	if !h.BindQuery(c, &q) {
		return
	}
	q.Defaults()
	f, err := q.Filter()
	if err != nil {
		h.Error(c, err)
		return
	}

	series, err := h.service.DailySalesCount(c.Request.Context(), q.Days, f)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": q.Days, "points": series})
}

// TopProducts returns the best sellers by revenue or units.
func (h *AnalyticsHandler) TopProducts(c *gin.Context) {
	var q dto.AnalyticsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	f, err := q.Filter()
	if err != nil {
		h.Error(c, err)
		return
	}
	metric, err := analytics.ParseRankMetric(q.Metric)
	if err != nil {
		h.Error(c, err)
		return
	}

	top, err := h.service.TopProducts(c.Request.Context(), f, metric, q.Limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metric": metric, "items": top})
}

// CategorySales returns per-category totals.
func (h *AnalyticsHandler) CategorySales(c *gin.Context) {
	var q dto.AnalyticsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	f, err := q.Filter()
	if err != nil {
		h.Error(c, err)
		return
	}
	metric, err := analytics.ParseRankMetric(q.Metric)
	if err != nil {
		h.Error(c, err)
		return
	}

	rows, err := h.service.CategorySales(c.Request.Context(), f, metric, q.Limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metric": metric, "items": rows})
}

// Turnover returns revenue over the five trailing windows.
func (h *AnalyticsHandler) Turnover(c *gin.Context) {
	tv, err := h.service.Turnover(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, tv)
}

// SaveReport snapshots a current aggregate.
func (h *AnalyticsHandler) SaveReport(c *gin.Context) {
	var req dto.SaveReportRequest
	if !h.BindJSON(c, &req) {
		return
	}
	kind, err := analytics.ParseReportKind(req.Kind)
	if err != nil {
		h.Error(c, err)
		return
	}
	metric, err := analytics.ParseRankMetric(req.Metric)
	if err != nil {
		h.Error(c, err)
		return
	}
	q := dto.AnalyticsQuery{
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Categories: req.Categories,
	}
	f, err := q.Filter()
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.SaveReport(c.Request.Context(), analytics.SaveReportInput{
		Kind:   kind,
		Title:  req.Title,
		Filter: f,
		Metric: metric,
		Limit:  req.Limit,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// ListReports pages through stored snapshots.
func (h *AnalyticsHandler) ListReports(c *gin.Context) {
	var q dto.PaginationRequest
	if !h.BindQuery(c, &q) {
		return
	}
	q.Defaults()

	reports, err := h.service.ListReports(c.Request.Context(), q.Limit, q.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      reports,
		TotalCount: len(reports),
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
}

// GetReport fetches one stored snapshot.
func (h *AnalyticsHandler) GetReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid report id").WithDetail("id", c.Param("id")))
		return
	}

	report, err := h.service.GetReport(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// DeleteReport removes a stored snapshot.
func (h *AnalyticsHandler) DeleteReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid report id").WithDetail("id", c.Param("id")))
		return
	}

	if err := h.service.DeleteReport(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.IDResponse{ID: id})
}
