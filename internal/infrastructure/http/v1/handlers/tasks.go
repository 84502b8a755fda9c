package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"opsboard/internal/core/apperror"
	"opsboard/internal/core/timeperiod"
	"opsboard/internal/domain/tasks"
	"opsboard/internal/infrastructure/http/v1/dto"
)

// TaskHandler serves the task tracker and its period aggregations.
type TaskHandler struct {
	BaseHandler
	service *tasks.Service
}

func NewTaskHandler(service *tasks.Service) *TaskHandler {
	return &TaskHandler{service: service}
}

func (h *TaskHandler) List(c *gin.Context) {
	var q dto.TaskListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	task, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.TaskRequest
	if !h.BindJSON(c, &req) {
		return
	}
	task, err := req.ToTask()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), task); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.TaskRequest
	if !h.BindJSON(c, &req) {
		return
	}
	task, err := req.ToTask()
	if err != nil {
		h.Error(c, err)
		return
	}
	task.ID = id

	if err := h.service.Update(c.Request.Context(), task); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) SetStatus(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.TaskStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	status, err := tasks.ParseStatus(req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}

	task, err := h.service.SetStatus(c.Request.Context(), id, status)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.IDResponse{ID: id})
}

// periodToken parses the period query for the aggregations, which run
// over calendar periods only.
func (h *TaskHandler) periodToken(c *gin.Context) (timeperiod.Token, bool) {
	raw := c.DefaultQuery("period", string(timeperiod.Week))
	token, err := timeperiod.ParseToken(raw)
	if err != nil {
		h.Error(c, err)
		return "", false
	}
	if token == timeperiod.Range {
		h.Error(c, apperror.NewValidation("task aggregations accept calendar periods only").WithDetail("period", raw))
		return "", false
	}
	return token, true
}

// Summary returns per-status counts plus the overdue count for the
// selected period.
func (h *TaskHandler) Summary(c *gin.Context) {
	token, ok := h.periodToken(c)
	if !ok {
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), token, timeperiod.AnchorNow())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Trend returns the bucketed opened/closed/overdue series for the
// selected period.
func (h *TaskHandler) Trend(c *gin.Context) {
	token, ok := h.periodToken(c)
	if !ok {
		return
	}
	trend, err := h.service.Trend(c.Request.Context(), token, timeperiod.AnchorNow())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": token, "points": trend})
}
