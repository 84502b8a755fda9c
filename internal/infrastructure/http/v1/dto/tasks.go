package dto

import (
	"time"

	"opsboard/internal/core/apperror"
	"opsboard/internal/domain/tasks"
)

// TaskRequest creates or updates a task.
type TaskRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Deadline    string  `json:"deadline" binding:"required"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	Executor    *string `json:"executor"`
}

// ToTask converts the request into a domain task. Missing status and
// priority fall back to pending/medium.
func (r *TaskRequest) ToTask() (*tasks.Task, error) {
	deadline, err := time.Parse(time.RFC3339, r.Deadline)
	if err != nil {
		return nil, apperror.NewValidation("invalid deadline").WithDetail("deadline", r.Deadline)
	}

	status := tasks.StatusPending
	if r.Status != "" {
		status, err = tasks.ParseStatus(r.Status)
		if err != nil {
			return nil, err
		}
	}
	priority := tasks.PriorityMedium
	if r.Priority != "" {
		priority, err = tasks.ParsePriority(r.Priority)
		if err != nil {
			return nil, err
		}
	}

	return &tasks.Task{
		Title:       r.Title,
		Description: r.Description,
		Deadline:    deadline,
		Status:      status,
		Priority:    priority,
		Executor:    r.Executor,
	}, nil
}

// TaskListQuery narrows task listings.
type TaskListQuery struct {
	PaginationRequest
	Status   string  `form:"status"`
	Priority string  `form:"priority"`
	Executor *string `form:"executor"`
}

// ToFilter converts the query into a domain list filter.
func (q *TaskListQuery) ToFilter() (tasks.ListFilter, error) {
	q.Defaults()
	f := tasks.ListFilter{Executor: q.Executor, Limit: q.Limit, Offset: q.Offset}

	if q.Status != "" {
		s, err := tasks.ParseStatus(q.Status)
		if err != nil {
			return tasks.ListFilter{}, err
		}
		f.Status = &s
	}
	if q.Priority != "" {
		p, err := tasks.ParsePriority(q.Priority)
		if err != nil {
			return tasks.ListFilter{}, err
		}
		f.Priority = &p
	}
	return f, nil
}

// TaskStatusRequest transitions a task's workflow state.
type TaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
