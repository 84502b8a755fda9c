package tasks

import (
	"context"
	"fmt"
	"time"

	"opsboard/internal/core/timeperiod"
	"opsboard/internal/core/types"
	"opsboard/pkg/logger"
)

// Service provides task operations and period aggregations.
type Service struct {
	repo Repository
}

// NewService creates a new task service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a task, defaulting status and priority.
func (s *Service) Create(ctx context.Context, task *Task) error {
	if task.Status == "" {
		task.Status = StatusPending
	}
	if task.Priority == "" {
		task.Priority = PriorityMedium
	}
	if err := task.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	logger.Info(ctx, "task created", "task_id", task.ID, "title", task.Title)
	return nil
}

// Update modifies a task.
func (s *Service) Update(ctx context.Context, task *Task) error {
	if err := task.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, task); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// SetStatus transitions a task to a new status.
func (s *Service) SetStatus(ctx context.Context, id int64, status Status) (*Task, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}

	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	task.Status = status
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}
	return task, nil
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// GetByID retrieves a task.
func (s *Service) GetByID(ctx context.Context, id int64) (*Task, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a filtered, paginated task listing.
func (s *Service) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.repo.List(ctx, filter)
}

// --- Aggregations ---

// StatusSummary tallies task states for a period.
type StatusSummary struct {
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Pending    int `json:"pending"`
	Overdue    int `json:"overdue"`
}

// Summary computes status counts for the resolved period. Overdue is
// evaluated against the live "now", not the window's upper bound: a task
// overdue today counts even when the window reaches into the future.
func (s *Service) Summary(ctx context.Context, token timeperiod.Token, now time.Time) (StatusSummary, error) {
	iv := timeperiod.Resolve(token, now)

	tasks, err := s.repo.ListTouchingWindow(ctx, iv.Start, types.DayEnd(iv.End))
	if err != nil {
		return StatusSummary{}, fmt.Errorf("list tasks for summary: %w", err)
	}

	var summary StatusSummary
	for _, t := range tasks {
		switch t.Status {
		case StatusCompleted:
			summary.Completed++
		case StatusInProgress:
			summary.InProgress++
		default:
			summary.Pending++
		}
		if t.IsOverdue(now) {
			summary.Overdue++
		}
	}
	return summary, nil
}

// TrendCounts is one trend bucket's activity.
type TrendCounts struct {
	Opened  int `json:"opened"`
	Closed  int `json:"closed"`
	Overdue int `json:"overdue"`
}

// Trend buckets task activity over the resolved period: tasks opened (by
// creation), closed (by last update while completed), and gone overdue (by
// deadline, capped at the window end). Buckets without activity report
// zeros for all three series.
func (s *Service) Trend(ctx context.Context, token timeperiod.Token, now time.Time) ([]timeperiod.Point[TrendCounts], error) {
	iv := timeperiod.Resolve(token, now)
	windowEnd := types.DayEnd(iv.End)

	tasks, err := s.repo.ListTouchingWindow(ctx, iv.Start, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("list tasks for trend: %w", err)
	}

	keyFor := bucketKeyFunc(token)

	rows := make(map[string]TrendCounts)
	for _, t := range tasks {
		if iv.Contains(t.CreatedAt) {
			k := keyFor(t.CreatedAt)
			c := rows[k]
			c.Opened++
			rows[k] = c
		}
		if t.Status == StatusCompleted && iv.Contains(t.UpdatedAt) {
			k := keyFor(t.UpdatedAt)
			c := rows[k]
			c.Closed++
			rows[k] = c
		}
		if t.Status != StatusCompleted && iv.Contains(t.Deadline) && !t.Deadline.After(windowEnd) {
			k := keyFor(t.Deadline)
			c := rows[k]
			c.Overdue++
			rows[k] = c
		}
	}

	return timeperiod.AlignSeries(timeperiod.Buckets(iv, token), rows), nil
}

// bucketKeyFunc maps timestamps onto bucket keys for a granularity.
func bucketKeyFunc(token timeperiod.Token) func(time.Time) string {
	switch token {
	case timeperiod.Day:
		return timeperiod.HourKey
	case timeperiod.Year:
		return timeperiod.MonthKey
	default:
		return timeperiod.DayKey
	}
}
