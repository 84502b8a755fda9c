// Package tasks provides the task tracker and its period aggregations.
package tasks

import (
	"context"
	"strings"
	"time"

	"opsboard/internal/core/apperror"
)

// Status is the task workflow state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusInProgress, StatusCompleted:
		return Status(s), nil
	}
	return "", apperror.NewValidation("invalid task status").WithDetail("status", s)
}

// Priority is the task urgency level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority validates a priority string.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(s), nil
	}
	return "", apperror.NewValidation("invalid task priority").WithDetail("priority", s)
}

// Task is a tracked work item with a deadline.
type Task struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	Deadline    time.Time `db:"deadline" json:"deadline"`
	Status      Status    `db:"status" json:"status"`
	Priority    Priority  `db:"priority" json:"priority"`
	Executor    *string   `db:"executor" json:"executor,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Validate checks required fields.
func (t *Task) Validate(ctx context.Context) error {
	if strings.TrimSpace(t.Title) == "" {
		return apperror.NewValidation("task title is required")
	}
	if t.Deadline.IsZero() {
		return apperror.NewValidation("task deadline is required")
	}
	if _, err := ParseStatus(string(t.Status)); err != nil {
		return err
	}
	if _, err := ParsePriority(string(t.Priority)); err != nil {
		return err
	}
	return nil
}

// IsOverdue reports whether the task missed its deadline as of now.
// Completed tasks are never overdue.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status != StatusCompleted && t.Deadline.Before(now)
}
