package tasks

import (
	"context"
	"time"
)

// ListFilter narrows task listings.
type ListFilter struct {
	Status   *Status
	Priority *Priority
	Executor *string
	Limit    int
	Offset   int
}

// ListResult is a paginated task listing.
type ListResult struct {
	Items      []Task `json:"items"`
	TotalCount int    `json:"totalCount"`
}

// Repository defines task data access.
type Repository interface {
	Create(ctx context.Context, task *Task) error
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Task, error)
	List(ctx context.Context, filter ListFilter) (ListResult, error)

	// ListTouchingWindow returns tasks whose deadline, creation, or last
	// update falls inside [start, end]. Feeds the period aggregations.
	ListTouchingWindow(ctx context.Context, start, end time.Time) ([]Task, error)
}
