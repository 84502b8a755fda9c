// Package task_repo implements the task repository on PostgreSQL.
package task_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"opsboard/internal/core/apperror"
	"opsboard/internal/domain/tasks"
	"opsboard/internal/infrastructure/storage/postgres"
)

const taskTable = "tasks"

var taskCols = []string{
	"id", "title", "description", "deadline", "status", "priority",
	"executor", "created_at", "updated_at",
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// TaskRepo implements tasks.Repository.
type TaskRepo struct {
	tx *postgres.TxManager
}

func NewTaskRepo(tx *postgres.TxManager) *TaskRepo {
	return &TaskRepo{tx: tx}
}

var _ tasks.Repository = (*TaskRepo)(nil)

func (r *TaskRepo) Create(ctx context.Context, task *tasks.Task) error {
	now := time.Now().UTC()
	task.CreatedAt, task.UpdatedAt = now, now

	sql, args, err := builder().
		Insert(taskTable).
		Columns("title", "description", "deadline", "status", "priority",
			"executor", "created_at", "updated_at").
		Values(task.Title, task.Description, task.Deadline, task.Status,
			task.Priority, task.Executor, task.CreatedAt, task.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert task: %w", err)
	}

	if err := r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&task.ID); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepo) Update(ctx context.Context, task *tasks.Task) error {
	task.UpdatedAt = time.Now().UTC()

	sql, args, err := builder().
		Update(taskTable).
		Set("title", task.Title).
		Set("description", task.Description).
		Set("deadline", task.Deadline).
		Set("status", task.Status).
		Set("priority", task.Priority).
		Set("executor", task.Executor).
		Set("updated_at", task.UpdatedAt).
		Where(squirrel.Eq{"id": task.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update task: %w", err)
	}

	tag, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("task", task.ID)
	}
	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, id int64) error {
	sql, args, err := builder().
		Delete(taskTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete task: %w", err)
	}

	tag, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("task", id)
	}
	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id int64) (*tasks.Task, error) {
	sql, args, err := builder().
		Select(taskCols...).
		From(taskTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select task: %w", err)
	}

	var task tasks.Task
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), &task, sql, args...); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("task", id)
		}
		return nil, fmt.Errorf("select task: %w", err)
	}
	return &task, nil
}

func (r *TaskRepo) List(ctx context.Context, f tasks.ListFilter) (tasks.ListResult, error) {
	base := builder().Select(taskCols...).From(taskTable)
	countQ := builder().Select("COUNT(*)").From(taskTable)

	var conds []squirrel.Sqlizer
	if f.Status != nil {
		conds = append(conds, squirrel.Eq{"status": *f.Status})
	}
	if f.Priority != nil {
		conds = append(conds, squirrel.Eq{"priority": *f.Priority})
	}
	if f.Executor != nil {
		conds = append(conds, squirrel.Eq{"executor": *f.Executor})
	}
	for _, c := range conds {
		base = base.Where(c)
		countQ = countQ.Where(c)
	}

	base = base.OrderBy("deadline ASC", "id ASC")
	if f.Limit > 0 {
		base = base.Limit(uint64(f.Limit)).Offset(uint64(max(f.Offset, 0)))
	}

	sql, args, err := base.ToSql()
	if err != nil {
		return tasks.ListResult{}, fmt.Errorf("build list tasks: %w", err)
	}
	var items []tasks.Task
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &items, sql, args...); err != nil {
		return tasks.ListResult{}, fmt.Errorf("list tasks: %w", err)
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return tasks.ListResult{}, fmt.Errorf("build count tasks: %w", err)
	}
	var total int
	if err := r.tx.GetQuerier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return tasks.ListResult{}, fmt.Errorf("count tasks: %w", err)
	}

	return tasks.ListResult{Items: items, TotalCount: total}, nil
}

// ListTouchingWindow feeds the trend aggregation: any task created,
// updated, or due inside the window is a candidate row.
func (r *TaskRepo) ListTouchingWindow(ctx context.Context, start, end time.Time) ([]tasks.Task, error) {
	sql, args, err := builder().
		Select(taskCols...).
		From(taskTable).
		Where(squirrel.Or{
			squirrel.And{squirrel.GtOrEq{"created_at": start}, squirrel.LtOrEq{"created_at": end}},
			squirrel.And{squirrel.GtOrEq{"updated_at": start}, squirrel.LtOrEq{"updated_at": end}},
			squirrel.And{squirrel.GtOrEq{"deadline": start}, squirrel.LtOrEq{"deadline": end}},
		}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build window tasks: %w", err)
	}

	var items []tasks.Task
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("window tasks: %w", err)
	}
	return items, nil
}
