package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Shishir-Kc/ThE-lIsT/internal/model"
	"github.com/Shishir-Kc/ThE-lIsT/pkg/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const taskColumns = `id, task_name, task_description, start_date, end_date, ended_at, completed, priority_level`

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) (*model.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	List(ctx context.Context) ([]*model.Task, error)
	ListCompleted(ctx context.Context) ([]*model.Task, error)
	// Modify loads the task, applies mutate and persists the mutable
	// columns, all inside one session.
	Modify(ctx context.Context, id uuid.UUID, mutate func(task *model.Task)) (*model.Task, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type taskRepository struct {
	store *Store
}

func NewTaskRepository(store *Store) TaskRepository {
	return &taskRepository{
		store: store,
	}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	q := `
		INSERT INTO todo (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + taskColumns

	var created *model.Task
	err := r.store.WithSession(ctx, func(ctx context.Context, sess Session) error {
		start := time.Now()
		row := sess.QueryRow(ctx, q,
			task.ID, task.TaskName, task.TaskDescription, task.StartDate,
			task.EndDate, task.EndedAt, task.Completed, task.PriorityLevel,
		)

		var err error
		created, err = scanTask(row)
		duration := time.Since(start)

		if err != nil {
			r.logCriticalDBError(ctx, "create_task", q, duration, err)
			return HandlePgxError("create_task", err)
		}

		r.logSlowQuery(ctx, "create_task", duration)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *taskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM todo WHERE id = $1`

	var task *model.Task
	err := r.store.WithSession(ctx, func(ctx context.Context, sess Session) error {
		start := time.Now()

		var err error
		task, err = scanTask(sess.QueryRow(ctx, q, id))
		duration := time.Since(start)

		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				r.logCriticalDBError(ctx, "get_task_by_id", q, duration, err)
			}
			return HandlePgxError("get_task_by_id", err)
		}

		r.logSlowQuery(ctx, "get_task_by_id", duration)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) List(ctx context.Context) ([]*model.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM todo ORDER BY start_date, id`
	return r.list(ctx, "list_tasks", q)
}

func (r *taskRepository) ListCompleted(ctx context.Context) ([]*model.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM todo WHERE completed = TRUE ORDER BY start_date, id`
	return r.list(ctx, "list_completed_tasks", q)
}

func (r *taskRepository) list(ctx context.Context, operation, q string) ([]*model.Task, error) {
	tasks := []*model.Task{}

	err := r.store.WithSession(ctx, func(ctx context.Context, sess Session) error {
		start := time.Now()

		rows, err := sess.Query(ctx, q)
		if err != nil {
			r.logCriticalDBError(ctx, operation, q, time.Since(start), err)
			return HandlePgxError(operation, err)
		}
		defer rows.Close()

		for rows.Next() {
			task, err := scanTask(rows)
			if err != nil {
				r.logCriticalDBError(ctx, operation+"_scan", q, time.Since(start), err)
				return HandlePgxError(operation+"_scan", err)
			}
			tasks = append(tasks, task)
		}

		duration := time.Since(start)
		if err := rows.Err(); err != nil {
			r.logCriticalDBError(ctx, operation+"_iteration", q, duration, err)
			return HandlePgxError(operation+"_iteration", err)
		}

		r.logSlowQuery(ctx, operation, duration)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskRepository) Modify(ctx context.Context, id uuid.UUID, mutate func(task *model.Task)) (*model.Task, error) {
	selectQ := `SELECT ` + taskColumns + ` FROM todo WHERE id = $1 FOR UPDATE`
	updateQ := `
		UPDATE todo
		SET completed = $2, ended_at = $3, priority_level = $4
		WHERE id = $1
		RETURNING ` + taskColumns

	var updated *model.Task
	err := r.store.WithSession(ctx, func(ctx context.Context, sess Session) error {
		start := time.Now()

		task, err := scanTask(sess.QueryRow(ctx, selectQ, id))
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				r.logCriticalDBError(ctx, "modify_task_lookup", selectQ, time.Since(start), err)
			}
			return HandlePgxError("modify_task_lookup", err)
		}

		mutate(task)

		updated, err = scanTask(sess.QueryRow(ctx, updateQ, task.ID, task.Completed, task.EndedAt, task.PriorityLevel))
		duration := time.Since(start)

		if err != nil {
			r.logCriticalDBError(ctx, "modify_task_update", updateQ, duration, err)
			return HandlePgxError("modify_task_update", err)
		}

		r.logSlowQuery(ctx, "modify_task", duration)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *taskRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	q := `DELETE FROM todo WHERE id = $1`

	return r.store.WithSession(ctx, func(ctx context.Context, sess Session) error {
		start := time.Now()

		commandTag, err := sess.Exec(ctx, q, id)
		duration := time.Since(start)

		if err != nil {
			r.logCriticalDBError(ctx, "delete_task", q, duration, err)
			return HandlePgxError("delete_task", err)
		}

		if commandTag.RowsAffected() == 0 {
			return WrapError("delete_task", ErrTaskNotFound)
		}

		r.logSlowQuery(ctx, "delete_task", duration)
		return nil
	})
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var task model.Task
	err := row.Scan(
		&task.ID, &task.TaskName, &task.TaskDescription, &task.StartDate,
		&task.EndDate, &task.EndedAt, &task.Completed, &task.PriorityLevel,
	)
	if err != nil {
		return nil, err
	}

	task.StartDate = task.StartDate.UTC()
	task.EndDate = utcPtr(task.EndDate)
	task.EndedAt = utcPtr(task.EndedAt)
	return &task, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func (r *taskRepository) logCriticalDBError(ctx context.Context, operation, query string, duration time.Duration, err error) {
	logger.LogDatabaseQuery(ctx, operation, query, duration, err)

	slog.ErrorContext(ctx, "Critical database error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
		slog.Duration("duration", duration),
	)
}

func (r *taskRepository) logSlowQuery(ctx context.Context, operation string, duration time.Duration) {
	threshold := 500 * time.Millisecond
	if duration > threshold {
		logger.LogSlowOperation(ctx, operation, duration, threshold)
	}
}
