package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/byronguina/sprintbot/internal/model"
)

const taskColumns = `id, description, steps, status, priority, assigned_to, created_by, archived, created_at, estimated_hours, actual_hours, sprint_id`

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateTask inserts a new task and sets its generated ID.
// An empty status defaults to Pending and a zero CreatedAt to now.
func (db *DB) CreateTask(ctx context.Context, t *model.Task) error {
	return insertTask(ctx, db, t)
}

// CreateTasks inserts several tasks in one transaction. Either all are created or none.
func (db *DB) CreateTasks(ctx context.Context, tasks []*model.Task) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		for _, t := range tasks {
			if err := insertTask(ctx, tx, t); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertTask(ctx context.Context, e execer, t *model.Task) error {
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("task description is required")
	}
	if t.Status == "" {
		t.Status = model.StatusPending
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", t.Status)
	}
	if t.Priority != "" && !t.Priority.IsValid() {
		return fmt.Errorf("invalid priority: %s", t.Priority)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	result, err := e.ExecContext(ctx, `
		INSERT INTO tasks (description, steps, status, priority, assigned_to, created_by, archived, created_at, estimated_hours, actual_hours, sprint_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Description, t.Steps, t.Status, t.Priority, t.AssignedTo, t.CreatedBy,
		t.Archived, t.CreatedAt.UnixNano(), t.EstimatedHours, t.ActualHours, t.SprintID,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read task id: %w", err)
	}
	t.ID = id
	return nil
}

// GetTask retrieves a task by ID, archived or not.
func (db *DB) GetTask(ctx context.Context, id int64) (*model.Task, error) {
	row := db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// UpdateTask applies a partial update and returns the stored task.
func (db *DB) UpdateTask(ctx context.Context, id int64, u model.TaskUpdate) (*model.Task, error) {
	sets := []string{}
	args := []any{}

	if u.Description != nil {
		if strings.TrimSpace(*u.Description) == "" {
			return nil, fmt.Errorf("task description is required")
		}
		sets = append(sets, "description = ?")
		args = append(args, *u.Description)
	}
	if u.Steps != nil {
		sets = append(sets, "steps = ?")
		args = append(args, *u.Steps)
	}
	if u.Status != nil {
		if !u.Status.IsValid() {
			return nil, fmt.Errorf("invalid status: %s", *u.Status)
		}
		sets = append(sets, "status = ?")
		args = append(args, *u.Status)
	}
	if u.Priority != nil {
		if !u.Priority.IsValid() {
			return nil, fmt.Errorf("invalid priority: %s", *u.Priority)
		}
		sets = append(sets, "priority = ?")
		args = append(args, *u.Priority)
	}
	switch {
	case u.Unassign:
		sets = append(sets, "assigned_to = NULL")
	case u.AssignedTo != nil:
		sets = append(sets, "assigned_to = ?")
		args = append(args, *u.AssignedTo)
	}
	if u.Archived != nil {
		sets = append(sets, "archived = ?")
		args = append(args, *u.Archived)
	}
	if u.EstimatedHours != nil {
		sets = append(sets, "estimated_hours = ?")
		args = append(args, *u.EstimatedHours)
	}
	if u.ActualHours != nil {
		sets = append(sets, "actual_hours = ?")
		args = append(args, *u.ActualHours)
	}
	switch {
	case u.ClearSprint:
		sets = append(sets, "sprint_id = NULL")
	case u.SprintID != nil:
		sets = append(sets, "sprint_id = ?")
		args = append(args, *u.SprintID)
	}

	if len(sets) > 0 {
		args = append(args, id)
		result, err := db.ExecContext(ctx, `UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to update task: %w", err)
		}

		rows, _ := result.RowsAffected()
		if rows == 0 {
			return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
		}
	}

	return db.GetTask(ctx, id)
}

// UpdateTaskStatus changes a task's status.
func (db *DB) UpdateTaskStatus(ctx context.Context, id int64, status model.Status) (*model.Task, error) {
	return db.UpdateTask(ctx, id, model.TaskUpdate{Status: &status})
}

// ArchiveTask hides a task from default listings.
func (db *DB) ArchiveTask(ctx context.Context, id int64) error {
	archived := true
	_, err := db.UpdateTask(ctx, id, model.TaskUpdate{Archived: &archived})
	return err
}

// DeleteTask removes a task.
func (db *DB) DeleteTask(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListTasks returns tasks matching the filter in creation order.
// Archived tasks are skipped unless the filter asks for them.
func (db *DB) ListTasks(ctx context.Context, f model.TaskFilter) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	args := []any{}

	if !f.IncludeArchived {
		query += ` AND archived = 0`
	}
	if f.AssignedTo != nil {
		query += ` AND assigned_to = ?`
		args = append(args, *f.AssignedTo)
	}
	if f.Status != nil {
		if !f.Status.IsValid() {
			return nil, fmt.Errorf("invalid status: %s", *f.Status)
		}
		query += ` AND status = ?`
		args = append(args, *f.Status)
	}
	if f.ExcludeStatus != nil {
		query += ` AND status != ?`
		args = append(args, *f.ExcludeStatus)
	}
	if f.Priority != nil {
		if !f.Priority.IsValid() {
			return nil, fmt.Errorf("invalid priority: %s", *f.Priority)
		}
		query += ` AND priority = ?`
		args = append(args, *f.Priority)
	}
	switch {
	case f.NoSprint:
		query += ` AND sprint_id IS NULL`
	case f.SprintID != nil:
		query += ` AND sprint_id = ?`
		args = append(args, *f.SprintID)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	return db.queryTasks(ctx, query, args...)
}

// queryTasks is a helper to scan task rows.
func (db *DB) queryTasks(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func scanTask(s scanner) (*model.Task, error) {
	t := &model.Task{}
	var (
		assignedTo, sprintID sql.NullInt64
		estimated, actual    sql.NullFloat64
		createdAt            int64
	)
	err := s.Scan(
		&t.ID, &t.Description, &t.Steps, &t.Status, &t.Priority, &assignedTo, &t.CreatedBy,
		&t.Archived, &createdAt, &estimated, &actual, &sprintID,
	)
	if err != nil {
		return nil, err
	}

	t.CreatedAt = time.Unix(0, createdAt)
	if assignedTo.Valid {
		t.AssignedTo = &assignedTo.Int64
	}
	if sprintID.Valid {
		t.SprintID = &sprintID.Int64
	}
	if estimated.Valid {
		t.EstimatedHours = &estimated.Float64
	}
	if actual.Valid {
		t.ActualHours = &actual.Float64
	}
	return t, nil
}
