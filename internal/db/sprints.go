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

const sprintColumns = `id, name, start_date, end_date, status, created_by, created_at`

// CreateSprint inserts a sprint and sets its generated ID.
func (db *DB) CreateSprint(ctx context.Context, s *model.Sprint) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("sprint name is required")
	}
	if s.Status == "" {
		s.Status = model.SprintPlanned
	}
	if !s.Status.IsValid() {
		return fmt.Errorf("invalid sprint status: %s", s.Status)
	}
	if s.EndDate.Before(s.StartDate) {
		return fmt.Errorf("sprint ends before it starts")
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO sprints (name, start_date, end_date, status, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.Name, s.StartDate.Format(model.DateLayout), s.EndDate.Format(model.DateLayout),
		s.Status, s.CreatedBy, s.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to create sprint: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read sprint id: %w", err)
	}
	s.ID = id
	return nil
}

// GetSprint retrieves a sprint by ID.
func (db *DB) GetSprint(ctx context.Context, id int64) (*model.Sprint, error) {
	row := db.QueryRowContext(ctx, `SELECT `+sprintColumns+` FROM sprints WHERE id = ?`, id)
	s, err := scanSprint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sprint %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sprint: %w", err)
	}
	return s, nil
}

// ListSprints returns all sprints ordered by start date.
func (db *DB) ListSprints(ctx context.Context) ([]model.Sprint, error) {
	return db.querySprints(ctx, `SELECT `+sprintColumns+` FROM sprints ORDER BY start_date ASC, id ASC`)
}

// ListSprintsByStatus returns sprints in the given lifecycle status.
func (db *DB) ListSprintsByStatus(ctx context.Context, status model.SprintStatus) ([]model.Sprint, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid sprint status: %s", status)
	}
	return db.querySprints(ctx, `SELECT `+sprintColumns+` FROM sprints WHERE status = ? ORDER BY start_date ASC, id ASC`, status)
}

// ActiveSprints returns sprints marked ACTIVE or whose date range covers today.
func (db *DB) ActiveSprints(ctx context.Context, today time.Time) ([]model.Sprint, error) {
	day := today.Format(model.DateLayout)
	return db.querySprints(ctx, `
		SELECT `+sprintColumns+` FROM sprints
		WHERE status = ? OR (start_date <= ? AND end_date >= ?)
		ORDER BY start_date ASC, id ASC`,
		model.SprintActive, day, day)
}

// UpdateSprint applies a partial update and returns the stored sprint.
func (db *DB) UpdateSprint(ctx context.Context, id int64, u model.SprintUpdate) (*model.Sprint, error) {
	sets := []string{}
	args := []any{}

	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *u.Name)
	}
	if u.StartDate != nil {
		sets = append(sets, "start_date = ?")
		args = append(args, u.StartDate.Format(model.DateLayout))
	}
	if u.EndDate != nil {
		sets = append(sets, "end_date = ?")
		args = append(args, u.EndDate.Format(model.DateLayout))
	}
	if u.Status != nil {
		if !u.Status.IsValid() {
			return nil, fmt.Errorf("invalid sprint status: %s", *u.Status)
		}
		sets = append(sets, "status = ?")
		args = append(args, *u.Status)
	}

	if len(sets) > 0 {
		args = append(args, id)
		result, err := db.ExecContext(ctx, `UPDATE sprints SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to update sprint: %w", err)
		}

		rows, _ := result.RowsAffected()
		if rows == 0 {
			return nil, fmt.Errorf("sprint %d: %w", id, ErrNotFound)
		}
	}

	return db.GetSprint(ctx, id)
}

// UpdateSprintStatus changes a sprint's lifecycle status.
func (db *DB) UpdateSprintStatus(ctx context.Context, id int64, status model.SprintStatus) (*model.Sprint, error) {
	return db.UpdateSprint(ctx, id, model.SprintUpdate{Status: &status})
}

// DeleteSprint removes a sprint. Its tasks are unlinked, not deleted.
func (db *DB) DeleteSprint(ctx context.Context, id int64) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE tasks SET sprint_id = NULL WHERE sprint_id = ?`, id); err != nil {
			return fmt.Errorf("failed to unlink sprint tasks: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM sprints WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete sprint: %w", err)
		}

		rows, _ := result.RowsAffected()
		if rows == 0 {
			return fmt.Errorf("sprint %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (db *DB) querySprints(ctx context.Context, query string, args ...any) ([]model.Sprint, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sprints: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sprints []model.Sprint
	for rows.Next() {
		s, err := scanSprint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sprint: %w", err)
		}
		sprints = append(sprints, *s)
	}
	return sprints, rows.Err()
}

func scanSprint(sc scanner) (*model.Sprint, error) {
	s := &model.Sprint{}
	var (
		start, end string
		createdBy  sql.NullInt64
		createdAt  int64
	)
	if err := sc.Scan(&s.ID, &s.Name, &start, &end, &s.Status, &createdBy, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if s.StartDate, err = time.Parse(model.DateLayout, start); err != nil {
		return nil, fmt.Errorf("sprint %d start date: %w", s.ID, err)
	}
	if s.EndDate, err = time.Parse(model.DateLayout, end); err != nil {
		return nil, fmt.Errorf("sprint %d end date: %w", s.ID, err)
	}
	if createdBy.Valid {
		s.CreatedBy = &createdBy.Int64
	}
	s.CreatedAt = time.Unix(0, createdAt)
	return s, nil
}
