package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/byronguina/sprintbot/internal/model"
)

const userColumns = `id, username, password, role, phone, name`

// CreateUser inserts a user and sets its generated ID.
// The phone number is stored normalized.
func (db *DB) CreateUser(ctx context.Context, u *model.User) error {
	if !u.Role.IsValid() {
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	if u.Username == "" {
		return fmt.Errorf("username is required")
	}

	u.Phone = model.NormalizePhone(u.Phone)
	result, err := db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, phone, name)
		VALUES (?, ?, ?, ?, ?)`,
		u.Username, u.Password, u.Role, u.Phone, u.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	u.ID = id
	return nil
}

// GetUser retrieves a user by ID.
func (db *DB) GetUser(ctx context.Context, id int64) (*model.User, error) {
	row := db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUserByPhone looks a user up by phone number. Both sides are compared normalized.
func (db *DB) GetUserByPhone(ctx context.Context, phone string) (*model.User, error) {
	phone = model.NormalizePhone(phone)
	if phone == "" {
		return nil, fmt.Errorf("user with empty phone: %w", ErrNotFound)
	}

	row := db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE phone = ?`, phone)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user with phone %s: %w", phone, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by phone: %w", err)
	}
	return u, nil
}

// GetUserByUsername retrieves a user by username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	row := db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// ListUsers returns all users ordered by ID.
func (db *DB) ListUsers(ctx context.Context) ([]model.User, error) {
	return db.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
}

// ListUsersByRole returns users with the given role ordered by ID.
func (db *DB) ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role: %s", role)
	}
	return db.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY id`, role)
}

func (db *DB) queryUsers(ctx context.Context, query string, args ...any) ([]model.User, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	u := &model.User{}
	if err := s.Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.Phone, &u.Name); err != nil {
		return nil, err
	}
	return u, nil
}
