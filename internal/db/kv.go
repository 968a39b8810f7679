package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// KVGet deserializes the value stored under key into dest.
// Expired entries are lazily deleted and reported as ErrNotFound.
func (db *DB) KVGet(ctx context.Context, key string, dest any) error {
	var (
		value     []byte
		expiresAt sql.NullInt64
	)
	err := db.QueryRowContext(ctx, `SELECT value, expires_at FROM kv WHERE key = ?`, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("kv get %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("kv get %q: %w", key, err)
	}

	if expiresAt.Valid && time.Now().UnixNano() > expiresAt.Int64 {
		_ = db.KVDelete(ctx, key)
		return fmt.Errorf("kv get %q: %w", key, ErrNotFound)
	}

	if err := json.Unmarshal(value, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}
	return nil
}

// KVSet stores a value with no expiry.
func (db *DB) KVSet(ctx context.Context, key string, value any) error {
	return db.kvSet(ctx, key, value, sql.NullInt64{})
}

// KVSetTTL stores a value that expires after ttl.
func (db *DB) KVSetTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl).UnixNano()
	return db.kvSet(ctx, key, value, sql.NullInt64{Int64: expiresAt, Valid: true})
}

// KVDelete removes a key. Deleting a missing key is not an error.
func (db *DB) KVDelete(ctx context.Context, key string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

// KVSweepExpired deletes every entry whose TTL has passed and returns how many were removed.
func (db *DB) KVSweepExpired(ctx context.Context) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM kv WHERE expires_at IS NOT NULL AND expires_at < ?`, time.Now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("kv sweep expired: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

func (db *DB) kvSet(ctx context.Context, key string, value any, expiresAt sql.NullInt64) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}

	now := time.Now().UnixNano()
	_, err = db.ExecContext(ctx, `
		INSERT INTO kv (key, value, created_at, updated_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at,
			expires_at = excluded.expires_at`,
		key, data, now, now, expiresAt)
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}
