package session

import (
	"context"
	"fmt"
	"time"

	"github.com/byronguina/sprintbot/internal/db"
)

// KV is the subset of the database used by the persistent backends.
type KV interface {
	KVGet(ctx context.Context, key string, dest any) error
	KVSet(ctx context.Context, key string, value any) error
	KVSetTTL(ctx context.Context, key string, value any, ttl time.Duration) error
	KVDelete(ctx context.Context, key string) error
	KVSweepExpired(ctx context.Context) (int64, error)
}

// SQLiteStore persists sessions as JSON rows in the kv table so a restart
// does not drop a chat in the middle of a flow. Idle sessions expire after ttl.
type SQLiteStore struct {
	kv  KV
	ttl time.Duration
}

func NewSQLiteStore(kv KV, ttl time.Duration) *SQLiteStore {
	return &SQLiteStore{kv: kv, ttl: ttl}
}

func (s *SQLiteStore) Get(ctx context.Context, chatID int64) (Session, error) {
	var sess Session
	err := s.kv.KVGet(ctx, sessionKey(chatID), &sess)
	if db.IsNotFound(err) {
		return New(), nil
	}
	if err != nil {
		return New(), fmt.Errorf("failed to load session: %w", err)
	}
	if !sess.State.IsValid() {
		return New(), nil
	}
	return sess, nil
}

func (s *SQLiteStore) Put(ctx context.Context, chatID int64, sess Session) error {
	sess.UpdatedAt = time.Now()
	if err := s.kv.KVSetTTL(ctx, sessionKey(chatID), sess, s.ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context, chatID int64) error {
	if err := s.kv.KVDelete(ctx, sessionKey(chatID)); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SweepExpired(ctx context.Context) (int64, error) {
	return s.kv.KVSweepExpired(ctx)
}

// SQLiteAuthorizations persists verified chats without expiry.
type SQLiteAuthorizations struct {
	kv KV
}

func NewSQLiteAuthorizations(kv KV) *SQLiteAuthorizations {
	return &SQLiteAuthorizations{kv: kv}
}

func (a *SQLiteAuthorizations) Lookup(ctx context.Context, chatID int64) (int64, bool, error) {
	var userID int64
	err := a.kv.KVGet(ctx, authKey(chatID), &userID)
	if db.IsNotFound(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up authorization: %w", err)
	}
	return userID, true, nil
}

func (a *SQLiteAuthorizations) Remember(ctx context.Context, chatID, userID int64) error {
	if err := a.kv.KVSet(ctx, authKey(chatID), userID); err != nil {
		return fmt.Errorf("failed to save authorization: %w", err)
	}
	return nil
}

func (a *SQLiteAuthorizations) Forget(ctx context.Context, chatID int64) error {
	if err := a.kv.KVDelete(ctx, authKey(chatID)); err != nil {
		return fmt.Errorf("failed to forget authorization: %w", err)
	}
	return nil
}
