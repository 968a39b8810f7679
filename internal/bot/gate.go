package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/byronguina/sprintbot/internal/db"
	"github.com/byronguina/sprintbot/internal/model"
	"github.com/byronguina/sprintbot/internal/session"
)

// Users is the part of the store the gate needs.
type Users interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*model.User, error)
}

// Gate maps verified chats to users. Verification is remembered in auths;
// resolved users are cached in memory.
type Gate struct {
	users Users
	auths session.Authorizations

	mu    sync.RWMutex
	cache map[int64]model.User
}

func NewGate(users Users, auths session.Authorizations) *Gate {
	return &Gate{users: users, auths: auths, cache: make(map[int64]model.User)}
}

// User returns the verified user of a chat, or nil when the chat has not
// verified or its user no longer exists.
func (g *Gate) User(ctx context.Context, chatID int64) (*model.User, error) {
	g.mu.RLock()
	u, ok := g.cache[chatID]
	g.mu.RUnlock()
	if ok {
		return &u, nil
	}

	userID, ok, err := g.auths.Lookup(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up chat authorization: %w", err)
	}
	if !ok {
		return nil, nil
	}

	user, err := g.users.GetUser(ctx, userID)
	if db.IsNotFound(err) {
		_ = g.auths.Forget(ctx, chatID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.cache[chatID] = *user
	g.mu.Unlock()
	return user, nil
}

// Verify matches a shared phone number against registered users. It returns
// nil when the number is unknown.
func (g *Gate) Verify(ctx context.Context, chatID int64, phone string) (*model.User, error) {
	user, err := g.users.GetUserByPhone(ctx, model.NormalizePhone(phone))
	if db.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := g.auths.Remember(ctx, chatID, user.ID); err != nil {
		return nil, fmt.Errorf("failed to remember authorization: %w", err)
	}
	g.mu.Lock()
	g.cache[chatID] = *user
	g.mu.Unlock()
	return user, nil
}

// Forget drops a chat's verification.
func (g *Gate) Forget(ctx context.Context, chatID int64) error {
	g.mu.Lock()
	delete(g.cache, chatID)
	g.mu.Unlock()
	return g.auths.Forget(ctx, chatID)
}
