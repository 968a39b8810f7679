package session

import "context"

// Authorizations remembers which user verified each chat.
type Authorizations interface {
	Lookup(ctx context.Context, chatID int64) (userID int64, ok bool, err error)
	Remember(ctx context.Context, chatID, userID int64) error
	Forget(ctx context.Context, chatID int64) error
}
