package logging

import "context"

type contextKey string

const (
	chatIDKey  contextKey = "chat_id"
	eventIDKey contextKey = "event_id"
)

// WithChatID adds a chat ID to the context.
func WithChatID(ctx context.Context, chatID int64) context.Context {
	return context.WithValue(ctx, chatIDKey, chatID)
}

// WithEventID adds an inbound event ID to the context.
func WithEventID(ctx context.Context, eventID string) context.Context {
	return context.WithValue(ctx, eventIDKey, eventID)
}

// GetChatID retrieves the chat ID from the context.
func GetChatID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(chatIDKey).(int64)
	return id, ok
}

// GetEventID retrieves the event ID from the context.
// Returns empty string if not present.
func GetEventID(ctx context.Context) string {
	if id, ok := ctx.Value(eventIDKey).(string); ok {
		return id
	}
	return ""
}
