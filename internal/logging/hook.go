package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook adds chat_id and event_id from the event context to log lines.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}

	if chatID, ok := GetChatID(ctx); ok {
		e.Int64("chat_id", chatID)
	}

	if eventID := GetEventID(ctx); eventID != "" {
		e.Str("event_id", eventID)
	}
}
