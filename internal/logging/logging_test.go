package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextValues(t *testing.T) {
	ctx := WithEventID(WithChatID(context.Background(), 42), "evt-1")

	chatID, ok := GetChatID(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(42), chatID)
	assert.Equal(t, "evt-1", GetEventID(ctx))

	_, ok = GetChatID(context.Background())
	assert.False(t, ok)
	assert.Empty(t, GetEventID(context.Background()))
}

func TestContextHook_Run(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		wantKeys  []string
		wantEmpty []string
	}{
		{
			name:     "chat and event",
			ctx:      WithEventID(WithChatID(context.Background(), 7), "evt-9"),
			wantKeys: []string{"chat_id", "event_id"},
		},
		{
			name:      "only chat",
			ctx:       WithChatID(context.Background(), 7),
			wantKeys:  []string{"chat_id"},
			wantEmpty: []string{"event_id"},
		},
		{
			name:      "background",
			ctx:       context.Background(),
			wantEmpty: []string{"chat_id", "event_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf).Hook(ContextHook{})
			logger.Info().Ctx(tt.ctx).Msg("hello")

			var fields map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &fields))
			for _, k := range tt.wantKeys {
				assert.Contains(t, fields, k)
			}
			for _, k := range tt.wantEmpty {
				assert.NotContains(t, fields, k)
			}
		})
	}
}

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bot.log")

	logger, closer, err := New("warn", path)
	require.NoError(t, err)

	logger.Info().Msg("dropped")
	logger.Warn().Msg("kept")
	closer()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, closer, err := New("loud", "")
	defer closer()
	assert.Error(t, err)
}
