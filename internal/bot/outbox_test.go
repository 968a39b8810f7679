package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byronguina/sprintbot/internal/chat"
)

type countingRecorder struct {
	mu     sync.Mutex
	errors map[string]int
}

func (c *countingRecorder) ObserveEvent(string, time.Duration) {}
func (c *countingRecorder) IncCallback(string)                 {}
func (c *countingRecorder) AddTasksCreated(int)                {}
func (c *countingRecorder) SetActiveChats(int)                 {}

func (c *countingRecorder) IncTransportError(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.errors == nil {
		c.errors = map[string]int{}
	}
	c.errors[op]++
}

func TestOutbox_SplitsLongMessages(t *testing.T) {
	tr := newFakeTransport()
	out := NewOutbox(tr, time.Second, 20, nil)

	kb := chat.InlineKeyboard{}.Row(chat.Btn("ok", "main_menu"))
	text := strings.Repeat("line\n", 10)
	id := out.Send(context.Background(), 1, chat.HTMLText(text, kb))

	sent := tr.take()
	require.Greater(t, len(sent), 1)
	for i, a := range sent {
		assert.True(t, strings.HasPrefix(a.msg.Text, fmt.Sprintf("Parte %d de %d:", i+1, len(sent))), a.msg.Text)
		assert.True(t, a.msg.HTML)
		if i < len(sent)-1 {
			assert.Nil(t, a.msg.Inline, "only the last part carries the keyboard")
		}
	}
	assert.Equal(t, kb, sent[len(sent)-1].msg.Inline)
	assert.Equal(t, sent[len(sent)-1].messageID, id)
}

func TestOutbox_FailuresAreCounted(t *testing.T) {
	tr := newFakeTransport()
	tr.failOps["send"] = true
	tr.failOps["edit"] = true
	tr.failOps["delete"] = true
	rec := &countingRecorder{}
	out := NewOutbox(tr, time.Second, 0, rec)
	ctx := context.Background()

	assert.Zero(t, out.Send(ctx, 1, chat.Message{Text: "hi"}))
	assert.False(t, out.Edit(ctx, 1, 5, chat.Message{Text: "hi"}))
	assert.Zero(t, out.EditOrSend(ctx, 1, 5, chat.Message{Text: "hi"}))
	out.Delete(ctx, 1, 5)

	assert.Equal(t, map[string]int{"send": 2, "edit": 2, "delete": 1}, rec.errors)
}

func TestOutbox_EditOrSendFallsBack(t *testing.T) {
	tr := newFakeTransport()
	tr.failOps["edit"] = true
	out := NewOutbox(tr, time.Second, 0, nil)

	id := out.EditOrSend(context.Background(), 1, 5, chat.Message{Text: "hi"})

	sent := tr.take()
	require.Len(t, sent, 1)
	assert.Equal(t, "send", sent[0].op)
	assert.Equal(t, sent[0].messageID, id)
}

func TestOutbox_ZeroMessageID(t *testing.T) {
	tr := newFakeTransport()
	out := NewOutbox(tr, time.Second, 0, nil)

	assert.False(t, out.Edit(context.Background(), 1, 0, chat.Message{Text: "hi"}))
	out.Delete(context.Background(), 1, 0)
	assert.Empty(t, tr.take())
}
