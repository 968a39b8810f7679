package console

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byronguina/sprintbot/internal/chat"
)

const testChat int64 = 1

type recorder struct {
	mu     sync.Mutex
	events []chat.Event
}

func (r *recorder) Handle(_ context.Context, ev chat.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func TestTransport(t *testing.T) {
	tr := NewTransport(testChat)
	ctx := context.Background()

	changes := 0
	tr.OnChange(func() { changes++ })

	id1, err := tr.Send(ctx, testChat, chat.Message{Text: "one"})
	require.NoError(t, err)
	id2, err := tr.Send(ctx, testChat, chat.Message{Text: "two", Reply: &chat.ReplyKeyboard{Rows: [][]chat.ReplyKey{{{Text: "/start"}}}}})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	require.NoError(t, tr.Edit(ctx, testChat, id1, chat.Message{Text: "uno"}))
	require.NoError(t, tr.Delete(ctx, testChat, id2))

	entries, reply := tr.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, "uno", entries[0].Text)
	require.NotNil(t, reply)
	assert.Equal(t, 4, changes)

	_, err = tr.Send(ctx, testChat, chat.Message{Text: "bye", RemoveReply: true})
	require.NoError(t, err)
	_, reply = tr.Snapshot()
	assert.Nil(t, reply)

	assert.Error(t, tr.Edit(ctx, testChat, 999, chat.Message{Text: "x"}))
	assert.Error(t, tr.Delete(ctx, testChat, 999))
	_, err = tr.Send(ctx, 2, chat.Message{Text: "elsewhere"})
	assert.Error(t, err)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Hola Ana & Bo", plainText(Entry{Text: "<b>Hola</b> Ana &amp; Bo", HTML: true}))
	assert.Equal(t, "<b>raw</b>", plainText(Entry{Text: "<b>raw</b>"}))
}

func newTestModel(t *testing.T, phone string) (Model, *Transport, *recorder) {
	t.Helper()
	tr := NewTransport(testChat)
	rec := &recorder{}
	ctx := context.Background()

	_, err := tr.Send(ctx, testChat, chat.HTMLText("menu", chat.InlineKeyboard{}.
		Row(chat.Btn("Tareas", "list_tasks"), chat.Btn("Nueva", "add_task"))))
	require.NoError(t, err)
	_, err = tr.Send(ctx, testChat, chat.Message{Text: "verify", Reply: &chat.ReplyKeyboard{
		Rows: [][]chat.ReplyKey{{{Text: "share", RequestContact: true}, {Text: "/start"}}},
	}})
	require.NoError(t, err)

	m := New(ctx, tr, rec, testChat, phone)
	updated, _ := m.Update(refreshMsg{})
	return updated.(Model), tr, rec
}

func TestEventFor(t *testing.T) {
	m, _, _ := newTestModel(t, "+5215500000001")

	tests := []struct {
		input string
		want  chat.Event
		err   bool
	}{
		{input: "hola", want: chat.Event{Kind: chat.EventText, ChatID: testChat, SenderID: testChat, Text: "hola"}},
		{input: "#2", want: chat.Event{Kind: chat.EventCallback, ChatID: testChat, SenderID: testChat, MessageID: 1, CallbackID: "2", Data: "add_task"}},
		{input: "@1", want: chat.Event{Kind: chat.EventContact, ChatID: testChat, SenderID: testChat, Phone: "+5215500000001", ContactUserID: testChat}},
		{input: "@2", want: chat.Event{Kind: chat.EventText, ChatID: testChat, SenderID: testChat, Text: "/start"}},
		{input: "/contact", want: chat.Event{Kind: chat.EventContact, ChatID: testChat, SenderID: testChat, Phone: "+5215500000001", ContactUserID: testChat}},
		{input: "#9", err: true},
		{input: "#x", err: true},
		{input: "@3", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := m.eventFor(tt.input)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContactNeedsPhone(t *testing.T) {
	m, _, _ := newTestModel(t, "")

	_, err := m.eventFor("/contact")
	assert.Error(t, err)
}

func TestTypingAndSubmit(t *testing.T) {
	m, _, rec := newTestModel(t, "")

	var model tea.Model = m
	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("#1")},
		{Type: tea.KeyRunes, Runes: []rune("x")},
		{Type: tea.KeyBackspace},
	} {
		model, _ = model.Update(k)
	}
	assert.Equal(t, "#1", model.(Model).input)

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Empty(t, model.(Model).input)

	_, isHandled := cmd().(handledMsg)
	assert.True(t, isHandled)
	require.Len(t, rec.events, 1)
	assert.Equal(t, "list_tasks", rec.events[0].Data)
}

func TestSubmitBadButtonShowsError(t *testing.T) {
	m, _, rec := newTestModel(t, "")
	m.input = "#42"

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Error(t, model.(Model).err)
	assert.Contains(t, model.(Model).View(), "no button #42")
	assert.Empty(t, rec.events)
}

func TestViewNumbersButtons(t *testing.T) {
	m, _, _ := newTestModel(t, "")
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	view := updated.(Model).View()
	assert.Contains(t, view, "#1 Tareas")
	assert.Contains(t, view, "#2 Nueva")
	assert.Contains(t, view, "[@1] share")
}
