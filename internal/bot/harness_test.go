package bot

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/byronguina/sprintbot/internal/chat"
	"github.com/byronguina/sprintbot/internal/db"
	"github.com/byronguina/sprintbot/internal/model"
	"github.com/byronguina/sprintbot/internal/session"
)

type action struct {
	op        string // send, edit or delete
	chatID    int64
	messageID int
	msg       chat.Message
}

// fakeTransport records outbound calls. Send hands out increasing ids.
type fakeTransport struct {
	mu      sync.Mutex
	nextID  int
	actions []action
	failOps map[string]bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{nextID: 1000, failOps: map[string]bool{}}
}

var errTransport = errors.New("transport down")

func (f *fakeTransport) Send(_ context.Context, chatID int64, msg chat.Message) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOps["send"] {
		return 0, errTransport
	}
	f.nextID++
	f.actions = append(f.actions, action{op: "send", chatID: chatID, messageID: f.nextID, msg: msg})
	return f.nextID, nil
}

func (f *fakeTransport) Edit(_ context.Context, chatID int64, messageID int, msg chat.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOps["edit"] {
		return errTransport
	}
	f.actions = append(f.actions, action{op: "edit", chatID: chatID, messageID: messageID, msg: msg})
	return nil
}

func (f *fakeTransport) Delete(_ context.Context, chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOps["delete"] {
		return errTransport
	}
	f.actions = append(f.actions, action{op: "delete", chatID: chatID, messageID: messageID})
	return nil
}

// take returns the actions recorded since the last call.
func (f *fakeTransport) take() []action {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.actions
	f.actions = nil
	return out
}

// manualScheduler holds continuations until the test runs them.
type manualScheduler struct {
	pending []func(context.Context)
}

func (m *manualScheduler) After(_ int64, _ time.Duration, fn func(context.Context)) {
	m.pending = append(m.pending, fn)
}

func (m *manualScheduler) runAll() {
	pending := m.pending
	m.pending = nil
	for _, fn := range pending {
		fn(context.Background())
	}
}

const (
	managerChat  int64 = 100
	devChat      int64 = 200
	strangerChat int64 = 300
)

type harness struct {
	t        *testing.T
	db       *db.DB
	bot      *Bot
	tr       *fakeTransport
	sched    *manualScheduler
	sessions *session.MemoryStore
	auths    *session.MemoryAuthorizations
	manager  *model.User
	dev      *model.User
	now      time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store, err := db.Open(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	require.NoError(t, store.Init())
	t.Cleanup(func() { _ = store.Close() })

	h := &harness{
		t:        t,
		db:       store,
		tr:       newFakeTransport(),
		sched:    &manualScheduler{},
		sessions: session.NewMemoryStore(0),
		auths:    session.NewMemoryAuthorizations(),
		now:      time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC),
	}
	h.manager = h.createUser("mia", model.RoleManager, "5215500000001")
	h.dev = h.createUser("dan", model.RoleDeveloper, "5215500000002")

	h.bot = New(Options{
		Store:          store,
		Sessions:       h.sessions,
		Authorizations: h.auths,
		Outbox:         NewOutbox(h.tr, time.Second, 4000, nil),
		Scheduler:      h.sched,
		Settings:       DefaultSettings(),
		Now:            func() time.Time { return h.now },
	})

	ctx := context.Background()
	require.NoError(t, h.auths.Remember(ctx, managerChat, h.manager.ID))
	require.NoError(t, h.auths.Remember(ctx, devChat, h.dev.ID))
	return h
}

func (h *harness) createUser(username string, role model.Role, phone string) *model.User {
	h.t.Helper()
	u := &model.User{Username: username, Name: strings.ToUpper(username[:1]) + username[1:], Role: role, Phone: phone}
	require.NoError(h.t, h.db.CreateUser(context.Background(), u))
	return u
}

func (h *harness) createSprint(name string) *model.Sprint {
	h.t.Helper()
	s := &model.Sprint{
		Name:      name,
		StartDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:    model.SprintActive,
	}
	require.NoError(h.t, h.db.CreateSprint(context.Background(), s))
	return s
}

func (h *harness) createTask(task model.Task) *model.Task {
	h.t.Helper()
	if task.CreatedBy == 0 {
		task.CreatedBy = h.manager.ID
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = h.now
	}
	require.NoError(h.t, h.db.CreateTask(context.Background(), &task))
	return &task
}

func (h *harness) task(id int64) *model.Task {
	h.t.Helper()
	task, err := h.db.GetTask(context.Background(), id)
	require.NoError(h.t, err)
	return task
}

func (h *harness) text(chatID int64, text string) []action {
	h.bot.Handle(context.Background(), chat.Event{Kind: chat.EventText, ChatID: chatID, SenderID: chatID, Text: text})
	return h.tr.take()
}

func (h *harness) press(chatID int64, messageID int, data string) []action {
	h.bot.Handle(context.Background(), chat.Event{
		Kind: chat.EventCallback, ChatID: chatID, SenderID: chatID,
		MessageID: messageID, CallbackID: "cb", Data: data,
	})
	return h.tr.take()
}

func (h *harness) contact(chatID, contactUserID int64, phone string) []action {
	h.bot.Handle(context.Background(), chat.Event{
		Kind: chat.EventContact, ChatID: chatID, SenderID: chatID,
		ContactUserID: contactUserID, Phone: phone,
	})
	return h.tr.take()
}

func (h *harness) session(chatID int64) session.Session {
	h.t.Helper()
	s, err := h.sessions.Get(context.Background(), chatID)
	require.NoError(h.t, err)
	return s
}

func (h *harness) setSession(chatID int64, s session.Session) {
	h.t.Helper()
	require.NoError(h.t, h.sessions.Put(context.Background(), chatID, s))
}

// sends filters the send actions.
func sends(actions []action) []action {
	var out []action
	for _, a := range actions {
		if a.op == "send" {
			out = append(out, a)
		}
	}
	return out
}

func lastText(t *testing.T, actions []action) string {
	t.Helper()
	require.NotEmpty(t, actions)
	return actions[len(actions)-1].msg.Text
}

func hasButton(msg chat.Message, data string) bool {
	for _, b := range msg.Inline.Buttons() {
		if b.Data == data {
			return true
		}
	}
	return false
}
