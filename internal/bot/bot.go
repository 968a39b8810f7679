// Package bot implements the per-chat conversation state machine: inbound
// events pass the identity gate, move the chat's session between states and
// produce outbound messages through the outbox.
package bot

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/byronguina/sprintbot/internal/chat"
	"github.com/byronguina/sprintbot/internal/format"
	"github.com/byronguina/sprintbot/internal/logging"
	"github.com/byronguina/sprintbot/internal/metrics"
	"github.com/byronguina/sprintbot/internal/model"
	"github.com/byronguina/sprintbot/internal/session"
)

// Store is the domain storage the state machine works against.
type Store interface {
	Users
	ListUsers(ctx context.Context) ([]model.User, error)
	ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error)

	GetTask(ctx context.Context, id int64) (*model.Task, error)
	ListTasks(ctx context.Context, f model.TaskFilter) ([]model.Task, error)
	CreateTasks(ctx context.Context, tasks []*model.Task) error
	UpdateTask(ctx context.Context, id int64, u model.TaskUpdate) (*model.Task, error)
	DeleteTask(ctx context.Context, id int64) error

	GetSprint(ctx context.Context, id int64) (*model.Sprint, error)
	ListSprints(ctx context.Context) ([]model.Sprint, error)
}

// Settings tunes the state machine.
type Settings struct {
	RefreshDelay           time.Duration
	CompletionRefreshDelay time.Duration
	MaxSubtaskHours        float64
}

// DefaultSettings mirrors the configuration defaults.
func DefaultSettings() Settings {
	return Settings{
		RefreshDelay:           2 * time.Second,
		CompletionRefreshDelay: 2500 * time.Millisecond,
		MaxSubtaskHours:        4,
	}
}

// Options wires a Bot.
type Options struct {
	Store          Store
	Sessions       session.Store
	Authorizations session.Authorizations
	Outbox         *Outbox
	Scheduler      Scheduler
	Metrics        metrics.Recorder
	Settings       Settings
	Now            func() time.Time
}

type Bot struct {
	store    Store
	sessions session.Store
	gate     *Gate
	out      *Outbox
	sched    Scheduler
	rec      metrics.Recorder
	cfg      Settings
	now      func() time.Time
	log      zerolog.Logger
}

func New(opts Options) *Bot {
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Settings.MaxSubtaskHours <= 0 {
		opts.Settings.MaxSubtaskHours = DefaultSettings().MaxSubtaskHours
	}
	return &Bot{
		store:    opts.Store,
		sessions: opts.Sessions,
		gate:     NewGate(opts.Store, opts.Authorizations),
		out:      opts.Outbox,
		sched:    opts.Scheduler,
		rec:      opts.Metrics,
		cfg:      opts.Settings,
		now:      opts.Now,
		log:      logging.Component("bot"),
	}
}

// turn is the state one event is handled with.
type turn struct {
	ev   chat.Event
	user model.User
	sess session.Session
}

func (t *turn) chatID() int64 { return t.ev.ChatID }

// Handle processes one inbound event to completion. Calls for the same chat
// must not overlap; the Dispatcher guarantees that.
func (b *Bot) Handle(ctx context.Context, ev chat.Event) {
	start := time.Now()
	ctx = logging.WithEventID(logging.WithChatID(ctx, ev.ChatID), uuid.NewString())
	defer func() { b.rec.ObserveEvent(string(ev.Kind), time.Since(start)) }()

	b.log.Debug().Ctx(ctx).Str("kind", string(ev.Kind)).Msg("event received")

	user, err := b.gate.User(ctx, ev.ChatID)
	if err != nil {
		b.log.Error().Ctx(ctx).Err(err).Msg("failed to resolve chat user")
		return
	}
	if user == nil {
		b.handleUnverified(ctx, ev)
		return
	}

	sess, err := b.sessions.Get(ctx, ev.ChatID)
	if err != nil {
		b.log.Warn().Ctx(ctx).Err(err).Msg("failed to load session, starting fresh")
		sess = session.New()
	}

	t := &turn{ev: ev, user: *user, sess: sess}
	switch ev.Kind {
	case chat.EventText:
		b.handleText(ctx, t)
	case chat.EventCallback:
		b.handleCallback(ctx, t)
	case chat.EventContact:
		b.showMainMenu(ctx, t)
	}

	if t.sess != sess {
		b.saveSession(ctx, t)
	}
}

func (b *Bot) saveSession(ctx context.Context, t *turn) {
	var err error
	if t.sess.Idle() {
		err = b.sessions.Clear(ctx, t.chatID())
	} else {
		err = b.sessions.Put(ctx, t.chatID(), t.sess)
	}
	if err != nil {
		b.log.Error().Ctx(ctx).Err(err).Str("state", string(t.sess.State)).Msg("failed to save session")
	}
}

func (b *Bot) handleUnverified(ctx context.Context, ev chat.Event) {
	switch {
	case ev.Kind == chat.EventContact:
		if ev.ContactUserID != 0 && ev.ContactUserID != ev.SenderID {
			b.out.Send(ctx, ev.ChatID, format.ForeignContact())
			return
		}
		user, err := b.gate.Verify(ctx, ev.ChatID, ev.Phone)
		if err != nil {
			b.log.Error().Ctx(ctx).Err(err).Msg("failed to verify contact")
			return
		}
		if user == nil {
			b.log.Info().Ctx(ctx).Msg("contact not registered")
			b.out.Send(ctx, ev.ChatID, format.NotRegistered())
			return
		}
		b.log.Info().Ctx(ctx).Int64("user_id", user.ID).Msg("chat verified")
		b.out.Send(ctx, ev.ChatID, format.AccessVerified())
		b.out.Send(ctx, ev.ChatID, format.MainMenu(*user))
	case ev.Kind == chat.EventText && isCommand(ev.Text, "/start"):
		b.out.Send(ctx, ev.ChatID, format.RequestContact())
	default:
		b.out.Send(ctx, ev.ChatID, format.PleaseVerify())
	}
}

// isCommand matches "/cmd" and "/cmd@botname".
func isCommand(text, cmd string) bool {
	text = strings.TrimSpace(text)
	head, _, _ := strings.Cut(text, " ")
	head, _, _ = strings.Cut(head, "@")
	return head == cmd
}

// commandArg returns what follows the command word.
func commandArg(text string) string {
	_, arg, _ := strings.Cut(strings.TrimSpace(text), " ")
	return strings.TrimSpace(arg)
}

func (b *Bot) send(ctx context.Context, t *turn, msg chat.Message) int {
	return b.out.Send(ctx, t.chatID(), msg)
}

// replace deletes the message whose button was pressed and sends msg.
func (b *Bot) replace(ctx context.Context, t *turn, msg chat.Message) int {
	if t.ev.Kind == chat.EventCallback {
		b.out.Delete(ctx, t.chatID(), t.ev.MessageID)
	}
	return b.out.Send(ctx, t.chatID(), msg)
}

// editPressed shows msg in place of the message whose button was pressed.
func (b *Bot) editPressed(ctx context.Context, t *turn, msg chat.Message) int {
	if t.ev.Kind != chat.EventCallback {
		return b.send(ctx, t, msg)
	}
	return b.out.EditOrSend(ctx, t.chatID(), t.ev.MessageID, msg)
}

// later schedules fn behind the chat's other work.
func (b *Bot) later(ctx context.Context, t *turn, delay time.Duration, fn func(context.Context)) {
	chatID := t.chatID()
	if b.sched == nil {
		fn(ctx)
		return
	}
	eventID := logging.GetEventID(ctx)
	b.sched.After(chatID, delay, func(ctx context.Context) {
		fn(logging.WithEventID(logging.WithChatID(ctx, chatID), eventID))
	})
}

func (b *Bot) showMainMenu(ctx context.Context, t *turn) {
	t.sess.Reset()
	b.replace(ctx, t, format.MainMenu(t.user))
}

// mainMenuLater sends the main menu after the refresh delay.
func (b *Bot) mainMenuLater(ctx context.Context, t *turn) {
	user := t.user
	b.later(ctx, t, b.cfg.RefreshDelay, func(ctx context.Context) {
		b.out.Send(ctx, t.chatID(), format.MainMenu(user))
	})
}

// fail reports a storage failure to the chat and ends any flow.
func (b *Bot) fail(ctx context.Context, t *turn, err error, text string) {
	b.log.Error().Ctx(ctx).Err(err).Str("state", string(t.sess.State)).Msg("storage call failed")
	t.sess.Reset()
	b.send(ctx, t, format.Failure(text))
}

func (b *Bot) directory(ctx context.Context) (format.Directory, error) {
	users, err := b.store.ListUsers(ctx)
	if err != nil {
		return format.Directory{}, err
	}
	sprints, err := b.store.ListSprints(ctx)
	if err != nil {
		return format.Directory{}, err
	}
	return format.NewDirectory(users, sprints), nil
}

func (b *Bot) allTasks(ctx context.Context) ([]model.Task, error) {
	return b.store.ListTasks(ctx, model.TaskFilter{})
}
