package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/byronguina/sprintbot/internal/chat"
	"github.com/byronguina/sprintbot/internal/logging"
)

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// Poller long-polls getUpdates and hands every usable update to a handler.
type Poller struct {
	api     API
	client  *Client
	timeout time.Duration
	log     zerolog.Logger
}

// NewPoller polls api with the given long-poll timeout. Callback answers go
// through client.
func NewPoller(api API, client *Client, timeout time.Duration) *Poller {
	return &Poller{
		api:     api,
		client:  client,
		timeout: timeout,
		log:     logging.Component("telegram"),
	}
}

type pollResult struct {
	updates []tgbotapi.Update
	err     error
}

// Run polls until ctx is cancelled. Failed polls are retried with backoff.
func (p *Poller) Run(ctx context.Context, h chat.Handler) error {
	offset := 0
	backoff := minBackoff

	for {
		if ctx.Err() != nil {
			return nil
		}

		updates, err := p.poll(ctx, offset)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			p.log.Warn().Err(err).Dur("retry_in", backoff).Msg("poll failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = minBackoff

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			p.dispatch(ctx, u, h)
		}
	}
}

// poll runs one getUpdates call, returning early when ctx ends. The call
// itself is bounded by the HTTP client timeout.
func (p *Poller) poll(ctx context.Context, offset int) ([]tgbotapi.Update, error) {
	cfg := tgbotapi.NewUpdate(offset)
	cfg.Timeout = int(p.timeout / time.Second)
	cfg.AllowedUpdates = []string{"message", "callback_query"}

	done := make(chan pollResult, 1)
	go func() {
		updates, err := p.api.GetUpdates(cfg)
		done <- pollResult{updates: updates, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.updates, r.err
	}
}

func (p *Poller) dispatch(ctx context.Context, u tgbotapi.Update, h chat.Handler) {
	ev, ok := Convert(u)
	if !ok {
		p.log.Debug().Int("update_id", u.UpdateID).Msg("skipping unsupported update")
		return
	}
	if ev.Kind == chat.EventCallback && p.client != nil {
		if err := p.client.answerCallback(ev.CallbackID); err != nil {
			p.log.Warn().Err(err).Int64("chat_id", ev.ChatID).Msg("callback answer failed")
		}
	}
	h.Handle(ctx, ev)
}

// Convert maps an update to a chat event. Updates without a chat, and
// messages with neither text nor a contact, are skipped.
func Convert(u tgbotapi.Update) (chat.Event, bool) {
	switch {
	case u.CallbackQuery != nil:
		q := u.CallbackQuery
		if q.Message == nil || q.Message.Chat == nil {
			return chat.Event{}, false
		}
		ev := chat.Event{
			Kind:       chat.EventCallback,
			ChatID:     q.Message.Chat.ID,
			MessageID:  q.Message.MessageID,
			CallbackID: q.ID,
			Data:       q.Data,
		}
		if q.From != nil {
			ev.SenderID = q.From.ID
		}
		return ev, true

	case u.Message != nil:
		m := u.Message
		if m.Chat == nil {
			return chat.Event{}, false
		}
		ev := chat.Event{ChatID: m.Chat.ID, MessageID: m.MessageID}
		if m.From != nil {
			ev.SenderID = m.From.ID
		}
		switch {
		case m.Contact != nil:
			ev.Kind = chat.EventContact
			ev.Phone = m.Contact.PhoneNumber
			ev.ContactUserID = m.Contact.UserID
		case m.Text != "":
			ev.Kind = chat.EventText
			ev.Text = m.Text
		default:
			return chat.Event{}, false
		}
		return ev, true
	}
	return chat.Event{}, false
}
