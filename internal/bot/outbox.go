package bot

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/byronguina/sprintbot/internal/chat"
	"github.com/byronguina/sprintbot/internal/format"
	"github.com/byronguina/sprintbot/internal/logging"
	"github.com/byronguina/sprintbot/internal/metrics"
)

// Outbox delivers messages on a best-effort basis: every call is bounded by
// the send timeout and failures are logged and counted, never returned.
type Outbox struct {
	transport chat.Transport
	timeout   time.Duration
	maxChars  int
	rec       metrics.Recorder
	log       zerolog.Logger
}

func NewOutbox(t chat.Transport, timeout time.Duration, maxChars int, rec metrics.Recorder) *Outbox {
	if rec == nil {
		rec = metrics.Nop()
	}
	if maxChars <= 0 {
		maxChars = format.DefaultMaxChars
	}
	return &Outbox{
		transport: t,
		timeout:   timeout,
		maxChars:  maxChars,
		rec:       rec,
		log:       logging.Component("outbox"),
	}
}

func (o *Outbox) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.timeout)
}

// Send delivers msg, split into parts when it is too long. Only the last part
// carries the keyboard. It returns the id of the last part delivered, or 0.
func (o *Outbox) Send(ctx context.Context, chatID int64, msg chat.Message) int {
	parts := format.Split(msg.Text, o.maxChars)

	var last int
	for i, text := range parts {
		part := msg
		part.Text = text
		if i < len(parts)-1 {
			part.Inline = nil
			part.Reply = nil
			part.RemoveReply = false
		}

		sendCtx, cancel := o.bound(ctx)
		id, err := o.transport.Send(sendCtx, chatID, part)
		cancel()
		if err != nil {
			o.failed(ctx, "send", err)
			continue
		}
		last = id
	}
	return last
}

// Edit replaces the text and inline keyboard of a sent message. It reports
// whether the edit went through.
func (o *Outbox) Edit(ctx context.Context, chatID int64, messageID int, msg chat.Message) bool {
	if messageID == 0 {
		return false
	}
	editCtx, cancel := o.bound(ctx)
	defer cancel()
	if err := o.transport.Edit(editCtx, chatID, messageID, msg); err != nil {
		o.failed(ctx, "edit", err)
		return false
	}
	return true
}

// EditOrSend edits the message in place, falling back to a new message. It
// returns the id of whichever message now shows msg.
func (o *Outbox) EditOrSend(ctx context.Context, chatID int64, messageID int, msg chat.Message) int {
	if o.Edit(ctx, chatID, messageID, msg) {
		return messageID
	}
	return o.Send(ctx, chatID, msg)
}

func (o *Outbox) Delete(ctx context.Context, chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	delCtx, cancel := o.bound(ctx)
	defer cancel()
	if err := o.transport.Delete(delCtx, chatID, messageID); err != nil {
		o.failed(ctx, "delete", err)
	}
}

func (o *Outbox) failed(ctx context.Context, op string, err error) {
	o.rec.IncTransportError(op)
	o.log.Warn().Ctx(ctx).Err(err).Str("op", op).Msg("outbound call failed")
}
