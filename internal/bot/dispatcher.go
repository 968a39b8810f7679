package bot

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/byronguina/sprintbot/internal/chat"
	"github.com/byronguina/sprintbot/internal/logging"
	"github.com/byronguina/sprintbot/internal/metrics"
)

// Scheduler runs delayed work behind a chat's other work.
type Scheduler interface {
	// After queues fn for the chat once d has elapsed. A later call for the
	// same chat, or a new inbound event, replaces the pending one.
	After(chatID int64, d time.Duration, fn func(context.Context))
}

type job func(context.Context)

type chatQueue struct {
	jobs    []job
	running bool
	timer   *time.Timer
	gen     uint64
}

// Dispatcher runs a handler one event at a time per chat while different
// chats proceed in parallel.
type Dispatcher struct {
	mu      sync.Mutex
	handler chat.Handler
	ctx     context.Context
	chats   map[int64]*chatQueue
	closed  bool
	wg      sync.WaitGroup
	rec     metrics.Recorder
	log     zerolog.Logger
}

func NewDispatcher(rec metrics.Recorder) *Dispatcher {
	if rec == nil {
		rec = metrics.Nop()
	}
	return &Dispatcher{
		ctx:   context.Background(),
		chats: make(map[int64]*chatQueue),
		rec:   rec,
		log:   logging.Component("dispatcher"),
	}
}

// Start sets the handler that queued events are delivered to. Handlers run
// on a context that keeps ctx's values but is not cancelled with it, so work
// already queued at shutdown still completes.
func (d *Dispatcher) Start(ctx context.Context, h chat.Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ctx = context.WithoutCancel(ctx)
	d.handler = h
}

// Handle queues an inbound event. It cancels any delayed work pending for
// the chat and never blocks on the handler.
func (d *Dispatcher) Handle(_ context.Context, ev chat.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || d.handler == nil {
		d.log.Warn().Int64("chat_id", ev.ChatID).Msg("dispatcher not accepting events, dropping")
		return
	}
	q := d.queue(ev.ChatID)
	d.stopTimer(q)
	h := d.handler
	d.enqueue(ev.ChatID, q, func(ctx context.Context) { h.Handle(ctx, ev) })
}

// After implements Scheduler.
func (d *Dispatcher) After(chatID int64, delay time.Duration, fn func(context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	q := d.queue(chatID)
	d.stopTimer(q)
	gen := q.gen
	q.timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.closed || q.gen != gen {
			return
		}
		q.timer = nil
		d.enqueue(chatID, q, fn)
	})
}

// Stop cancels pending timers, refuses new events and waits for queued work
// to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	d.closed = true
	for _, q := range d.chats {
		d.stopTimer(q)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// Pending reports how many chats hold queued work or a timer.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.chats)
}

// queue returns the chat's queue, creating it. Callers hold d.mu.
func (d *Dispatcher) queue(chatID int64) *chatQueue {
	q, ok := d.chats[chatID]
	if !ok {
		q = &chatQueue{}
		d.chats[chatID] = q
		d.rec.SetActiveChats(len(d.chats))
	}
	return q
}

// stopTimer cancels the chat's pending continuation. Callers hold d.mu.
func (d *Dispatcher) stopTimer(q *chatQueue) {
	q.gen++
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}

// enqueue appends work and starts a drainer when none runs. Callers hold d.mu.
func (d *Dispatcher) enqueue(chatID int64, q *chatQueue, j job) {
	q.jobs = append(q.jobs, j)
	if q.running {
		return
	}
	q.running = true
	d.wg.Add(1)
	go d.drain(chatID, q)
}

func (d *Dispatcher) drain(chatID int64, q *chatQueue) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		if len(q.jobs) == 0 {
			q.running = false
			if q.timer == nil && d.chats[chatID] == q {
				delete(d.chats, chatID)
				d.rec.SetActiveChats(len(d.chats))
			}
			d.mu.Unlock()
			return
		}
		j := q.jobs[0]
		q.jobs = q.jobs[1:]
		ctx := d.ctx
		d.mu.Unlock()

		d.run(ctx, chatID, j)
	}
}

func (d *Dispatcher) run(ctx context.Context, chatID int64, j job) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Int64("chat_id", chatID).Interface("panic", r).Msg("handler panicked")
		}
	}()
	j(ctx)
}
