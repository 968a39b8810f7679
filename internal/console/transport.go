package console

import (
	"context"
	"fmt"
	"sync"

	"github.com/byronguina/sprintbot/internal/chat"
)

// maxEntries bounds the transcript kept in memory.
const maxEntries = 200

// Entry is one bot message as the console shows it.
type Entry struct {
	ID     int
	Text   string
	HTML   bool
	Inline chat.InlineKeyboard
}

// Transport implements chat.Transport for the single chat the console plays.
// Messages for other chats are rejected.
type Transport struct {
	chatID int64

	mu      sync.Mutex
	nextID  int
	entries []Entry
	reply   *chat.ReplyKeyboard
	notify  func()
}

func NewTransport(chatID int64) *Transport {
	return &Transport{chatID: chatID}
}

// OnChange registers fn to run after every change to the transcript.
func (t *Transport) OnChange(fn func()) {
	t.mu.Lock()
	t.notify = fn
	t.mu.Unlock()
}

func (t *Transport) Send(_ context.Context, chatID int64, msg chat.Message) (int, error) {
	if chatID != t.chatID {
		return 0, fmt.Errorf("console serves chat %d, not %d", t.chatID, chatID)
	}

	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.entries = append(t.entries, Entry{ID: id, Text: msg.Text, HTML: msg.HTML, Inline: msg.Inline})
	if len(t.entries) > maxEntries {
		t.entries = t.entries[len(t.entries)-maxEntries:]
	}
	switch {
	case msg.Reply != nil:
		t.reply = msg.Reply
	case msg.RemoveReply:
		t.reply = nil
	}
	notify := t.notify
	t.mu.Unlock()

	if notify != nil {
		notify()
	}
	return id, nil
}

func (t *Transport) Edit(_ context.Context, chatID int64, messageID int, msg chat.Message) error {
	if chatID != t.chatID {
		return fmt.Errorf("console serves chat %d, not %d", t.chatID, chatID)
	}

	t.mu.Lock()
	i := t.find(messageID)
	if i < 0 {
		t.mu.Unlock()
		return fmt.Errorf("message %d not found", messageID)
	}
	t.entries[i].Text = msg.Text
	t.entries[i].HTML = msg.HTML
	t.entries[i].Inline = msg.Inline
	notify := t.notify
	t.mu.Unlock()

	if notify != nil {
		notify()
	}
	return nil
}

func (t *Transport) Delete(_ context.Context, chatID int64, messageID int) error {
	if chatID != t.chatID {
		return fmt.Errorf("console serves chat %d, not %d", t.chatID, chatID)
	}

	t.mu.Lock()
	i := t.find(messageID)
	if i < 0 {
		t.mu.Unlock()
		return fmt.Errorf("message %d not found", messageID)
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	notify := t.notify
	t.mu.Unlock()

	if notify != nil {
		notify()
	}
	return nil
}

// Snapshot copies the transcript and the reply keyboard currently shown.
func (t *Transport) Snapshot() ([]Entry, *chat.ReplyKeyboard) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry(nil), t.entries...), t.reply
}

// find returns the index of a message. Callers hold t.mu.
func (t *Transport) find(messageID int) int {
	for i, e := range t.entries {
		if e.ID == messageID {
			return i
		}
	}
	return -1
}
