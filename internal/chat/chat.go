// Package chat defines the transport-neutral vocabulary shared by the bot and
// its transports: inbound events, outbound messages and keyboards.
package chat

import "context"

type EventKind string

const (
	EventText     EventKind = "text"
	EventContact  EventKind = "contact"
	EventCallback EventKind = "callback"
)

// Event is one inbound update from a chat.
type Event struct {
	Kind     EventKind
	ChatID   int64
	SenderID int64

	// MessageID is the id of the message carrying the text, or of the
	// message whose inline button was pressed.
	MessageID int

	Text string

	// Contact payload.
	Phone         string
	ContactUserID int64

	// Callback payload.
	CallbackID string
	Data       string
}

// Button is an inline keyboard button. Data is the callback payload.
type Button struct {
	Text string
	Data string
}

// Btn is shorthand for a Button literal.
func Btn(text, data string) Button {
	return Button{Text: text, Data: data}
}

// InlineKeyboard is a grid of inline buttons, one slice per row.
type InlineKeyboard [][]Button

// Row appends a row and returns the keyboard.
func (k InlineKeyboard) Row(buttons ...Button) InlineKeyboard {
	if len(buttons) == 0 {
		return k
	}
	return append(k, buttons)
}

// Buttons flattens the keyboard in reading order.
func (k InlineKeyboard) Buttons() []Button {
	var out []Button
	for _, row := range k {
		out = append(out, row...)
	}
	return out
}

// ReplyKey is a reply keyboard key. RequestContact asks the client to share
// the user's phone number when pressed.
type ReplyKey struct {
	Text           string
	RequestContact bool
}

type ReplyKeyboard struct {
	Rows    [][]ReplyKey
	OneTime bool
}

// Message is an outbound message. At most one of Inline, Reply and
// RemoveReply should be set.
type Message struct {
	Text        string
	HTML        bool
	Inline      InlineKeyboard
	Reply       *ReplyKeyboard
	RemoveReply bool
}

// HTMLText builds an HTML message with an optional inline keyboard.
func HTMLText(text string, kb InlineKeyboard) Message {
	return Message{Text: text, HTML: true, Inline: kb}
}

// Transport delivers outbound actions to a chat platform.
type Transport interface {
	Send(ctx context.Context, chatID int64, msg Message) (int, error)
	Edit(ctx context.Context, chatID int64, messageID int, msg Message) error
	Delete(ctx context.Context, chatID int64, messageID int) error
}

// Handler consumes inbound events.
type Handler interface {
	Handle(ctx context.Context, ev Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev Event)

func (f HandlerFunc) Handle(ctx context.Context, ev Event) { f(ctx, ev) }
