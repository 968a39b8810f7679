package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInlineKeyboard_Row(t *testing.T) {
	kb := InlineKeyboard{}.
		Row(Btn("a", "1"), Btn("b", "2")).
		Row().
		Row(Btn("c", "3"))

	assert.Len(t, kb, 2, "empty rows are skipped")
	assert.Equal(t, []Button{Btn("a", "1"), Btn("b", "2"), Btn("c", "3")}, kb.Buttons())
}

func TestHandlerFunc(t *testing.T) {
	var got Event
	h := HandlerFunc(func(_ context.Context, ev Event) { got = ev })
	h.Handle(context.Background(), Event{Kind: EventText, Text: "hola"})
	assert.Equal(t, "hola", got.Text)
}
