// Package console provides an interactive terminal chat with the bot using
// Bubble Tea, for trying flows without Telegram.
package console

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/byronguina/sprintbot/internal/chat"
)

// Layout constants
const (
	contentPadding = 2
	minBubbleWidth = 30
	// visibleEntries is how many of the latest messages are drawn.
	visibleEntries = 6
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	replyKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	youStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	borderColor = lipgloss.Color("241")
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// plainText drops HTML markup from a bot message.
func plainText(e Entry) string {
	if !e.HTML {
		return e.Text
	}
	return html.UnescapeString(tagPattern.ReplaceAllString(e.Text, ""))
}

// Model is the Bubble Tea model of the console chat.
type Model struct {
	ctx     context.Context
	tr      *Transport
	handler chat.Handler
	chatID  int64
	phone   string

	entries []Entry
	reply   *chat.ReplyKeyboard
	buttons []buttonRef

	input string
	last  string // last thing the user sent

	width  int
	height int
	err    error
}

// buttonRef locates the n-th inline button on screen.
type buttonRef struct {
	messageID int
	data      string
}

// Messages
type refreshMsg struct{}

type handledMsg struct{}

// New creates a console chat for chatID. phone is what /contact shares.
func New(ctx context.Context, tr *Transport, handler chat.Handler, chatID int64, phone string) Model {
	return Model{ctx: ctx, tr: tr, handler: handler, chatID: chatID, phone: phone}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return refreshMsg{} }
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshMsg, handledMsg:
		m.entries, m.reply = m.tr.Snapshot()
		m.buttons = visibleButtons(m.visible())
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input)
	m.input = ""
	m.err = nil
	if text == "" {
		return m, nil
	}

	ev, err := m.eventFor(text)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.last = text

	ctx, h := m.ctx, m.handler
	return m, func() tea.Msg {
		h.Handle(ctx, ev)
		return handledMsg{}
	}
}

// eventFor turns a typed line into a chat event: "#n" presses the n-th inline
// button on screen, "@n" the n-th reply key, "/contact" shares the phone.
// Anything else is sent as text.
func (m Model) eventFor(text string) (chat.Event, error) {
	base := chat.Event{ChatID: m.chatID, SenderID: m.chatID}

	switch {
	case text == "/contact":
		return m.contact(base)

	case strings.HasPrefix(text, "#"):
		n, err := strconv.Atoi(text[1:])
		if err != nil || n < 1 || n > len(m.buttons) {
			return chat.Event{}, fmt.Errorf("no button %s", text)
		}
		b := m.buttons[n-1]
		base.Kind = chat.EventCallback
		base.MessageID = b.messageID
		base.CallbackID = strconv.Itoa(n)
		base.Data = b.data
		return base, nil

	case strings.HasPrefix(text, "@"):
		keys := replyKeys(m.reply)
		n, err := strconv.Atoi(text[1:])
		if err != nil || n < 1 || n > len(keys) {
			return chat.Event{}, fmt.Errorf("no key %s", text)
		}
		key := keys[n-1]
		if key.RequestContact {
			return m.contact(base)
		}
		base.Kind = chat.EventText
		base.Text = key.Text
		return base, nil
	}

	base.Kind = chat.EventText
	base.Text = text
	return base, nil
}

func (m Model) contact(base chat.Event) (chat.Event, error) {
	if m.phone == "" {
		return chat.Event{}, errors.New("no phone configured, start the console with --phone")
	}
	base.Kind = chat.EventContact
	base.Phone = m.phone
	base.ContactUserID = m.chatID
	return base, nil
}

func (m Model) visible() []Entry {
	if len(m.entries) <= visibleEntries {
		return m.entries
	}
	return m.entries[len(m.entries)-visibleEntries:]
}

func visibleButtons(entries []Entry) []buttonRef {
	var refs []buttonRef
	for _, e := range entries {
		for _, b := range e.Inline.Buttons() {
			refs = append(refs, buttonRef{messageID: e.ID, data: b.Data})
		}
	}
	return refs
}

func replyKeys(kb *chat.ReplyKeyboard) []chat.ReplyKey {
	if kb == nil {
		return nil
	}
	var keys []chat.ReplyKey
	for _, row := range kb.Rows {
		keys = append(keys, row...)
	}
	return keys
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("sprintbot console · chat %d", m.chatID)))
	b.WriteString("\n\n")

	width := max(m.width-contentPadding*2-2, minBubbleWidth)
	n := 0
	for _, e := range m.visible() {
		b.WriteString(renderEntry(e, width, &n))
		b.WriteString("\n")
	}

	if keys := replyKeys(m.reply); len(keys) > 0 {
		for i, k := range keys {
			b.WriteString(replyKeyStyle.Render(fmt.Sprintf("[@%d] %s", i+1, k.Text)))
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}

	if m.last != "" {
		b.WriteString(youStyle.Render("› " + m.last))
		b.WriteString("\n")
	}
	b.WriteString(inputStyle.Render("> " + m.input + "█"))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("#n press button · @n reply key · /contact share phone · esc quit"))

	padStyle := lipgloss.NewStyle().
		PaddingLeft(contentPadding).
		PaddingRight(contentPadding).
		PaddingTop(1)

	return padStyle.Render(b.String())
}

// renderEntry draws one message in a box with its buttons numbered from *n.
func renderEntry(e Entry, width int, n *int) string {
	var lines []string
	for _, line := range strings.Split(plainText(e), "\n") {
		wrapped := lipgloss.NewStyle().Width(width).Render(line)
		lines = append(lines, strings.Split(wrapped, "\n")...)
	}
	for _, row := range e.Inline {
		var cells []string
		for _, btn := range row {
			*n++
			cells = append(cells, buttonStyle.Render(fmt.Sprintf("#%d %s", *n, btn.Text)))
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	for i := range lines {
		lines[i] = padToWidth(lines[i], width)
	}
	return buildBorderedBox(lines, width, borderColor)
}

// buildBorderedBox creates a box with rounded borders around content lines.
func buildBorderedBox(lines []string, contentWidth int, color lipgloss.Color) string {
	style := lipgloss.NewStyle().Foreground(color)

	var b strings.Builder
	b.WriteString(style.Render("╭" + strings.Repeat("─", contentWidth) + "╮"))
	b.WriteString("\n")
	for _, line := range lines {
		b.WriteString(style.Render("│"))
		b.WriteString(line)
		b.WriteString(style.Render("│"))
		b.WriteString("\n")
	}
	b.WriteString(style.Render("╰" + strings.Repeat("─", contentWidth) + "╯"))
	return b.String()
}

// padToWidth pads a string to the specified width with spaces.
// Accounts for ANSI escape codes when calculating visible width.
func padToWidth(s string, width int) string {
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleLen)
}

// Run starts the console and blocks until the user quits.
func Run(ctx context.Context, tr *Transport, handler chat.Handler, chatID int64, phone string) error {
	p := tea.NewProgram(New(ctx, tr, handler, chatID, phone), tea.WithAltScreen(), tea.WithContext(ctx))
	tr.OnChange(func() { p.Send(refreshMsg{}) })
	defer tr.OnChange(nil)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
