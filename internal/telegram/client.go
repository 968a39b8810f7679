// Package telegram connects the bot to the Telegram Bot API: Client delivers
// outbound messages and Poller turns long-polled updates into chat events.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/byronguina/sprintbot/internal/chat"
)

// API is the part of tgbotapi.BotAPI the transport uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

// NewAPI builds a BotAPI whose HTTP calls give up after timeout.
func NewAPI(token string, timeout time.Duration) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is empty")
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	return api, nil
}

// Client implements chat.Transport.
type Client struct {
	api API
}

func NewClient(api API) *Client {
	return &Client{api: api}
}

func (c *Client) Send(ctx context.Context, chatID int64, msg chat.Message) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	cfg := tgbotapi.NewMessage(chatID, msg.Text)
	if msg.HTML {
		cfg.ParseMode = tgbotapi.ModeHTML
	}
	switch {
	case len(msg.Inline) > 0:
		cfg.ReplyMarkup = inlineMarkup(msg.Inline)
	case msg.Reply != nil:
		cfg.ReplyMarkup = replyMarkup(msg.Reply)
	case msg.RemoveReply:
		cfg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}

	sent, err := c.api.Send(cfg)
	if err != nil {
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	return sent.MessageID, nil
}

// Edit replaces a message's text and inline keyboard. Telegram rejects edits
// that change nothing; those count as done.
func (c *Client) Edit(ctx context.Context, chatID int64, messageID int, msg chat.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg := tgbotapi.NewEditMessageText(chatID, messageID, msg.Text)
	if msg.HTML {
		cfg.ParseMode = tgbotapi.ModeHTML
	}
	if len(msg.Inline) > 0 {
		markup := inlineMarkup(msg.Inline)
		cfg.ReplyMarkup = &markup
	}

	if _, err := c.api.Request(cfg); err != nil && !isNotModified(err) {
		return fmt.Errorf("failed to edit message %d: %w", messageID, err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("failed to delete message %d: %w", messageID, err)
	}
	return nil
}

// answerCallback clears the loading indicator on a pressed button.
func (c *Client) answerCallback(callbackID string) error {
	if _, err := c.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}

func inlineMarkup(kb chat.InlineKeyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func replyMarkup(kb *chat.ReplyKeyboard) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		keys := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, k := range row {
			keys = append(keys, tgbotapi.KeyboardButton{Text: k.Text, RequestContact: k.RequestContact})
		}
		rows = append(rows, keys)
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.OneTimeKeyboard = kb.OneTime
	return markup
}
