package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
)

// telegramMaxMessage is the hard limit Telegram puts on a single text message.
const telegramMaxMessage = 4096

// Validate checks structural constraints that hold for every subcommand.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("log.level", c.Log.Level, validLogLevel),
		criterio.Run("session.backend", c.Session.Backend, validBackend),
		criterio.Run("database.path", c.Database.Path, required),
		c.validateDurations(),
		c.validateLimits(),
	)
}

// ValidateServe adds the checks needed to talk to Telegram.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return criterio.ValidateStruct(
		criterio.Run("telegram.token", c.Telegram.Token, required),
	)
}

func (c *Config) validateDurations() error {
	var errs criterio.FieldErrorsBuilder
	durations := []struct {
		field string
		value time.Duration
	}{
		{"telegram.poll_timeout", c.Telegram.PollTimeout},
		{"telegram.send_timeout", c.Telegram.SendTimeout},
		{"session.ttl", c.Session.TTL},
		{"session.sweep_interval", c.Session.SweepInterval},
		{"bot.refresh_delay", c.Bot.RefreshDelay},
		{"bot.completion_refresh_delay", c.Bot.CompletionRefreshDelay},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errs = errs.Append(d.field, fmt.Errorf("must be positive, got %s", d.value))
		}
	}
	return errs.ToError()
}

func (c *Config) validateLimits() error {
	var errs criterio.FieldErrorsBuilder
	if c.Bot.MaxMessageChars <= 0 || c.Bot.MaxMessageChars > telegramMaxMessage {
		errs = errs.Append("bot.max_message_chars", fmt.Errorf("must be in (0, %d], got %d", telegramMaxMessage, c.Bot.MaxMessageChars))
	}
	if c.Bot.MaxSubtaskHours <= 0 {
		errs = errs.Append("bot.max_subtask_hours", fmt.Errorf("must be positive, got %g", c.Bot.MaxSubtaskHours))
	}
	return errs.ToError()
}

func validLogLevel(level string) error {
	if _, err := zerolog.ParseLevel(level); err != nil {
		return fmt.Errorf("unknown level %q", level)
	}
	return nil
}

func validBackend(backend string) error {
	switch backend {
	case BackendMemory, BackendSQLite:
		return nil
	}
	return fmt.Errorf("must be %q or %q, got %q", BackendMemory, BackendSQLite, backend)
}

func required(s string) error {
	if s == "" {
		return errors.New("is required")
	}
	return nil
}
