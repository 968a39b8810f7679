// Package config holds sprintbot's runtime configuration.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. SPRINTBOT_TELEGRAM_TOKEN.
const EnvPrefix = "SPRINTBOT"

type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Bot      BotConfig      `mapstructure:"bot"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type TelegramConfig struct {
	Token       string        `mapstructure:"token"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
}

type DatabaseConfig struct {
	// Path to the SQLite file. A leading ~ expands to the home directory.
	Path string `mapstructure:"path"`
}

// Session backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

type SessionConfig struct {
	Backend       string        `mapstructure:"backend"`
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type BotConfig struct {
	RefreshDelay           time.Duration `mapstructure:"refresh_delay"`
	CompletionRefreshDelay time.Duration `mapstructure:"completion_refresh_delay"`
	MaxMessageChars        int           `mapstructure:"max_message_chars"`
	MaxSubtaskHours        float64       `mapstructure:"max_subtask_hours"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables the endpoint.
	Addr string `mapstructure:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Telegram: TelegramConfig{
			PollTimeout: 30 * time.Second,
			SendTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path: filepath.Join("~", ".sprintbot", "sprintbot.db"),
		},
		Session: SessionConfig{
			Backend:       BackendMemory,
			TTL:           24 * time.Hour,
			SweepInterval: 10 * time.Minute,
		},
		Bot: BotConfig{
			RefreshDelay:           2 * time.Second,
			CompletionRefreshDelay: 2500 * time.Millisecond,
			MaxMessageChars:        4000,
			MaxSubtaskHours:        4,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers every default on v and wires environment overrides.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("telegram.token", defaults.Telegram.Token)
	v.SetDefault("telegram.poll_timeout", defaults.Telegram.PollTimeout)
	v.SetDefault("telegram.send_timeout", defaults.Telegram.SendTimeout)

	v.SetDefault("database.path", defaults.Database.Path)

	v.SetDefault("session.backend", defaults.Session.Backend)
	v.SetDefault("session.ttl", defaults.Session.TTL)
	v.SetDefault("session.sweep_interval", defaults.Session.SweepInterval)

	v.SetDefault("bot.refresh_delay", defaults.Bot.RefreshDelay)
	v.SetDefault("bot.completion_refresh_delay", defaults.Bot.CompletionRefreshDelay)
	v.SetDefault("bot.max_message_chars", defaults.Bot.MaxMessageChars)
	v.SetDefault("bot.max_subtask_hours", defaults.Bot.MaxSubtaskHours)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.file", defaults.Log.File)

	v.SetDefault("metrics.addr", defaults.Metrics.Addr)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the configuration from v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Database.Path = ExpandPath(cfg.Database.Path)
	cfg.Log.File = ExpandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigDir returns the directory searched for config.yaml.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sprintbot")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sprintbot"
	}
	return filepath.Join(home, ".config", "sprintbot")
}

// ConfigFile returns the default config file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
