package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/byronguina/sprintbot/internal/config"
	"github.com/byronguina/sprintbot/internal/db"
	"github.com/byronguina/sprintbot/internal/logging"
)

var (
	flagConfig string
	flagDB     string
	flagJSON   bool

	// configErr holds a failure to read an explicitly requested config file.
	configErr error
)

var rootCmd = &cobra.Command{
	Use:   "sprintbot",
	Short: "Telegram bot for tasks, sprints and team KPIs",
	Long: `sprintbot runs a Telegram bot through which managers create and assign tasks,
developers update and complete them, and managers read sprint and weekly KPI reports.

The same binary administers the SQLite database behind the bot.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "config file (default is "+config.ConfigFile()+")")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (overrides database.path)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "print JSON instead of tables")
}

func initConfig() {
	v := viper.GetViper()
	config.SetDefaults(v)
	configErr = nil

	if flagConfig != "" {
		v.SetConfigFile(flagConfig)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(config.ConfigDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if flagConfig != "" || !errors.As(err, &notFound) {
			configErr = fmt.Errorf("failed to read config: %w", err)
		}
	}
	if flagDB != "" {
		v.Set("database.path", flagDB)
	}
}

func loadConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, configErr
	}
	return config.Load(viper.GetViper())
}

// setupLogging installs the global logger. Console sessions default to a log
// file so output does not tear the screen.
func setupLogging(cfg *config.Config, defaultFile string) (func(), error) {
	file := cfg.Log.File
	if file == "" {
		file = defaultFile
	}
	logger, closer, err := logging.New(cfg.Log.Level, file)
	if err != nil {
		return closer, fmt.Errorf("failed to set up logging: %w", err)
	}
	log.Logger = logger
	return closer, nil
}

func openDB(cfg *config.Config) (*db.DB, error) {
	store, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.Init(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

// withDB loads the config, opens the database and runs fn against it.
func withDB(fn func(store *db.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return fn(store)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
