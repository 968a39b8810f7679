package main

import (
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/byronguina/sprintbot/internal/config"
	"github.com/byronguina/sprintbot/internal/console"
	"github.com/byronguina/sprintbot/internal/metrics"
	"github.com/byronguina/sprintbot/internal/session"
)

var (
	flagPhone  string
	flagChatID int64
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Talk to the bot from the terminal",
	Long: `Runs the bot against a local terminal chat instead of Telegram.

Type text to send it. "#n" presses inline button n, "@n" presses reply key n
and "/contact" shares the number given with --phone.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		closeLog, err := setupLogging(cfg, filepath.Join(config.ConfigDir(), "console.log"))
		defer closeLog()
		if err != nil {
			return err
		}

		store, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		tr := console.NewTransport(flagChatID)
		b, dispatcher := wireBot(cfg, store, session.NewMemoryStore(cfg.Session.TTL), session.NewMemoryAuthorizations(), tr, metrics.Nop())

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		dispatcher.Start(ctx, b)
		defer dispatcher.Stop()

		return console.Run(ctx, tr, dispatcher, flagChatID, flagPhone)
	},
}

func init() {
	consoleCmd.Flags().StringVar(&flagPhone, "phone", "", "phone number shared by /contact")
	consoleCmd.Flags().Int64Var(&flagChatID, "chat", 1, "chat id the console speaks as")
	rootCmd.AddCommand(consoleCmd)
}
