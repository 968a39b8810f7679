package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/byronguina/sprintbot/internal/bot"
	"github.com/byronguina/sprintbot/internal/chat"
	"github.com/byronguina/sprintbot/internal/config"
	"github.com/byronguina/sprintbot/internal/db"
	"github.com/byronguina/sprintbot/internal/metrics"
	"github.com/byronguina/sprintbot/internal/session"
	"github.com/byronguina/sprintbot/internal/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot",
	Long: `Long-polls Telegram for updates and answers them until interrupted.

Requires telegram.token (or SPRINTBOT_TELEGRAM_TOKEN).`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// sessionBackend is a session store that can drop expired entries.
type sessionBackend interface {
	session.Store
	session.Sweeper
}

func buildSessions(cfg *config.Config, store *db.DB) (sessionBackend, session.Authorizations) {
	if cfg.Session.Backend == config.BackendSQLite {
		return session.NewSQLiteStore(store, cfg.Session.TTL), session.NewSQLiteAuthorizations(store)
	}
	return session.NewMemoryStore(cfg.Session.TTL), session.NewMemoryAuthorizations()
}

// wireBot builds the bot and the dispatcher that serializes its chats.
func wireBot(cfg *config.Config, store *db.DB, sessions session.Store, auths session.Authorizations, tr chat.Transport, rec metrics.Recorder) (*bot.Bot, *bot.Dispatcher) {
	dispatcher := bot.NewDispatcher(rec)
	b := bot.New(bot.Options{
		Store:          store,
		Sessions:       sessions,
		Authorizations: auths,
		Outbox:         bot.NewOutbox(tr, cfg.Telegram.SendTimeout, cfg.Bot.MaxMessageChars, rec),
		Scheduler:      dispatcher,
		Metrics:        rec,
		Settings: bot.Settings{
			RefreshDelay:           cfg.Bot.RefreshDelay,
			CompletionRefreshDelay: cfg.Bot.CompletionRefreshDelay,
			MaxSubtaskHours:        cfg.Bot.MaxSubtaskHours,
		},
	})
	return b, dispatcher
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg, "")
	defer closeLog()
	if err != nil {
		return err
	}

	store, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	pollAPI, err := telegram.NewAPI(cfg.Telegram.Token, cfg.Telegram.PollTimeout+10*time.Second)
	if err != nil {
		return err
	}
	sendAPI, err := telegram.NewAPI(cfg.Telegram.Token, cfg.Telegram.SendTimeout)
	if err != nil {
		return err
	}
	client := telegram.NewClient(sendAPI)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewPrometheus(reg)

	sessions, auths := buildSessions(cfg, store)
	b, dispatcher := wireBot(cfg, store, sessions, auths, client, rec)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher.Start(ctx, b)
	defer dispatcher.Stop()

	log.Info().
		Str("bot", pollAPI.Self.UserName).
		Str("db", cfg.Database.Path).
		Str("sessions", cfg.Session.Backend).
		Msg("sprintbot started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return telegram.NewPoller(pollAPI, client, cfg.Telegram.PollTimeout).Run(gctx, dispatcher)
	})
	g.Go(func() error {
		session.Sweep(gctx, sessions, cfg.Session.SweepInterval)
		return nil
	})
	if cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return serveMetrics(gctx, cfg.Metrics.Addr, reg)
		})
	}

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot stopped: %w", err)
	}
	log.Info().Msg("sprintbot exited")
	return nil
}

func serveMetrics(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(g))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("metrics listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve metrics: %w", err)
	}
	return nil
}
