package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/example/psychly/internal/api"
	"github.com/example/psychly/internal/api/handlers"
	"github.com/example/psychly/internal/bot"
	"github.com/example/psychly/internal/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the Telegram bot and the daily jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	if cfg.HTTPAddr == "" && cfg.TelegramToken == "" {
		return errors.New("nothing to serve: set HTTP_ADDR or TELEGRAM_BOT_TOKEN")
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	g, gctx := errgroup.WithContext(ctx)

	var notifier scheduler.Notifier
	if cfg.TelegramToken != "" {
		tg, err := bot.NewAPI(cfg.TelegramToken)
		if err != nil {
			return err
		}
		log.Info("authorized on Telegram", "account", tg.Self.UserName)

		b := bot.New(tg, bot.DefaultConfig(), cfg.AdminUserIDs, bot.Deps{
			Quiz:     a.quiz,
			Ledger:   a.ledger,
			Votes:    a.votes,
			Users:    a.userRepo,
			Importer: a.importer,
			Clock:    a.clock,
			Log:      log,
		})
		notifier = b
		g.Go(func() error {
			return b.Run(gctx)
		})
	} else {
		log.Warn("TELEGRAM_BOT_TOKEN is not set, the bot is disabled")
	}

	if cfg.HTTPAddr != "" {
		if strings.HasPrefix(strings.ToLower(cfg.LogMode), "prod") {
			gin.SetMode(gin.ReleaseMode)
		}
		server := api.NewServer(cfg.HTTPAddr, api.RouterConfig{
			Log:                log,
			HealthHandler:      handlers.NewHealthHandler(),
			ContentHandler:     handlers.NewContentHandler(a.quiz, a.clock),
			MeHandler:          handlers.NewMeHandler(a.ledger, a.quiz, a.userRepo, a.clock),
			VoteHandler:        handlers.NewVoteHandler(a.votes, a.clock),
			LeaderboardHandler: handlers.NewLeaderboardHandler(a.ledger),
		})
		g.Go(func() error {
			log.Info("HTTP API listening", "addr", cfg.HTTPAddr)
			return server.Run()
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	if cfg.SchedulerEnabled {
		sched := scheduler.New(a.resolver, a.userRepo, notifier, cfg.NotificationHour, log)
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()

		g.Go(func() error {
			// today's content may be missing if the process was down at midnight
			if err := sched.Pregenerate(gctx); err != nil {
				log.Warn("content generation on startup failed", "error", err)
			}
			return nil
		})
	}

	err = g.Wait()
	log.Info("shutting down")
	return err
}
