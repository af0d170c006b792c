package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xaenox/assistant-bot/internal/app"
	"github.com/xaenox/assistant-bot/internal/bot"
	"github.com/xaenox/assistant-bot/pkg/config"
)

func main() {
	_ = godotenv.Load()

	// Bootstrap logger until the configured one is available
	logger, _ := zap.NewProduction()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	if configured, err := app.NewLogger(cfg.Log); err != nil {
		logger.Warn("Keeping default logger", zap.Error(err))
	} else {
		logger = configured
	}
	defer logger.Sync()

	if cfg.Telegram.Token == "" {
		logger.Fatal("Telegram token is not configured, set TELEGRAM_TOKEN")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize assistant", zap.Error(err))
	}
	defer a.Close()

	// Initialize bot
	b, err := bot.New(cfg.Telegram.Token, a.Assistant, bot.Options{
		ChatID:       cfg.Telegram.ChatID,
		PollInterval: cfg.Reminders.PollInterval,
	}, logger.Named("bot"))
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.Start(gctx) })
	g.Go(func() error { return b.RunReminderPoller(gctx) })

	if err := g.Wait(); err != nil {
		logger.Error("Bot error", zap.Error(err))
	}
	logger.Info("Bot stopped")
}
