// Package app builds the assistant and its collaborators from configuration.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xaenox/assistant-bot/internal/assistant"
	"github.com/xaenox/assistant-bot/internal/observability"
	"github.com/xaenox/assistant-bot/internal/oracle"
	"github.com/xaenox/assistant-bot/internal/services/news"
	"github.com/xaenox/assistant-bot/internal/services/search"
	"github.com/xaenox/assistant-bot/internal/services/weather"
	"github.com/xaenox/assistant-bot/internal/storage"
	"github.com/xaenox/assistant-bot/pkg/config"
)

type App struct {
	Assistant *assistant.Assistant
	Metrics   *observability.Metrics
	Registry  *prometheus.Registry

	store storage.ReminderStore
}

// NewLogger builds the process logger described by cfg.
func NewLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	store, err := storage.NewStore(ctx, storage.Config{
		Driver:     cfg.Storage.Driver,
		SQLitePath: cfg.Storage.SQLitePath,
		Postgres: storage.DatabaseConfig{
			Host:     cfg.Storage.Postgres.Host,
			Port:     cfg.Storage.Postgres.Port,
			User:     cfg.Storage.Postgres.User,
			Password: cfg.Storage.Postgres.Password,
			DBName:   cfg.Storage.Postgres.DBName,
			SSLMode:  cfg.Storage.Postgres.SSLMode,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(cfg.Metrics.Namespace, registry)

	deps := assistant.Deps{
		Store: store,
		Weather: weather.NewClient(weather.Config{
			APIKey:    cfg.Weather.APIKey,
			BaseURL:   cfg.Weather.BaseURL,
			Timeout:   cfg.Weather.Timeout,
			CacheTTL:  cfg.Weather.CacheTTL,
			CacheSize: cfg.Weather.CacheSize,
		}, logger.Named("weather")),
		News: news.NewClient(news.Config{
			APIKey:  cfg.News.APIKey,
			BaseURL: cfg.News.BaseURL,
			Timeout: cfg.News.Timeout,
		}, logger.Named("news")),
		Search: search.NewClient(search.Config{
			BaseURL:    cfg.Search.BaseURL,
			Timeout:    cfg.Search.Timeout,
			MaxResults: cfg.Search.MaxResults,
		}, logger.Named("search")),
		Metrics:       metrics,
		DefaultOffset: cfg.Reminders.DefaultOffset,
		Logger:        logger.Named("assistant"),
	}

	// a nil *GPTOracle must not become a non-nil interface
	if o := oracle.NewGPTOracle(oracle.Config{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Temperature: cfg.OpenAI.Temperature,
		Timeout:     cfg.OpenAI.Timeout,
	}, logger.Named("oracle")); o != nil {
		deps.Oracle = o
		logger.Info("Math oracle enabled", zap.String("model", cfg.OpenAI.Model))
	}
	if cfg.Weather.APIKey == "" {
		logger.Warn("No weather API key configured, weather requests will fail")
	}
	if cfg.News.APIKey == "" {
		logger.Info("No news API key configured, serving demo articles")
	}

	a, err := assistant.New(deps)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &App{Assistant: a, Metrics: metrics, Registry: registry, store: store}, nil
}

func (a *App) Close() error {
	return a.store.Close()
}
