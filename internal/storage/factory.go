package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver     string
	SQLitePath string
	Postgres   DatabaseConfig
}

// NewStore picks the reminder store implementation named by cfg.Driver.
func NewStore(ctx context.Context, cfg Config, logger *zap.Logger) (ReminderStore, error) {
	switch cfg.Driver {
	case DriverMemory:
		logger.Info("Using in-memory storage")
		return NewMemoryStorage(), nil
	case DriverSQLite, "":
		logger.Info("Using SQLite storage")
		return NewSQLiteStorage(ctx, cfg.SQLitePath, logger)
	case DriverPostgres:
		logger.Info("Using PostgreSQL storage")
		return NewPostgresStorage(ctx, cfg.Postgres, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
