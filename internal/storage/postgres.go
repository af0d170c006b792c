package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/xaenox/assistant-bot/internal/models"
	"go.uber.org/zap"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStorage(ctx context.Context, config DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db, logger: logger}
	if err := storage.initializeSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	logger.Info("PostgreSQL reminder store ready",
		zap.String("host", config.Host),
		zap.String("dbname", config.DBName))
	return storage, nil
}

func (s *PostgresStorage) initializeSchema(ctx context.Context) error {
	migrationSQL, err := migrations.ReadFile("migrations/postgres.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Create(ctx context.Context, text string, dueAt time.Time) (*models.Reminder, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	query := `
		INSERT INTO reminders (text, due_at)
		VALUES ($1, $2)
		RETURNING id, created_at`

	r := &models.Reminder{Text: text, DueAt: ceilMicro(dueAt)}
	if err := s.db.QueryRowContext(ctx, query, text, r.DueAt).Scan(&r.ID, &r.CreatedAt); err != nil {
		return nil, fmt.Errorf("error creating reminder: %w", err)
	}
	return r, nil
}

// PopDue claims due reminders with a single UPDATE so concurrent callers
// never receive the same row.
func (s *PostgresStorage) PopDue(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	query := `
		UPDATE reminders
		SET completed = TRUE
		WHERE id IN (
			SELECT id FROM reminders
			WHERE completed = FALSE AND due_at <= $1
			ORDER BY due_at
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, text, due_at, created_at`

	rows, err := s.db.QueryContext(ctx, query, now.Truncate(time.Microsecond))
	if err != nil {
		return nil, fmt.Errorf("error claiming due reminders: %w", err)
	}
	defer rows.Close()

	var due []models.Reminder
	for rows.Next() {
		r := models.Reminder{Completed: true}
		if err := rows.Scan(&r.ID, &r.Text, &r.DueAt, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning reminder: %w", err)
		}
		due = append(due, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminders: %w", err)
	}

	sortByDue(due)
	return due, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

// RETURNING gives no ordering guarantee.
func sortByDue(due []models.Reminder) {
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].DueAt.Equal(due[j].DueAt) {
			return due[i].ID < due[j].ID
		}
		return due[i].DueAt.Before(due[j].DueAt)
	})
}
