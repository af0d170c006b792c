package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/xaenox/assistant-bot/internal/models"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStorage stores reminders in a local SQLite file.
type SQLiteStorage struct {
	db     *sql.DB
	mu     sync.Mutex // serializes writers to avoid SQLITE_BUSY
	logger *zap.Logger
}

// NewSQLiteStorage opens (and creates if needed) the database at dbPath.
func NewSQLiteStorage(ctx context.Context, dbPath string, logger *zap.Logger) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStorage{db: db, logger: logger}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	logger.Info("SQLite reminder store ready", zap.String("path", dbPath))
	return s, nil
}

func (s *SQLiteStorage) initSchema(ctx context.Context) error {
	schema, err := migrations.ReadFile("migrations/sqlite.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, string(schema)); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Create(ctx context.Context, text string, dueAt time.Time) (*models.Reminder, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	due := ceilMicro(dueAt).UnixMicro()
	createdAt := time.Now().UnixMicro()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (text, due_at, created_at) VALUES (?, ?, ?)`,
		text, due, createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reminder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read reminder id: %w", err)
	}

	return &models.Reminder{
		ID:        id,
		Text:      text,
		DueAt:     time.UnixMicro(due),
		CreatedAt: time.UnixMicro(createdAt),
	}, nil
}

func (s *SQLiteStorage) PopDue(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	rows, err := tx.QueryContext(ctx, `
		UPDATE reminders SET completed = 1
		WHERE completed = 0 AND due_at <= ?
		RETURNING id, text, due_at, created_at`,
		now.UnixMicro(),
	)
	if err != nil {
		return nil, fmt.Errorf("claim due reminders: %w", err)
	}

	var due []models.Reminder
	for rows.Next() {
		var (
			r                models.Reminder
			dueAt, createdAt int64
		)
		if err := rows.Scan(&r.ID, &r.Text, &dueAt, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan reminder row: %w", err)
		}
		r.DueAt = time.UnixMicro(dueAt)
		r.CreatedAt = time.UnixMicro(createdAt)
		r.Completed = true
		due = append(due, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate reminder rows: %w", err)
	}
	rows.Close()

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	sortByDue(due)
	return due, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
