package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/xaenox/assistant-bot/internal/models"
)

// MemoryStorage keeps reminders in process memory. Intended for tests and
// for running without a database; contents are lost on exit.
type MemoryStorage struct {
	mu        sync.Mutex
	nextID    int64
	reminders []*models.Reminder
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{nextID: 1}
}

func (s *MemoryStorage) Create(ctx context.Context, text string, dueAt time.Time) (*models.Reminder, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := &models.Reminder{
		ID:        s.nextID,
		Text:      text,
		DueAt:     dueAt,
		CreatedAt: time.Now(),
	}
	s.nextID++
	s.reminders = append(s.reminders, r)

	out := *r
	return &out, nil
}

func (s *MemoryStorage) PopDue(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var due []models.Reminder
	for _, r := range s.reminders {
		if r.IsDue(now) {
			r.Completed = true
			due = append(due, *r)
		}
	}

	sortByDue(due)
	return due, nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
