package storage

import (
	"context"
	"errors"
	"time"

	"github.com/xaenox/assistant-bot/internal/models"
)

// ErrEmptyText is returned when a reminder has no text.
var ErrEmptyText = errors.New("reminder text is empty")

// ReminderStore is the single source of truth for reminders.
// Implementations must serialize Create and PopDue so that a reminder
// is returned by PopDue at most once.
type ReminderStore interface {
	// Create persists a reminder due at dueAt. The write is all-or-nothing.
	Create(ctx context.Context, text string, dueAt time.Time) (*models.Reminder, error)

	// PopDue returns uncompleted reminders with DueAt <= now ordered by DueAt
	// and marks them completed in the same operation.
	PopDue(ctx context.Context, now time.Time) ([]models.Reminder, error)

	Close() error
}

// SQL backends keep microsecond precision. Due times round up and the
// cutoff rounds down so a stored reminder is never popped before DueAt.
func ceilMicro(t time.Time) time.Time {
	r := t.Truncate(time.Microsecond)
	if r.Before(t) {
		r = r.Add(time.Microsecond)
	}
	return r
}
