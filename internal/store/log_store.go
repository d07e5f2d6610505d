package store

import (
	"context"
	"time"

	"github.com/zenitmed/siteapi/internal/models"
)

// LogStore persists application log records. Records are append-only: they
// are written once, listed from the admin surface, and removed only by the
// age-based Purge.
type LogStore interface {
	// Append writes one log record. The store assigns the id and creation
	// time when unset.
	Append(ctx context.Context, rec *models.LogRecord) error

	// List returns records matching the filter, newest first, plus the total
	// match count for pagination.
	List(ctx context.Context, filter models.LogFilter) ([]*models.LogRecord, int, error)

	// ListAfter returns up to limit records created strictly after the given
	// instant, oldest first. This is the log stream's incremental poll.
	ListAfter(ctx context.Context, after time.Time, limit int) ([]*models.LogRecord, error)

	// Purge deletes records older than the cutoff and returns how many
	// records remain.
	Purge(ctx context.Context, olderThan time.Time) (int, error)
}
