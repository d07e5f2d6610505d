package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zenitmed/siteapi/internal/models"
)

// LogStore implements store.LogStore using in-memory storage.
// This implementation is for testing and development - data is lost on restart.
type LogStore struct {
	mu      sync.RWMutex
	records []*models.LogRecord
}

// NewLogStore creates a new in-memory log store.
func NewLogStore() *LogStore {
	return &LogStore{}
}

// Append writes one log record, assigning id and creation time when unset.
func (s *LogStore) Append(ctx context.Context, rec *models.LogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *rec
	if clone.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		clone.ID = id
	}
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now()
	}
	rec.ID = clone.ID
	rec.CreatedAt = clone.CreatedAt

	s.records = append(s.records, &clone)
	return nil
}

// List returns records matching the filter, newest first.
func (s *LogStore) List(ctx context.Context, filter models.LogFilter) ([]*models.LogRecord, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.LogRecord
	for _, rec := range s.records {
		if filter.Level != "" && rec.Level != filter.Level {
			continue
		}
		if filter.Context != "" && rec.Context != filter.Context {
			continue
		}
		if filter.StartDate != nil && rec.CreatedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && rec.CreatedAt.After(*filter.EndDate) {
			continue
		}
		clone := *rec
		matched = append(matched, &clone)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

// ListAfter returns up to limit records created strictly after the given
// instant, oldest first.
func (s *LogStore) ListAfter(ctx context.Context, after time.Time, limit int) ([]*models.LogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.LogRecord
	for _, rec := range s.records {
		if rec.CreatedAt.After(after) {
			clone := *rec
			matched = append(matched, &clone)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// Purge deletes records older than the cutoff and returns the remaining count.
func (s *LogStore) Purge(ctx context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []*models.LogRecord
	for _, rec := range s.records {
		if !rec.CreatedAt.Before(olderThan) {
			kept = append(kept, rec)
		}
	}
	s.records = kept
	return len(kept), nil
}
