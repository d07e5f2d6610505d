package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zenitmed/siteapi/internal/models"
)

// LogStore implements store.LogStore using PostgreSQL.
type LogStore struct {
	pool *pgxpool.Pool
}

// NewLogStore creates a new PostgreSQL-backed log store.
func NewLogStore(pool *pgxpool.Pool) *LogStore {
	return &LogStore{pool: pool}
}

// maxMessageLength bounds a stored log message.
const maxMessageLength = 5000

// Append writes one log record. The id and creation time are assigned when
// unset so callers can pass bare records.
func (s *LogStore) Append(ctx context.Context, rec *models.LogRecord) error {
	if rec.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate log id: %w", err)
		}
		rec.ID = id
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	message := rec.Message
	if len(message) > maxMessageLength {
		message = message[:maxMessageLength]
	}

	query := `
		INSERT INTO app_logs (id, level, message, context, metadata, ip_address, user_agent, path, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9)
	`

	_, err := s.pool.Exec(ctx, query,
		rec.ID,
		rec.Level,
		message,
		rec.Context,
		rec.Metadata,
		rec.IPAddress,
		rec.UserAgent,
		rec.Path,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append log record: %w", mapPostgresError(err))
	}
	return nil
}

// List returns records matching the filter, newest first, with the total
// match count.
func (s *LogStore) List(ctx context.Context, filter models.LogFilter) ([]*models.LogRecord, int, error) {
	conditions := ""
	args := []any{}
	add := func(cond string, val any) {
		args = append(args, val)
		if conditions == "" {
			conditions = " WHERE "
		} else {
			conditions += " AND "
		}
		conditions += fmt.Sprintf(cond, len(args))
	}

	if filter.Level != "" {
		add("level = $%d", filter.Level)
	}
	if filter.Context != "" {
		add("context = $%d", filter.Context)
	}
	if filter.StartDate != nil {
		add("created_at >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("created_at <= $%d", *filter.EndDate)
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM app_logs"+conditions, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count log records: %w", mapPostgresError(err))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT id, level, message, COALESCE(context, ''), metadata,
		       COALESCE(ip_address, ''), COALESCE(user_agent, ''), COALESCE(path, ''), created_at
		FROM app_logs%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, conditions, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list log records: %w", mapPostgresError(err))
	}
	defer rows.Close()

	records, err := scanLogRecords(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListAfter returns up to limit records created strictly after the given
// instant, oldest first. Two records sharing an identical creation
// timestamp can be missed by this comparison; callers accept that.
func (s *LogStore) ListAfter(ctx context.Context, after time.Time, limit int) ([]*models.LogRecord, error) {
	query := `
		SELECT id, level, message, COALESCE(context, ''), metadata,
		       COALESCE(ip_address, ''), COALESCE(user_agent, ''), COALESCE(path, ''), created_at
		FROM app_logs
		WHERE created_at > $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, after, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to poll log records: %w", mapPostgresError(err))
	}
	defer rows.Close()

	return scanLogRecords(rows)
}

// Purge deletes records older than the cutoff and returns the remaining count.
func (s *LogStore) Purge(ctx context.Context, olderThan time.Time) (int, error) {
	if _, err := s.pool.Exec(ctx, `DELETE FROM app_logs WHERE created_at < $1`, olderThan); err != nil {
		return 0, fmt.Errorf("failed to purge log records: %w", mapPostgresError(err))
	}

	var remaining int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM app_logs`).Scan(&remaining); err != nil {
		return 0, fmt.Errorf("failed to count remaining log records: %w", mapPostgresError(err))
	}
	return remaining, nil
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanLogRecords(rows pgxRows) ([]*models.LogRecord, error) {
	var records []*models.LogRecord
	for rows.Next() {
		var rec models.LogRecord
		err := rows.Scan(
			&rec.ID,
			&rec.Level,
			&rec.Message,
			&rec.Context,
			&rec.Metadata,
			&rec.IPAddress,
			&rec.UserAgent,
			&rec.Path,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log record: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate log records: %w", mapPostgresError(err))
	}
	return records, nil
}
