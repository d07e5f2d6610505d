package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/zenitmed/siteapi/internal/models"
	"github.com/zenitmed/siteapi/internal/store"
)

// SubmissionStore implements store.SubmissionStore using PostgreSQL.
type SubmissionStore struct {
	pool *pgxpool.Pool
}

// NewSubmissionStore creates a new PostgreSQL-backed submission store.
func NewSubmissionStore(pool *pgxpool.Pool) *SubmissionStore {
	return &SubmissionStore{pool: pool}
}

func (s *SubmissionStore) Create(ctx context.Context, sub *models.Submission) error {
	if err := assignIdentity(&sub.ID, &sub.CreatedAt); err != nil {
		return err
	}
	sub.UpdatedAt = sub.CreatedAt

	query := `
		INSERT INTO form_submissions (
			id, form_type, name, email, phone, city, institution, message,
			status, page_url, metadata, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.pool.Exec(ctx, query,
		sub.ID, sub.FormType, sub.Name, sub.Email, sub.Phone, sub.City,
		sub.Institution, sub.Message, sub.Status, sub.PageURL, sub.Metadata,
		sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("submission_id", sub.ID.String()).
		Str("form_type", sub.FormType).
		Msg("Created form submission")
	return nil
}

func (s *SubmissionStore) Get(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	query := submissionSelect + ` WHERE id = $1`

	var sub models.Submission
	err := s.pool.QueryRow(ctx, query, id).Scan(submissionFields(&sub)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", mapPostgresError(err))
	}
	return &sub, nil
}

// List returns a page of submissions matching the filter, newest first.
func (s *SubmissionStore) List(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, int, error) {
	conditions := ""
	args := []any{}
	add := func(cond string, vals ...any) {
		placeholders := make([]any, len(vals))
		for i, v := range vals {
			args = append(args, v)
			placeholders[i] = len(args)
		}
		if conditions == "" {
			conditions = " WHERE "
		} else {
			conditions += " AND "
		}
		conditions += fmt.Sprintf(cond, placeholders...)
	}

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		add("(name ILIKE $%d OR email ILIKE $%d OR phone LIKE $%d OR institution ILIKE $%d OR city ILIKE $%d)",
			like, like, like, like, like)
	}
	if filter.FormType != "" {
		add("form_type = $%d", filter.FormType)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.DateFrom != nil {
		add("created_at >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		// Inclusive of the whole end day.
		add("created_at < $%d", filter.DateTo.Add(24*time.Hour))
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM form_submissions"+conditions, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count submissions: %w", mapPostgresError(err))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	query := fmt.Sprintf("%s%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		submissionSelect, conditions, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var items []*models.Submission
	for rows.Next() {
		var sub models.Submission
		if err := rows.Scan(submissionFields(&sub)...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan submission: %w", err)
		}
		items = append(items, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate submissions: %w", mapPostgresError(err))
	}
	return items, total, nil
}

func (s *SubmissionStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.SubmissionStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE form_submissions SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update submission status: %w", mapPostgresError(err))
	}
	if tag.RowsAffected() == 0 {
		return store.ErrSubmissionNotFound
	}
	return nil
}

func (s *SubmissionStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM form_submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete submission: %w", mapPostgresError(err))
	}
	if tag.RowsAffected() == 0 {
		return store.ErrSubmissionNotFound
	}
	return nil
}

func (s *SubmissionStore) CountNew(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM form_submissions WHERE status = 'new'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count new submissions: %w", mapPostgresError(err))
	}
	return count, nil
}

const submissionSelect = `
	SELECT id, form_type, name, email, phone, city, institution, message,
	       status, page_url, metadata, created_at, updated_at
	FROM form_submissions`

func submissionFields(sub *models.Submission) []any {
	return []any{
		&sub.ID, &sub.FormType, &sub.Name, &sub.Email, &sub.Phone, &sub.City,
		&sub.Institution, &sub.Message, &sub.Status, &sub.PageURL, &sub.Metadata,
		&sub.CreatedAt, &sub.UpdatedAt,
	}
}
