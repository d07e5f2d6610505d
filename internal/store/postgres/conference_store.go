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

// ConferenceStore implements store.ConferenceStore using PostgreSQL.
type ConferenceStore struct {
	pool *pgxpool.Pool
}

// NewConferenceStore creates a new PostgreSQL-backed conference store.
func NewConferenceStore(pool *pgxpool.Pool) *ConferenceStore {
	return &ConferenceStore{pool: pool}
}

func (s *ConferenceStore) Create(ctx context.Context, conf *models.Conference) error {
	if err := assignIdentity(&conf.ID, &conf.CreatedAt); err != nil {
		return err
	}
	conf.UpdatedAt = conf.CreatedAt

	query := `
		INSERT INTO conferences (id, title, description, date, location, status, cme_hours, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		conf.ID, conf.Title, conf.Description, conf.Date, conf.Location,
		conf.Status, conf.CMEHours, conf.CreatedAt, conf.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create conference: %w", mapPostgresError(err))
	}

	log.Debug().Str("conference_id", conf.ID.String()).Str("title", conf.Title).Msg("Created conference")
	return nil
}

func (s *ConferenceStore) Get(ctx context.Context, id uuid.UUID) (*models.Conference, error) {
	query := `
		SELECT id, title, description, date, location, status, cme_hours, created_at, updated_at
		FROM conferences
		WHERE id = $1
	`

	var c models.Conference
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Title, &c.Description, &c.Date, &c.Location,
		&c.Status, &c.CMEHours, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrConferenceNotFound
		}
		return nil, fmt.Errorf("failed to get conference: %w", mapPostgresError(err))
	}
	return &c, nil
}

func (s *ConferenceStore) Update(ctx context.Context, conf *models.Conference) error {
	conf.UpdatedAt = time.Now()

	query := `
		UPDATE conferences SET
			title = $2, description = $3, date = $4, location = $5,
			status = $6, cme_hours = $7, updated_at = $8
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		conf.ID, conf.Title, conf.Description, conf.Date, conf.Location,
		conf.Status, conf.CMEHours, conf.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update conference: %w", mapPostgresError(err))
	}
	if tag.RowsAffected() == 0 {
		return store.ErrConferenceNotFound
	}
	return nil
}

func (s *ConferenceStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM conferences WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete conference: %w", mapPostgresError(err))
	}
	if tag.RowsAffected() == 0 {
		return store.ErrConferenceNotFound
	}
	return nil
}

func (s *ConferenceStore) List(ctx context.Context) ([]*models.Conference, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, description, date, location, status, cme_hours, created_at, updated_at
		FROM conferences
		ORDER BY date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list conferences: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var items []*models.Conference
	for rows.Next() {
		var c models.Conference
		err := rows.Scan(
			&c.ID, &c.Title, &c.Description, &c.Date, &c.Location,
			&c.Status, &c.CMEHours, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conference: %w", err)
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}
