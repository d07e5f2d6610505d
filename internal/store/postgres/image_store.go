package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/zenitmed/siteapi/internal/models"
	"github.com/zenitmed/siteapi/internal/store"
)

// ImageStore implements store.ImageStore using PostgreSQL. Image bytes live
// in a bytea column so the whole site state is one database.
type ImageStore struct {
	pool *pgxpool.Pool
}

// NewImageStore creates a new PostgreSQL-backed image store.
func NewImageStore(pool *pgxpool.Pool) *ImageStore {
	return &ImageStore{pool: pool}
}

func (s *ImageStore) Create(ctx context.Context, img *models.Image) error {
	if err := assignIdentity(&img.ID, &img.CreatedAt); err != nil {
		return err
	}

	query := `
		INSERT INTO images (id, filename, mime_type, data, size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		img.ID, img.Filename, img.MimeType, img.Data, img.Size, img.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("image_id", img.ID.String()).
		Str("mime_type", img.MimeType).
		Int64("size", img.Size).
		Msg("Stored image")
	return nil
}

func (s *ImageStore) Get(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	query := `SELECT id, filename, mime_type, data, size, created_at FROM images WHERE id = $1`

	var img models.Image
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&img.ID, &img.Filename, &img.MimeType, &img.Data, &img.Size, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to get image: %w", mapPostgresError(err))
	}
	return &img, nil
}

func (s *ImageStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", mapPostgresError(err))
	}
	if tag.RowsAffected() == 0 {
		return store.ErrImageNotFound
	}
	return nil
}
