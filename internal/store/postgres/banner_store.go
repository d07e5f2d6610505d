package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zenitmed/siteapi/internal/models"
)

// BannerStore implements store.BannerStore using PostgreSQL. The banner is
// a single row keyed by a constant.
type BannerStore struct {
	pool *pgxpool.Pool
}

// NewBannerStore creates a new PostgreSQL-backed banner store.
func NewBannerStore(pool *pgxpool.Pool) *BannerStore {
	return &BannerStore{pool: pool}
}

func (s *BannerStore) Get(ctx context.Context) (*models.Banner, error) {
	var b models.Banner
	err := s.pool.QueryRow(ctx, `
		SELECT enabled, text, link, background_color, text_color, updated_at
		FROM site_banner
		WHERE id = TRUE
	`).Scan(&b.Enabled, &b.Text, &b.Link, &b.BackgroundColor, &b.TextColor, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get banner: %w", mapPostgresError(err))
	}
	return &b, nil
}

func (s *BannerStore) Put(ctx context.Context, banner *models.Banner) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO site_banner (id, enabled, text, link, background_color, text_color, updated_at)
		VALUES (TRUE, $1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			text = EXCLUDED.text,
			link = EXCLUDED.link,
			background_color = EXCLUDED.background_color,
			text_color = EXCLUDED.text_color,
			updated_at = NOW()
	`, banner.Enabled, banner.Text, banner.Link, banner.BackgroundColor, banner.TextColor)
	if err != nil {
		return fmt.Errorf("failed to put banner: %w", mapPostgresError(err))
	}
	return nil
}
