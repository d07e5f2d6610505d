package store

import (
	"context"

	"github.com/zenitmed/siteapi/internal/models"
)

// BannerStore holds the single site banner row.
type BannerStore interface {
	// Get returns the banner, or nil when none has ever been configured.
	Get(ctx context.Context) (*models.Banner, error)

	// Put creates or replaces the banner.
	Put(ctx context.Context, banner *models.Banner) error
}
