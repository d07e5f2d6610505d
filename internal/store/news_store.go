package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/zenitmed/siteapi/internal/models"
)

// Sentinel errors for news store operations
var ErrNewsNotFound = errors.New("news not found")

// NewsStore defines storage for news articles.
type NewsStore interface {
	// Create stores a new article.
	Create(ctx context.Context, news *models.News) error

	// Get retrieves an article by id, including tags and image references.
	// Returns ErrNewsNotFound if it doesn't exist.
	Get(ctx context.Context, id uuid.UUID) (*models.News, error)

	// Update replaces an existing article. Returns ErrNewsNotFound if it
	// doesn't exist.
	Update(ctx context.Context, news *models.News) error

	// Delete removes an article and its tag/image references.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns a page of articles matching the filter, newest date
	// first, plus the total match count.
	List(ctx context.Context, filter models.NewsFilter) ([]*models.News, int, error)

	// IncrementViews bumps the view counter.
	IncrementViews(ctx context.Context, id uuid.UUID) error

	// Years returns the distinct publication years with article counts,
	// newest year first. Drafts are excluded.
	Years(ctx context.Context) ([]models.YearCount, error)
}
