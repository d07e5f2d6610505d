package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/zenitmed/siteapi/internal/models"
)

// Sentinel errors for image store operations
var ErrImageNotFound = errors.New("image not found")

// ImageStore defines storage for image blobs served by the images endpoint.
type ImageStore interface {
	Create(ctx context.Context, img *models.Image) error

	// Get returns the image including its data. Returns ErrImageNotFound if
	// the image doesn't exist.
	Get(ctx context.Context, id uuid.UUID) (*models.Image, error)

	Delete(ctx context.Context, id uuid.UUID) error
}
