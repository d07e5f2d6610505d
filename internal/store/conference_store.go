package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/zenitmed/siteapi/internal/models"
)

// Sentinel errors for conference store operations
var ErrConferenceNotFound = errors.New("conference not found")

// ConferenceStore defines storage for conference entries.
type ConferenceStore interface {
	Create(ctx context.Context, conf *models.Conference) error

	// Get returns ErrConferenceNotFound if the conference doesn't exist.
	Get(ctx context.Context, id uuid.UUID) (*models.Conference, error)

	Update(ctx context.Context, conf *models.Conference) error

	Delete(ctx context.Context, id uuid.UUID) error

	// List returns all conferences ordered by date descending.
	List(ctx context.Context) ([]*models.Conference, error)
}
