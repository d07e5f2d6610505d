package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/zenitmed/siteapi/internal/models"
)

// Sentinel errors for submission store operations
var ErrSubmissionNotFound = errors.New("submission not found")

// SubmissionStore defines storage for form submissions (contact form,
// proposal/training requests, conference registrations).
type SubmissionStore interface {
	Create(ctx context.Context, sub *models.Submission) error

	// Get returns ErrSubmissionNotFound if the submission doesn't exist.
	Get(ctx context.Context, id uuid.UUID) (*models.Submission, error)

	// List returns a page of submissions matching the filter, newest first,
	// plus the total match count.
	List(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, int, error)

	// UpdateStatus moves a submission through the workflow.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.SubmissionStatus) error

	Delete(ctx context.Context, id uuid.UUID) error

	// CountNew returns the number of submissions still in the new state,
	// used for the admin badge.
	CountNew(ctx context.Context) (int, error)
}
