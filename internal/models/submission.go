package models

import (
	"time"

	"github.com/google/uuid"
)

// Form types recorded in form_submissions.
const (
	FormTypeContact      = "contact"
	FormTypeProposal     = "cp"
	FormTypeTraining     = "training"
	FormTypeRegistration = "conference_registration"
)

// SubmissionStatus is the workflow state of a form submission.
type SubmissionStatus string

const (
	SubmissionStatusNew        SubmissionStatus = "new"
	SubmissionStatusInProgress SubmissionStatus = "in_progress"
	SubmissionStatusDone       SubmissionStatus = "done"
)

// Submission is one contact-form, proposal-request or registration entry.
type Submission struct {
	ID          uuid.UUID        `json:"id"`
	FormType    string           `json:"formType"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Phone       string           `json:"phone"`
	City        string           `json:"city,omitempty"`
	Institution string           `json:"institution,omitempty"`
	Message     string           `json:"message,omitempty"`
	Status      SubmissionStatus `json:"status"`
	PageURL     string           `json:"pageUrl,omitempty"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// SubmissionFilter narrows an admin submissions listing.
type SubmissionFilter struct {
	Search   string
	FormType string
	Status   SubmissionStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	Limit    int
}
