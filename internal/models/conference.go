package models

import (
	"time"

	"github.com/google/uuid"
)

// ConferenceStatus tracks whether an event is upcoming or already held.
type ConferenceStatus string

const (
	ConferenceStatusAnnounced ConferenceStatus = "announced"
	ConferenceStatusCompleted ConferenceStatus = "completed"
)

// Conference is a medical conference, masterclass or exhibition entry.
type Conference struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Date        time.Time        `json:"date"`
	Location    string           `json:"location"`
	Status      ConferenceStatus `json:"status"`
	CMEHours    int              `json:"cmeHours,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}
