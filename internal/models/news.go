package models

import (
	"time"

	"github.com/google/uuid"
)

// NewsStatus is the publication state of a news item.
type NewsStatus string

const (
	NewsStatusDraft     NewsStatus = "draft"
	NewsStatusPublished NewsStatus = "published"
)

// News is a published news article or draft.
type News struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	ShortDescription string     `json:"shortDescription"`
	FullDescription  string     `json:"fullDescription"`
	Date             time.Time  `json:"date"`
	Year             int        `json:"year"`
	Category         string     `json:"category,omitempty"`
	Location         string     `json:"location,omitempty"`
	Author           string     `json:"author,omitempty"`
	Status           NewsStatus `json:"status"`
	Views            int        `json:"views"`
	ImageIDs         []uuid.UUID `json:"imageIds,omitempty"`
	Tags             []string   `json:"tags,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// NewsFilter narrows a news listing.
type NewsFilter struct {
	Year     int
	Category string
	Search   string
	// IncludeDrafts is only set for authenticated admin listings.
	IncludeDrafts bool
	Page          int
	Limit         int
}

// YearCount is one row of the per-year news aggregation.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}
