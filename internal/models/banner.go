package models

import "time"

// Banner is the single site-wide announcement banner. At most one row
// exists; the public endpoint only returns it when enabled.
type Banner struct {
	Enabled         bool      `json:"enabled"`
	Text            string    `json:"text"`
	Link            string    `json:"link,omitempty"`
	BackgroundColor string    `json:"backgroundColor,omitempty"`
	TextColor       string    `json:"textColor,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
