package models

import (
	"time"

	"github.com/google/uuid"
)

// Image is a binary image asset stored in the database and served by id.
type Image struct {
	ID        uuid.UUID `json:"id"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mimeType"`
	Data      []byte    `json:"-"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}
