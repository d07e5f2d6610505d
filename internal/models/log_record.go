package models

import (
	"time"

	"github.com/google/uuid"
)

// LogLevel classifies an application log record.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogRecord is an append-only application log row. Records are written by
// application code throughout the system and read from the admin surface;
// they are never mutated, only purged by age.
type LogRecord struct {
	ID        uuid.UUID      `json:"id"`
	Level     LogLevel       `json:"level"`
	Message   string         `json:"message"`
	Context   string         `json:"context,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	IPAddress string         `json:"ip,omitempty"`
	UserAgent string         `json:"userAgent,omitempty"`
	Path      string         `json:"path,omitempty"`
	CreatedAt time.Time      `json:"timestamp"`
}

// LogFilter narrows a log listing.
type LogFilter struct {
	Level     LogLevel
	Context   string
	Limit     int
	Offset    int
	StartDate *time.Time
	EndDate   *time.Time
}
