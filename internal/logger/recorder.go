package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/zenitmed/siteapi/internal/models"
	"github.com/zenitmed/siteapi/internal/store"
)

// Recorder mirrors application events into the app_logs table so the admin
// log viewer and the live stream have data. Writes are best-effort: a
// failing database never takes down the request that tried to log.
type Recorder struct {
	logs store.LogStore
}

// NewRecorder creates a recorder writing to the given log store.
func NewRecorder(logs store.LogStore) *Recorder {
	return &Recorder{logs: logs}
}

// Record persists one log record and mirrors it to the process logger.
func (r *Recorder) Record(ctx context.Context, rec models.LogRecord) {
	event(rec.Level).
		Str("context", rec.Context).
		Str("path", rec.Path).
		Msg(rec.Message)

	if r == nil || r.logs == nil {
		return
	}

	// Detached from the request context: logging must survive handler
	// completion and an aborted client, but not hang forever.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := r.logs.Append(writeCtx, &rec); err != nil {
		// Deliberately not recorded through the recorder itself.
		log.Error().Err(err).Msg("failed to persist log record")
	}
}

// Info records an informational message.
func (r *Recorder) Info(ctx context.Context, logContext, message string, metadata map[string]any) {
	r.Record(ctx, models.LogRecord{
		Level:    models.LogLevelInfo,
		Message:  message,
		Context:  logContext,
		Metadata: metadata,
	})
}

// Warn records a warning.
func (r *Recorder) Warn(ctx context.Context, logContext, message string, metadata map[string]any) {
	r.Record(ctx, models.LogRecord{
		Level:    models.LogLevelWarn,
		Message:  message,
		Context:  logContext,
		Metadata: metadata,
	})
}

// Error records an error.
func (r *Recorder) Error(ctx context.Context, logContext, message string, metadata map[string]any) {
	r.Record(ctx, models.LogRecord{
		Level:    models.LogLevelError,
		Message:  message,
		Context:  logContext,
		Metadata: metadata,
	})
}

func event(level models.LogLevel) *zerolog.Event {
	switch level {
	case models.LogLevelDebug:
		return log.Debug()
	case models.LogLevelWarn:
		return log.Warn()
	case models.LogLevelError:
		return log.Error()
	default:
		return log.Info()
	}
}
