package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zenitmed/siteapi/internal/auth"
	"github.com/zenitmed/siteapi/internal/store"
)

const (
	streamPollInterval      = 500 * time.Millisecond
	streamHeartbeatInterval = 30 * time.Second
	streamPollLimit         = 50
)

// handleLogStream serves the admin log tail as a Server-Sent-Events
// stream. The session cookie is checked once at connection start; after
// that the stream pushes until the client disconnects.
func (s *Server) handleLogStream(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(auth.CookieName)
	if err != nil || !s.codec.Verify(cookie.Value) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	stream := &logStream{
		logs:    s.stores.Logs,
		w:       w,
		flusher: flusher,
		// Deliver only records created after the connection opened.
		cursor: time.Now(),
	}
	stream.run(r.Context())
}

// logStream pushes new log records to one SSE client. Both repeating
// tasks (the poll and the heartbeat) hang off the single request
// context, so client disconnect tears the whole stream down at once.
type logStream struct {
	logs    store.LogStore
	w       http.ResponseWriter
	flusher http.Flusher
	cursor  time.Time
}

func (st *logStream) run(ctx context.Context) {
	st.send(map[string]any{"type": "connected", "timestamp": time.Now().Format(time.RFC3339)})

	// Catch up before the first tick.
	st.poll(ctx)

	pollTicker := time.NewTicker(streamPollInterval)
	defer pollTicker.Stop()
	heartbeat := time.NewTicker(streamHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-pollTicker.C:
			st.poll(ctx)
		case <-heartbeat.C:
			st.send(map[string]any{"type": "heartbeat", "timestamp": time.Now().Format(time.RFC3339)})
		}
	}
}

// poll delivers records created strictly after the cursor, oldest first.
// A failed poll emits an error event and leaves the stream running; the
// next tick retries. The comparison is strictly greater-than, so a record
// sharing the last delivered record's exact timestamp is not re-fetched.
func (st *logStream) poll(ctx context.Context) {
	records, err := st.logs.ListAfter(ctx, st.cursor, streamPollLimit)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Warn().Err(err).Msg("log stream poll failed")
		st.send(map[string]any{"type": "error", "message": "failed to fetch logs"})
		return
	}

	for _, rec := range records {
		st.send(map[string]any{"type": "log", "data": rec})
	}
	if len(records) > 0 {
		st.cursor = records[len(records)-1].CreatedAt
	}
}

func (st *logStream) send(payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal stream event")
		return
	}
	if _, err := st.w.Write(append(append([]byte("data: "), data...), '\n', '\n')); err != nil {
		return
	}
	st.flusher.Flush()
}
