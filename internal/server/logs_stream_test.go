package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zenitmed/siteapi/internal/auth"
	"github.com/zenitmed/siteapi/internal/models"
	"github.com/zenitmed/siteapi/internal/store/memory"
)

type streamEvent struct {
	Type      string            `json:"type"`
	Timestamp string            `json:"timestamp"`
	Message   string            `json:"message"`
	Data      *models.LogRecord `json:"data"`
}

func parseStreamEvents(t *testing.T, body string) []streamEvent {
	t.Helper()

	var events []streamEvent
	for _, line := range strings.Split(body, "\n") {
		payload, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var ev streamEvent
		require.NoError(t, json.Unmarshal([]byte(payload), &ev))
		events = append(events, ev)
	}
	return events
}

func TestLogStreamRequiresSessionCookie(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/logs/stream", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/logs/stream", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "garbage"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogStreamConnectsAndTearsDown(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Handler()
	cookie := loginCookie(t, handler)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/logs/stream", nil).WithContext(ctx)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		handler.ServeHTTP(rec, req)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop on context cancellation")
	}

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := parseStreamEvents(t, rec.Body.String())
	require.NotEmpty(t, events)
	require.Equal(t, "connected", events[0].Type)
	require.NotEmpty(t, events[0].Timestamp)
}

func TestLogStreamDeliversRecordsInOrderWithoutDuplicates(t *testing.T) {
	logs := memory.NewLogStore()
	rec := httptest.NewRecorder()
	stream := &logStream{logs: logs, w: rec, flusher: rec}

	ctx := context.Background()
	base := time.Now()

	for i, msg := range []string{"first", "second", "third"} {
		require.NoError(t, logs.Append(ctx, &models.LogRecord{
			Level:     models.LogLevelInfo,
			Message:   msg,
			CreatedAt: base.Add(time.Duration(i+1) * time.Millisecond),
		}))
	}

	stream.cursor = base
	stream.poll(ctx)

	events := parseStreamEvents(t, rec.Body.String())
	require.Len(t, events, 3)
	require.Equal(t, "first", events[0].Data.Message)
	require.Equal(t, "second", events[1].Data.Message)
	require.Equal(t, "third", events[2].Data.Message)

	// A second tick with no new records delivers nothing.
	stream.poll(ctx)
	require.Len(t, parseStreamEvents(t, rec.Body.String()), 3)

	// A record appended after the last delivery is picked up next tick.
	require.NoError(t, logs.Append(ctx, &models.LogRecord{
		Level:     models.LogLevelWarn,
		Message:   "fourth",
		CreatedAt: base.Add(10 * time.Millisecond),
	}))
	stream.poll(ctx)

	events = parseStreamEvents(t, rec.Body.String())
	require.Len(t, events, 4)
	require.Equal(t, "fourth", events[3].Data.Message)
}

func TestLogStreamCapsRecordsPerPoll(t *testing.T) {
	logs := memory.NewLogStore()
	rec := httptest.NewRecorder()
	stream := &logStream{logs: logs, w: rec, flusher: rec}

	ctx := context.Background()
	base := time.Now()
	for i := range streamPollLimit + 10 {
		require.NoError(t, logs.Append(ctx, &models.LogRecord{
			Level:     models.LogLevelInfo,
			Message:   "bulk",
			CreatedAt: base.Add(time.Duration(i+1) * time.Millisecond),
		}))
	}

	stream.cursor = base
	stream.poll(ctx)
	require.Len(t, parseStreamEvents(t, rec.Body.String()), streamPollLimit)

	// The remainder arrives on the following tick.
	stream.poll(ctx)
	require.Len(t, parseStreamEvents(t, rec.Body.String()), streamPollLimit+10)
}

type failingLogStore struct {
	*memory.LogStore
	fail bool
}

func (s *failingLogStore) ListAfter(ctx context.Context, after time.Time, limit int) ([]*models.LogRecord, error) {
	if s.fail {
		return nil, errors.New("connection refused")
	}
	return s.LogStore.ListAfter(ctx, after, limit)
}

func TestLogStreamSurvivesPollFailure(t *testing.T) {
	logs := &failingLogStore{LogStore: memory.NewLogStore(), fail: true}
	rec := httptest.NewRecorder()
	stream := &logStream{logs: logs, w: rec, flusher: rec, cursor: time.Now().Add(-time.Minute)}

	ctx := context.Background()

	stream.poll(ctx)
	events := parseStreamEvents(t, rec.Body.String())
	require.Len(t, events, 1)
	require.Equal(t, "error", events[0].Type)
	require.NotEmpty(t, events[0].Message)

	// The stream keeps polling after a transient failure.
	logs.fail = false
	require.NoError(t, logs.Append(ctx, &models.LogRecord{
		Level:   models.LogLevelError,
		Message: "after recovery",
	}))
	stream.poll(ctx)

	events = parseStreamEvents(t, rec.Body.String())
	require.Len(t, events, 2)
	require.Equal(t, "log", events[1].Type)
	require.Equal(t, "after recovery", events[1].Data.Message)
}
