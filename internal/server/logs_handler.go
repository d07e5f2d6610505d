package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zenitmed/siteapi/internal/models"
)

const defaultRetentionDays = 30

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := models.LogFilter{
		Level:   models.LogLevel(q.Get("level")),
		Context: q.Get("context"),
		Limit:   queryInt(q.Get("limit"), 100),
		Offset:  queryInt(q.Get("offset"), 0),
	}
	if t, ok := queryTime(q.Get("startDate")); ok {
		filter.StartDate = &t
	}
	if t, ok := queryTime(q.Get("endDate")); ok {
		filter.EndDate = &t
	}

	logs, total, err := s.stores.Logs.List(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list logs")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"logs": logs, "total": total})
}

func (s *Server) handlePurgeLogs(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r.URL.Query().Get("days"), defaultRetentionDays)
	if days <= 0 {
		days = defaultRetentionDays
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	remaining, err := s.stores.Logs.Purge(r.Context(), cutoff)
	if err != nil {
		log.Error().Err(err).Int("days", days).Msg("failed to purge logs")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	log.Info().Int("days", days).Int("remaining", remaining).Msg("purged old logs")

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"deleted":   true,
		"remaining": remaining,
	})
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func queryTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
