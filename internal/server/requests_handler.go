package server

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zenitmed/siteapi/internal/models"
	"github.com/zenitmed/siteapi/internal/store"
)

func submissionFilterFromQuery(r *http.Request) models.SubmissionFilter {
	q := r.URL.Query()
	filter := models.SubmissionFilter{
		Search:   q.Get("search"),
		FormType: q.Get("formType"),
		Status:   models.SubmissionStatus(q.Get("status")),
		Page:     queryInt(q.Get("page"), 1),
		Limit:    queryInt(q.Get("limit"), 20),
	}
	if t, ok := queryTime(q.Get("dateFrom")); ok {
		filter.DateFrom = &t
	}
	if t, ok := queryTime(q.Get("dateTo")); ok {
		filter.DateTo = &t
	}
	return filter
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	filter := submissionFilterFromQuery(r)

	items, total, err := s.stores.Submissions.List(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list submissions")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	totalPages := 0
	if filter.Limit > 0 {
		totalPages = (total + filter.Limit - 1) / filter.Limit
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"requests":   items,
		"total":      total,
		"page":       filter.Page,
		"totalPages": totalPages,
	})
}

func (s *Server) handleCountNewSubmissions(w http.ResponseWriter, r *http.Request) {
	count, err := s.stores.Submissions.CountNew(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to count new submissions")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

type statusUpdateRequest struct {
	Status models.SubmissionStatus `json:"status"`
}

func (s *Server) handleUpdateSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid submission id")
		return
	}

	var req statusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgMalformedRequest)
		return
	}

	switch req.Status {
	case models.SubmissionStatusNew, models.SubmissionStatusInProgress, models.SubmissionStatusDone:
	default:
		writeError(w, http.StatusBadRequest, "Недопустимый статус")
		return
	}

	if err := s.stores.Submissions.UpdateStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, store.ErrSubmissionNotFound) {
			writeError(w, http.StatusNotFound, "Заявка не найдена")
			return
		}
		log.Error().Err(err).Str("id", id.String()).Msg("failed to update submission status")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid submission id")
		return
	}

	if err := s.stores.Submissions.Delete(r.Context(), id); err != nil {
		log.Error().Err(err).Str("id", id.String()).Msg("failed to delete submission")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleExportSubmissions streams the filtered submissions as a CSV
// download for offline processing.
func (s *Server) handleExportSubmissions(w http.ResponseWriter, r *http.Request) {
	filter := submissionFilterFromQuery(r)
	filter.Page = 1
	filter.Limit = 10000

	items, _, err := s.stores.Submissions.List(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to export submissions")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	filename := fmt.Sprintf("requests-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	// UTF-8 BOM so Excel opens Cyrillic content correctly.
	_, _ = w.Write([]byte{0xEF, 0xBB, 0xBF})

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Дата", "Тип", "Имя", "Email", "Телефон", "Город", "Организация", "Сообщение", "Статус"})
	for _, sub := range items {
		_ = cw.Write([]string{
			sub.CreatedAt.Format("2006-01-02 15:04"),
			sub.FormType,
			sub.Name,
			sub.Email,
			sub.Phone,
			sub.City,
			sub.Institution,
			sub.Message,
			string(sub.Status),
		})
	}
	cw.Flush()
}
