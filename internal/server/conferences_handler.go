package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zenitmed/siteapi/internal/models"
	"github.com/zenitmed/siteapi/internal/store"
)

func (s *Server) handleListConferences(w http.ResponseWriter, r *http.Request) {
	items, err := s.stores.Conferences.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list conferences")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conferences": items})
}

func (s *Server) handleGetConference(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conference id")
		return
	}

	conf, err := s.stores.Conferences.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrConferenceNotFound) {
			writeError(w, http.StatusNotFound, "Конференция не найдена")
			return
		}
		log.Error().Err(err).Str("id", id.String()).Msg("failed to load conference")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, conf)
}

type conferenceRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Status      string    `json:"status"`
	CMEHours    int       `json:"cmeHours"`
}

func (req *conferenceRequest) validate() string {
	if req.Title == "" {
		return "Название обязательно"
	}
	if req.Date.IsZero() {
		return "Дата обязательна"
	}
	return ""
}

func (req *conferenceRequest) apply(conf *models.Conference) {
	conf.Title = req.Title
	conf.Description = req.Description
	conf.Date = req.Date
	conf.Location = req.Location
	conf.Status = models.ConferenceStatus(req.Status)
	if conf.Status == "" {
		conf.Status = models.ConferenceStatusAnnounced
	}
	conf.CMEHours = req.CMEHours
}

func (s *Server) handleCreateConference(w http.ResponseWriter, r *http.Request) {
	var req conferenceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgMalformedRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	conf := &models.Conference{}
	req.apply(conf)

	if err := s.stores.Conferences.Create(r.Context(), conf); err != nil {
		log.Error().Err(err).Msg("failed to create conference")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusCreated, conf)
}

func (s *Server) handleUpdateConference(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conference id")
		return
	}

	var req conferenceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgMalformedRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	conf, err := s.stores.Conferences.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrConferenceNotFound) {
			writeError(w, http.StatusNotFound, "Конференция не найдена")
			return
		}
		log.Error().Err(err).Str("id", id.String()).Msg("failed to load conference")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	req.apply(conf)

	if err := s.stores.Conferences.Update(r.Context(), conf); err != nil {
		log.Error().Err(err).Str("id", id.String()).Msg("failed to update conference")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, conf)
}

func (s *Server) handleDeleteConference(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conference id")
		return
	}

	if err := s.stores.Conferences.Delete(r.Context(), id); err != nil {
		log.Error().Err(err).Str("id", id.String()).Msg("failed to delete conference")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type registrationRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	City        string `json:"city"`
	Institution string `json:"institution"`
}

// handleConferenceRegister records a conference registration as a form
// submission and notifies the back office.
func (s *Server) handleConferenceRegister(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conference id")
		return
	}

	conf, err := s.stores.Conferences.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrConferenceNotFound) {
			writeError(w, http.StatusNotFound, "Конференция не найдена")
			return
		}
		log.Error().Err(err).Str("id", id.String()).Msg("failed to load conference")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	var req registrationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgMalformedRequest)
		return
	}
	if req.Name == "" || req.Phone == "" {
		writeError(w, http.StatusBadRequest, "Имя и телефон обязательны")
		return
	}

	sub := &models.Submission{
		FormType:    models.FormTypeRegistration,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		City:        req.City,
		Institution: req.Institution,
		Status:      models.SubmissionStatusNew,
		Metadata: map[string]any{
			"conferenceId":    conf.ID.String(),
			"conferenceTitle": conf.Title,
		},
	}

	if err := s.stores.Submissions.Create(r.Context(), sub); err != nil {
		log.Error().Err(err).Msg("failed to save conference registration")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	s.notifier.SubmissionReceived(r.Context(), sub)

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
