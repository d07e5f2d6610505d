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

func (s *Server) handleListNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := models.NewsFilter{
		Year:     queryInt(q.Get("year"), 0),
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Page:     queryInt(q.Get("page"), 1),
		Limit:    queryInt(q.Get("limit"), 12),
	}
	// Drafts are only visible to an authenticated admin.
	if q.Get("includeDrafts") == "true" && s.resolver.CheckAuth(r).IsAuthenticated {
		filter.IncludeDrafts = true
	}

	items, total, err := s.stores.News.List(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list news")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	totalPages := 0
	if filter.Limit > 0 {
		totalPages = (total + filter.Limit - 1) / filter.Limit
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"news":       items,
		"total":      total,
		"page":       filter.Page,
		"totalPages": totalPages,
	})
}

func (s *Server) handleNewsYears(w http.ResponseWriter, r *http.Request) {
	years, err := s.stores.News.Years(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to aggregate news years")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"years": years})
}

func (s *Server) handleGetNews(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid news id")
		return
	}

	item, err := s.stores.News.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNewsNotFound) {
			writeError(w, http.StatusNotFound, "Новость не найдена")
			return
		}
		log.Error().Err(err).Str("id", id.String()).Msg("failed to get news")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	// Drafts are not served to the public.
	if item.Status != models.NewsStatusPublished && !s.resolver.CheckAuth(r).IsAuthenticated {
		writeError(w, http.StatusNotFound, "Новость не найдена")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleNewsView(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid news id")
		return
	}

	if err := s.stores.News.IncrementViews(r.Context(), id); err != nil && !errors.Is(err, store.ErrNewsNotFound) {
		log.Warn().Err(err).Str("id", id.String()).Msg("failed to increment news views")
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type newsRequest struct {
	Title            string      `json:"title"`
	ShortDescription string      `json:"shortDescription"`
	FullDescription  string      `json:"fullDescription"`
	Date             time.Time   `json:"date"`
	Category         string      `json:"category"`
	Location         string      `json:"location"`
	Author           string      `json:"author"`
	Status           string      `json:"status"`
	ImageIDs         []uuid.UUID `json:"imageIds"`
	Tags             []string    `json:"tags"`
}

func (req *newsRequest) validate() string {
	if req.Title == "" {
		return "Заголовок обязателен"
	}
	if req.ShortDescription == "" {
		return "Краткое описание обязательно"
	}
	switch models.NewsStatus(req.Status) {
	case models.NewsStatusDraft, models.NewsStatusPublished, "":
	default:
		return "Недопустимый статус"
	}
	return ""
}

func (req *newsRequest) apply(item *models.News) {
	item.Title = req.Title
	item.ShortDescription = req.ShortDescription
	item.FullDescription = req.FullDescription
	item.Date = req.Date
	if item.Date.IsZero() {
		item.Date = time.Now()
	}
	item.Year = item.Date.Year()
	item.Category = req.Category
	item.Location = req.Location
	item.Author = req.Author
	item.Status = models.NewsStatus(req.Status)
	if item.Status == "" {
		item.Status = models.NewsStatusDraft
	}
	item.ImageIDs = req.ImageIDs
	item.Tags = req.Tags
}

func (s *Server) handleCreateNews(w http.ResponseWriter, r *http.Request) {
	var req newsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgMalformedRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item := &models.News{}
	req.apply(item)

	if err := s.stores.News.Create(r.Context(), item); err != nil {
		log.Error().Err(err).Msg("failed to create news")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	s.recorder.Info(r.Context(), "news", "news created", map[string]any{"id": item.ID.String(), "title": item.Title})

	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateNews(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid news id")
		return
	}

	var req newsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgMalformedRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := s.stores.News.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNewsNotFound) {
			writeError(w, http.StatusNotFound, "Новость не найдена")
			return
		}
		log.Error().Err(err).Str("id", id.String()).Msg("failed to load news for update")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	req.apply(item)

	if err := s.stores.News.Update(r.Context(), item); err != nil {
		log.Error().Err(err).Str("id", id.String()).Msg("failed to update news")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteNews(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid news id")
		return
	}

	if err := s.stores.News.Delete(r.Context(), id); err != nil {
		log.Error().Err(err).Str("id", id.String()).Msg("failed to delete news")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	s.recorder.Info(r.Context(), "news", "news deleted", map[string]any{"id": id.String()})

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
