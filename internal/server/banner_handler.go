package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/zenitmed/siteapi/internal/models"
)

// handleGetBanner serves the site-wide announcement banner. It answers
// with enabled=false when no banner is configured, so the frontend
// never needs to special-case a missing row.
func (s *Server) handleGetBanner(w http.ResponseWriter, r *http.Request) {
	banner, err := s.stores.Banner.Get(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to load banner")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=60")
	if banner == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"enabled": false})
		return
	}
	writeJSON(w, http.StatusOK, banner)
}

type bannerRequest struct {
	Enabled         bool   `json:"enabled"`
	Text            string `json:"text"`
	Link            string `json:"link"`
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
}

func (s *Server) handlePutBanner(w http.ResponseWriter, r *http.Request) {
	var req bannerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgMalformedRequest)
		return
	}
	if req.Enabled && req.Text == "" {
		writeError(w, http.StatusBadRequest, "Текст баннера обязателен")
		return
	}

	banner := &models.Banner{
		Enabled:         req.Enabled,
		Text:            req.Text,
		Link:            req.Link,
		BackgroundColor: req.BackgroundColor,
		TextColor:       req.TextColor,
	}

	if err := s.stores.Banner.Put(r.Context(), banner); err != nil {
		log.Error().Err(err).Msg("failed to save banner")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, banner)
}
