package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/zenitmed/siteapi/internal/analytics"
	"github.com/zenitmed/siteapi/internal/httpx"
	"github.com/zenitmed/siteapi/internal/models"
)

type trackRequest struct {
	Type         string `json:"type"`
	SessionID    string `json:"sessionId"`
	PagePath     string `json:"pagePath"`
	PageTitle    string `json:"pageTitle"`
	Referrer     string `json:"referrer"`
	ScreenWidth  int    `json:"screenWidth"`
	ScreenHeight int    `json:"screenHeight"`
	Language     string `json:"language"`
	Timezone     string `json:"timezone"`
	UTMSource    string `json:"utmSource"`
	UTMMedium    string `json:"utmMedium"`
	UTMCampaign  string `json:"utmCampaign"`
	TimeOnPage   int    `json:"timeOnPage"`
}

// handleTrack records visitor activity. Tracking is fire-and-forget from
// the browser's point of view: every failure mode still answers 200 so
// the beacon never retries or blocks page navigation.
func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := decodeJSON(r, &req); err != nil || req.SessionID == "" {
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	ctx := r.Context()

	switch req.Type {
	case "heartbeat":
		if err := s.stores.Analytics.Heartbeat(ctx, req.SessionID, req.PagePath, req.PageTitle); err != nil {
			log.Warn().Err(err).Str("session_id", req.SessionID).Msg("failed to record heartbeat")
		}

	case "leave":
		if err := s.stores.Analytics.RecordLeave(ctx, req.SessionID, req.PagePath, req.TimeOnPage); err != nil {
			log.Warn().Err(err).Str("session_id", req.SessionID).Msg("failed to record leave")
		}

	default: // pageview
		ip := httpx.ExtractClientIP(r)
		ua := r.UserAgent()
		geo := s.geo.Resolve(ctx, ip)

		sess := &models.VisitorSession{
			SessionID:    req.SessionID,
			IPAddress:    ip,
			UserAgent:    ua,
			Country:      geo.Country,
			CountryCode:  geo.CountryCode,
			Region:       geo.Region,
			City:         geo.City,
			CurrentPage:  req.PagePath,
			PageTitle:    req.PageTitle,
			Referrer:     req.Referrer,
			ScreenWidth:  req.ScreenWidth,
			ScreenHeight: req.ScreenHeight,
			Language:     req.Language,
			Timezone:     req.Timezone,
		}
		visit := &models.PageVisit{
			SessionID:   req.SessionID,
			IPAddress:   ip,
			UserAgent:   ua,
			Country:     geo.Country,
			CountryCode: geo.CountryCode,
			Region:      geo.Region,
			City:        geo.City,
			PagePath:    req.PagePath,
			PageTitle:   req.PageTitle,
			Referrer:    req.Referrer,
			UTMSource:   req.UTMSource,
			UTMMedium:   req.UTMMedium,
			UTMCampaign: req.UTMCampaign,
			DeviceType:  analytics.DeviceType(ua),
			Browser:     analytics.Browser(ua),
			OS:          analytics.OS(ua),
		}

		if err := s.stores.Analytics.TrackPageview(ctx, sess, visit); err != nil {
			log.Warn().Err(err).Str("session_id", req.SessionID).Msg("failed to track pageview")
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleAnalyticsStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stores.Analytics.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to compute visitor stats")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAnalyticsSessions(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r.URL.Query().Get("limit"), 50)

	sessions, err := s.stores.Analytics.RecentSessions(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list visitor sessions")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}
