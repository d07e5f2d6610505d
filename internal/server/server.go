package server

import (
	"net/http"

	"github.com/zenitmed/siteapi/internal/analytics"
	"github.com/zenitmed/siteapi/internal/auth"
	"github.com/zenitmed/siteapi/internal/config"
	"github.com/zenitmed/siteapi/internal/logger"
	"github.com/zenitmed/siteapi/internal/notify"
	"github.com/zenitmed/siteapi/internal/store"
)

// Stores groups the storage interfaces the server depends on.
type Stores struct {
	Logs        store.LogStore
	News        store.NewsStore
	Conferences store.ConferenceStore
	Submissions store.SubmissionStore
	Analytics   store.AnalyticsStore
	Images      store.ImageStore
	Banner      store.BannerStore
}

// Server wires the HTTP API: public content routes, form intake, the
// admin back office and the log stream.
type Server struct {
	cfg      config.Config
	stores   Stores
	codec    *auth.Codec
	resolver *auth.Resolver
	recorder *logger.Recorder
	notifier *notify.Notifier
	geo      *analytics.GeoResolver
}

func New(cfg config.Config, stores Stores, codec *auth.Codec, resolver *auth.Resolver, recorder *logger.Recorder, notifier *notify.Notifier, geo *analytics.GeoResolver) *Server {
	return &Server{
		cfg:      cfg,
		stores:   stores,
		codec:    codec,
		resolver: resolver,
		recorder: recorder,
		notifier: notifier,
		geo:      geo,
	}
}

// Handler returns the route table. Admin mutation routes are wrapped by
// RequireAdmin; public routes are registered bare.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint for load balancer
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Admin session lifecycle
	mux.HandleFunc("POST /api/admin/auth", s.handleLogin)
	mux.HandleFunc("GET /api/admin/auth", s.handleIntrospect)
	mux.HandleFunc("DELETE /api/admin/auth", s.handleLogout)

	// Application logs (admin)
	s.admin(mux, "GET /api/admin/logs", s.handleListLogs)
	s.admin(mux, "DELETE /api/admin/logs", s.handlePurgeLogs)
	mux.HandleFunc("GET /api/admin/logs/stream", s.handleLogStream)

	// News
	mux.HandleFunc("GET /api/news", s.handleListNews)
	mux.HandleFunc("GET /api/news/years", s.handleNewsYears)
	mux.HandleFunc("GET /api/news/{id}", s.handleGetNews)
	mux.HandleFunc("POST /api/news/{id}/view", s.handleNewsView)
	s.admin(mux, "POST /api/news", s.handleCreateNews)
	s.admin(mux, "PUT /api/news/{id}", s.handleUpdateNews)
	s.admin(mux, "DELETE /api/news/{id}", s.handleDeleteNews)

	// Conferences
	mux.HandleFunc("GET /api/conferences", s.handleListConferences)
	mux.HandleFunc("GET /api/conferences/{id}", s.handleGetConference)
	mux.HandleFunc("POST /api/conferences/{id}/register", s.handleConferenceRegister)
	s.admin(mux, "POST /api/conferences", s.handleCreateConference)
	s.admin(mux, "PUT /api/conferences/{id}", s.handleUpdateConference)
	s.admin(mux, "DELETE /api/conferences/{id}", s.handleDeleteConference)

	// Public form intake
	mux.HandleFunc("POST /api/contact", s.handleContact)
	mux.HandleFunc("POST /api/request-cp", s.handleRequestProposal)

	// Submissions back office
	s.admin(mux, "GET /api/admin/requests", s.handleListSubmissions)
	s.admin(mux, "GET /api/admin/requests/count", s.handleCountNewSubmissions)
	s.admin(mux, "GET /api/admin/requests/export", s.handleExportSubmissions)
	s.admin(mux, "PATCH /api/admin/requests/{id}", s.handleUpdateSubmissionStatus)
	s.admin(mux, "DELETE /api/admin/requests/{id}", s.handleDeleteSubmission)

	// Visitor analytics
	mux.HandleFunc("POST /api/analytics/track", s.handleTrack)
	s.admin(mux, "GET /api/admin/analytics/stats", s.handleAnalyticsStats)
	s.admin(mux, "GET /api/admin/analytics/sessions", s.handleAnalyticsSessions)

	// Images
	mux.HandleFunc("GET /api/images/{id}", s.handleGetImage)
	s.admin(mux, "POST /api/admin/images", s.handleUploadImage)
	s.admin(mux, "DELETE /api/admin/images/{id}", s.handleDeleteImage)

	// Site banner
	mux.HandleFunc("GET /api/banner", s.handleGetBanner)
	s.admin(mux, "PUT /api/admin/banner", s.handlePutBanner)

	return mux
}

func (s *Server) admin(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.resolver.RequireAdmin(h))
}
