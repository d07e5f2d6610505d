package server

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zenitmed/siteapi/internal/auth"
	"github.com/zenitmed/siteapi/internal/httpx"
)

// Login error messages shown inline in the admin UI.
const (
	msgInvalidPassword  = "Неверный пароль"
	msgMalformedRequest = "Неверный формат запроса"
	msgPasswordNotSet   = "ADMIN_PASSWORD не настроен в переменных окружения"
)

type loginRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgMalformedRequest)
		return
	}

	if s.cfg.AdminPassword == "" {
		log.Error().Msg("admin password is not configured")
		writeError(w, http.StatusInternalServerError, msgPasswordNotSet)
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.cfg.AdminPassword)) != 1 {
		s.recorder.Warn(r.Context(), "auth", "failed admin login attempt", map[string]any{
			"ip": httpx.ExtractClientIP(r),
		})
		writeError(w, http.StatusUnauthorized, msgInvalidPassword)
		return
	}

	token, err := s.codec.Issue()
	if err != nil {
		log.Error().Err(err).Msg("failed to issue session token")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	http.SetCookie(w, s.sessionCookie(r, token, int(auth.SessionDuration/time.Second)))

	s.recorder.Info(r.Context(), "auth", "admin logged in", map[string]any{
		"ip": httpx.ExtractClientIP(r),
	})

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": token})
}

func (s *Server) handleIntrospect(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(auth.CookieName)
	if err != nil || !s.codec.Verify(cookie.Value) {
		writeJSON(w, http.StatusUnauthorized, map[string]bool{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	// MaxAge -1 makes net/http emit Max-Age=0, expiring the cookie
	// immediately on the client.
	http.SetCookie(w, s.sessionCookie(r, "", -1))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) sessionCookie(r *http.Request, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   httpx.IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}
