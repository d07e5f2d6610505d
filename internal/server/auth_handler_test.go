package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zenitmed/siteapi/internal/analytics"
	"github.com/zenitmed/siteapi/internal/auth"
	"github.com/zenitmed/siteapi/internal/config"
	"github.com/zenitmed/siteapi/internal/logger"
	"github.com/zenitmed/siteapi/internal/notify"
	"github.com/zenitmed/siteapi/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Config{
		Environment:   config.EnvDevelopment,
		SessionSecret: "test-secret-for-handler-tests",
		AdminPassword: "correct",
	}

	secret, err := config.ResolveSecret(cfg)
	require.NoError(t, err)

	codec := auth.NewCodec(secret)
	analyticsStore := memory.NewAnalyticsStore()
	logStore := memory.NewLogStore()

	return New(cfg,
		Stores{
			Logs:        logStore,
			News:        memory.NewNewsStore(),
			Conferences: memory.NewConferenceStore(),
			Submissions: memory.NewSubmissionStore(),
			Analytics:   analyticsStore,
			Images:      memory.NewImageStore(),
			Banner:      memory.NewBannerStore(),
		},
		codec,
		auth.NewResolver(codec, cfg.Environment),
		logger.NewRecorder(logStore),
		notify.New(nil, nil),
		analytics.NewGeoResolver(analyticsStore, &http.Client{}),
	)
}

func loginCookie(t *testing.T, handler http.Handler) *http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/auth", strings.NewReader(`{"password":"correct"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("login did not set session cookie")
	return nil
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Handler()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
		wantCookie bool
	}{
		{
			name:       "correct password",
			body:       `{"password":"correct"}`,
			wantStatus: http.StatusOK,
			wantBody:   `"success":true`,
			wantCookie: true,
		},
		{
			name:       "wrong password",
			body:       `{"password":"wrong"}`,
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Неверный пароль"}`,
		},
		{
			name:       "malformed body",
			body:       `{password`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Неверный формат запроса"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/auth", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			require.Contains(t, rec.Body.String(), tt.wantBody)

			setCookie := rec.Header().Get("Set-Cookie")
			if tt.wantCookie {
				require.Contains(t, setCookie, auth.CookieName+"=")
				require.Contains(t, setCookie, "HttpOnly")
				require.Contains(t, setCookie, "SameSite=Lax")
			} else {
				require.Empty(t, setCookie)
			}
		})
	}
}

func TestLoginIssuedCookieVerifies(t *testing.T) {
	srv := newTestServer(t)
	cookie := loginCookie(t, srv.Handler())

	require.True(t, srv.codec.Verify(cookie.Value))
	require.Equal(t, "/", cookie.Path)
	require.Equal(t, 7*24*3600, cookie.MaxAge)
}

func TestLoginWithoutConfiguredPassword(t *testing.T) {
	srv := newTestServer(t)
	srv.cfg.AdminPassword = ""

	req := httptest.NewRequest(http.MethodPost, "/api/admin/auth", strings.NewReader(`{"password":"anything"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "ADMIN_PASSWORD не настроен в переменных окружения")
}

func TestLoginSecureFlagFollowsForwardedProto(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/auth", strings.NewReader(`{"password":"correct"}`))
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Set-Cookie"), "Secure")
}

func TestIntrospect(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Handler()

	// No cookie
	req := httptest.NewRequest(http.MethodGet, "/api/admin/auth", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), `{"authenticated":false}`)

	// Valid cookie
	cookie := loginCookie(t, handler)
	req = httptest.NewRequest(http.MethodGet, "/api/admin/auth", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `{"authenticated":true}`)

	// Garbage cookie
	req = httptest.NewRequest(http.MethodGet, "/api/admin/auth", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "not-a-token"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Handler()
	cookie := loginCookie(t, handler)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/auth", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"success":true`)
	require.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")

	// Introspection with no cookie after logout reports unauthenticated.
	req = httptest.NewRequest(http.MethodGet, "/api/admin/auth", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutIsIdempotent(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Handler()

	// Logout with no session at all still succeeds.
	req := httptest.NewRequest(http.MethodDelete, "/api/admin/auth", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Handler()

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/admin/logs"},
		{http.MethodDelete, "/api/admin/logs"},
		{http.MethodGet, "/api/admin/requests"},
		{http.MethodGet, "/api/admin/analytics/stats"},
		{http.MethodPost, "/api/news"},
		{http.MethodPut, "/api/admin/banner"},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
		require.Contains(t, rec.Body.String(), `{"error":"Unauthorized"}`)
	}
}
