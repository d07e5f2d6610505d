package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zenitmed/siteapi/internal/config"
)

func newTestRequest(t *testing.T, headers map[string]string, cookie string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/api/admin/logs", nil)
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	if cookie != "" {
		r.AddCookie(&http.Cookie{Name: CookieName, Value: cookie})
	}
	return r
}

func TestResolverOrder(t *testing.T) {
	codec := NewCodec([]byte("test-secret"))
	valid, err := codec.Issue()
	require.NoError(t, err)

	wrongCodec := NewCodec([]byte("another-secret"))
	invalid, err := wrongCodec.Issue()
	require.NoError(t, err)

	tests := []struct {
		name    string
		env     config.Environment
		headers map[string]string
		cookie  string
		want    Result
	}{
		{
			name:    "bypass header in development",
			env:     config.EnvDevelopment,
			headers: map[string]string{BypassHeader: "true"},
			want:    Result{IsAuthenticated: true, IsBypass: true},
		},
		{
			name:    "bypass header inert in production",
			env:     config.EnvProduction,
			headers: map[string]string{BypassHeader: "true"},
			want:    Result{},
		},
		{
			name:    "bypass header with wrong value ignored",
			env:     config.EnvDevelopment,
			headers: map[string]string{BypassHeader: "1"},
			want:    Result{},
		},
		{
			name:    "valid bearer token",
			env:     config.EnvProduction,
			headers: map[string]string{"Authorization": "Bearer " + valid},
			want:    Result{IsAuthenticated: true},
		},
		{
			name:    "bearer literal undefined falls through",
			env:     config.EnvProduction,
			headers: map[string]string{"Authorization": "Bearer undefined"},
			want:    Result{},
		},
		{
			name:    "bearer literal null falls through",
			env:     config.EnvProduction,
			headers: map[string]string{"Authorization": "Bearer null"},
			want:    Result{},
		},
		{
			name:   "valid cookie",
			env:    config.EnvProduction,
			cookie: valid,
			want:   Result{IsAuthenticated: true},
		},
		{
			name:   "invalid cookie",
			env:    config.EnvProduction,
			cookie: invalid,
			want:   Result{},
		},
		{
			name:    "valid bearer and valid cookie",
			env:     config.EnvProduction,
			headers: map[string]string{"Authorization": "Bearer " + valid},
			cookie:  valid,
			want:    Result{IsAuthenticated: true},
		},
		{
			name:    "invalid bearer falls back to valid cookie",
			env:     config.EnvProduction,
			headers: map[string]string{"Authorization": "Bearer " + invalid},
			cookie:  valid,
			want:    Result{IsAuthenticated: true},
		},
		{
			name: "no credentials",
			env:  config.EnvProduction,
			want: Result{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewResolver(codec, tt.env)
			got := resolver.Resolve(newTestRequest(t, tt.headers, tt.cookie))
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	codec := NewCodec([]byte("test-secret"))
	resolver := NewResolver(codec, config.EnvProduction)

	called := false
	handler := resolver.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	// Unauthenticated request never reaches the handler.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newTestRequest(t, nil, ""))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	require.False(t, called)

	// Authenticated request passes through.
	token, err := codec.Issue()
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, newTestRequest(t, nil, token))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, called)
}
