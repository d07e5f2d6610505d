package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zenitmed/siteapi/internal/store/memory"
)

func TestDeviceType(t *testing.T) {
	tests := []struct {
		userAgent string
		want      string
	}{
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36", "desktop"},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile/15E148", "mobile"},
		{"Mozilla/5.0 (Linux; Android 14; SM-S918B) Mobile Safari/537.36", "mobile"},
		{"Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15", "tablet"},
		{"", "desktop"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, DeviceType(tt.userAgent), tt.userAgent)
	}
}

func TestBrowser(t *testing.T) {
	tests := []struct {
		userAgent string
		want      string
	}{
		{"Mozilla/5.0 (Windows NT 10.0) Gecko/20100101 Firefox/121.0", "Firefox"},
		{"Mozilla/5.0 (Windows NT 10.0) Chrome/120.0 Safari/537.36 Edg/120.0", "Edge"},
		{"Mozilla/5.0 (Windows NT 10.0) Chrome/120.0 Safari/537.36", "Chrome"},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Version/17.0 Safari/605.1.15", "Safari"},
		{"curl/8.4.0", "Other"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, Browser(tt.userAgent), tt.userAgent)
	}
}

func TestOS(t *testing.T) {
	tests := []struct {
		userAgent string
		want      string
	}{
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64)", "Windows"},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)", "macOS"},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", "iOS"},
		{"Mozilla/5.0 (Linux; Android 14; SM-S918B)", "Android"},
		{"Mozilla/5.0 (X11; Linux x86_64)", "Linux"},
		{"curl/8.4.0", "Other"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, OS(tt.userAgent), tt.userAgent)
	}
}

func TestGeoResolverLocalAddresses(t *testing.T) {
	resolver := NewGeoResolver(memory.NewAnalyticsStore(), &http.Client{})
	resolver.endpoint = "http://unreachable.invalid"

	for _, ip := range []string{"127.0.0.1", "::1", "192.168.1.10", "10.0.0.5", ""} {
		geo := resolver.Resolve(context.Background(), ip)
		require.Equal(t, "Local", geo.Country, ip)
	}
}

func TestGeoResolverCachesLookups(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, "status,country,countryCode,regionName,city", r.URL.Query().Get("fields"))
		require.Equal(t, "ru", r.URL.Query().Get("lang"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","country":"Россия","countryCode":"RU","regionName":"Москва","city":"Москва"}`))
	}))
	defer srv.Close()

	resolver := NewGeoResolver(memory.NewAnalyticsStore(), srv.Client())
	resolver.endpoint = srv.URL

	geo := resolver.Resolve(context.Background(), "8.8.8.8")
	require.Equal(t, "Россия", geo.Country)
	require.Equal(t, "RU", geo.CountryCode)

	geo = resolver.Resolve(context.Background(), "8.8.8.8")
	require.Equal(t, "Россия", geo.Country)
	require.Equal(t, 1, calls)
}

func TestGeoResolverLookupFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"fail"}`))
	}))
	defer srv.Close()

	client := srv.Client()
	client.Timeout = time.Second

	resolver := NewGeoResolver(memory.NewAnalyticsStore(), client)
	resolver.endpoint = srv.URL

	geo := resolver.Resolve(context.Background(), "8.8.8.8")
	require.Empty(t, geo.Country)
}
