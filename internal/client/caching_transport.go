package client

import (
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
)

// NewCachingHTTPClient creates an HTTP client with an in-memory HTTP cache
// and a short timeout, used for outbound lookups (geolocation) where a
// slow third party must never stall request handling.
func NewCachingHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &http.Client{
		Transport: httpcache.NewTransport(httpcache.NewMemoryCache()),
		Timeout:   timeout,
	}
}
