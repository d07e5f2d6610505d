package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/netip"

	"github.com/rs/zerolog/log"

	"github.com/zenitmed/siteapi/internal/models"
	"github.com/zenitmed/siteapi/internal/store"
)

const geoEndpoint = "http://ip-api.com/json"

// GeoResolver looks up visitor geolocation via ip-api.com, backed by a
// database cache so repeat visitors never trigger a second lookup.
type GeoResolver struct {
	cache    store.GeoCache
	client   *http.Client
	endpoint string
}

func NewGeoResolver(cache store.GeoCache, client *http.Client) *GeoResolver {
	return &GeoResolver{
		cache:    cache,
		client:   client,
		endpoint: geoEndpoint,
	}
}

type geoAPIResponse struct {
	Status      string `json:"status"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	RegionName  string `json:"regionName"`
	City        string `json:"city"`
}

// Resolve returns the geolocation for ip. Private and loopback addresses
// resolve to a "Local" placeholder without any network call. Lookup
// failures are soft: a zero-value Geolocation is returned so tracking
// still records the visit.
func (g *GeoResolver) Resolve(ctx context.Context, ip string) models.Geolocation {
	if ip == "" || isPrivateIP(ip) {
		return models.Geolocation{Country: "Local", CountryCode: "LO", Region: "Local", City: "Local"}
	}

	if cached, err := g.cache.Get(ctx, ip); err == nil && cached != nil {
		return *cached
	}

	geo, err := g.lookup(ctx, ip)
	if err != nil {
		log.Warn().Err(err).Str("ip", ip).Msg("geolocation lookup failed")
		return models.Geolocation{}
	}

	if err := g.cache.Put(ctx, ip, &geo); err != nil {
		log.Warn().Err(err).Str("ip", ip).Msg("failed to cache geolocation")
	}

	return geo
}

func (g *GeoResolver) lookup(ctx context.Context, ip string) (models.Geolocation, error) {
	url := fmt.Sprintf("%s/%s?fields=status,country,countryCode,regionName,city&lang=ru", g.endpoint, ip)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.Geolocation{}, fmt.Errorf("failed to build geolocation request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return models.Geolocation{}, fmt.Errorf("geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Geolocation{}, fmt.Errorf("geolocation service returned status %d", resp.StatusCode)
	}

	var body geoAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.Geolocation{}, fmt.Errorf("failed to decode geolocation response: %w", err)
	}

	if body.Status != "success" {
		return models.Geolocation{}, fmt.Errorf("geolocation lookup for %s returned status %q", ip, body.Status)
	}

	return models.Geolocation{
		Country:     body.Country,
		CountryCode: body.CountryCode,
		Region:      body.RegionName,
		City:        body.City,
	}, nil
}

func isPrivateIP(ip string) bool {
	if ip == "localhost" {
		return true
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast()
}
