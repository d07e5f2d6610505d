package store

import (
	"context"

	"github.com/zenitmed/siteapi/internal/models"
)

// AnalyticsStore records visitor sessions and page visits and serves the
// admin dashboard aggregations.
type AnalyticsStore interface {
	// TrackPageview upserts the visitor session (creating it on first
	// sight, otherwise bumping activity and the view counter) and appends
	// the page visit.
	TrackPageview(ctx context.Context, sess *models.VisitorSession, visit *models.PageVisit) error

	// Heartbeat refreshes last activity and the current page of a session.
	Heartbeat(ctx context.Context, sessionID, pagePath, pageTitle string) error

	// RecordLeave backfills time-on-page for the latest visit of the
	// session on the given path.
	RecordLeave(ctx context.Context, sessionID, pagePath string, seconds int) error

	// Stats computes the dashboard aggregation.
	Stats(ctx context.Context) (*models.VisitorStats, error)

	// RecentSessions lists the most recently active sessions.
	RecentSessions(ctx context.Context, limit int) ([]*models.VisitorSession, error)
}

// GeoCache caches IP geolocation lookups so ip-api.com is consulted at most
// once per address.
type GeoCache interface {
	// Get returns the cached geolocation, or nil when the IP is unknown.
	Get(ctx context.Context, ip string) (*models.Geolocation, error)

	// Put stores or refreshes a lookup result.
	Put(ctx context.Context, ip string, geo *models.Geolocation) error
}
