package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zenitmed/siteapi/internal/models"
)

// AnalyticsStore implements store.AnalyticsStore and store.GeoCache using
// PostgreSQL.
type AnalyticsStore struct {
	pool *pgxpool.Pool
}

// NewAnalyticsStore creates a new PostgreSQL-backed analytics store.
func NewAnalyticsStore(pool *pgxpool.Pool) *AnalyticsStore {
	return &AnalyticsStore{pool: pool}
}

// TrackPageview upserts the visitor session and appends the page visit in
// one transaction.
func (s *AnalyticsStore) TrackPageview(ctx context.Context, sess *models.VisitorSession, visit *models.PageVisit) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	upsert := `
		INSERT INTO visitor_sessions (
			session_id, ip_address, user_agent, country, country_code, region, city,
			current_page, page_title, referrer, screen_width, screen_height, language, timezone
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, 0), NULLIF($12, 0), $13, $14)
		ON CONFLICT (session_id) DO UPDATE SET
			current_page = EXCLUDED.current_page,
			page_title = EXCLUDED.page_title,
			last_activity_at = NOW(),
			page_views_count = visitor_sessions.page_views_count + 1
	`

	_, err = tx.Exec(ctx, upsert,
		sess.SessionID, sess.IPAddress, sess.UserAgent,
		nullIfEmpty(sess.Country), nullIfEmpty(sess.CountryCode), nullIfEmpty(sess.Region), nullIfEmpty(sess.City),
		sess.CurrentPage, sess.PageTitle, sess.Referrer,
		sess.ScreenWidth, sess.ScreenHeight, sess.Language, sess.Timezone,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert visitor session: %w", mapPostgresError(err))
	}

	insert := `
		INSERT INTO page_visits (
			session_id, ip_address, user_agent, country, country_code, region, city,
			page_path, page_title, referrer, utm_source, utm_medium, utm_campaign,
			device_type, browser, os
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err = tx.Exec(ctx, insert,
		visit.SessionID, visit.IPAddress, visit.UserAgent,
		nullIfEmpty(visit.Country), nullIfEmpty(visit.CountryCode), nullIfEmpty(visit.Region), nullIfEmpty(visit.City),
		visit.PagePath, visit.PageTitle, visit.Referrer,
		nullIfEmpty(visit.UTMSource), nullIfEmpty(visit.UTMMedium), nullIfEmpty(visit.UTMCampaign),
		visit.DeviceType, visit.Browser, visit.OS,
	)
	if err != nil {
		return fmt.Errorf("failed to insert page visit: %w", mapPostgresError(err))
	}

	return tx.Commit(ctx)
}

// Heartbeat refreshes last activity and the current page of a session.
// Unknown sessions are ignored.
func (s *AnalyticsStore) Heartbeat(ctx context.Context, sessionID, pagePath, pageTitle string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE visitor_sessions SET
			last_activity_at = NOW(),
			current_page = $2,
			page_title = $3
		WHERE session_id = $1
	`, sessionID, pagePath, pageTitle)
	if err != nil {
		return fmt.Errorf("failed to record heartbeat: %w", mapPostgresError(err))
	}
	return nil
}

// RecordLeave backfills time-on-page for the latest matching visit.
func (s *AnalyticsStore) RecordLeave(ctx context.Context, sessionID, pagePath string, seconds int) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE page_visits SET time_on_page = $3
		WHERE id = (
			SELECT id FROM page_visits
			WHERE session_id = $1 AND page_path = $2
			ORDER BY visited_at DESC LIMIT 1
		)
	`, sessionID, pagePath, seconds)
	if err != nil {
		return fmt.Errorf("failed to record leave: %w", mapPostgresError(err))
	}
	return nil
}

// Stats computes the admin dashboard aggregation.
func (s *AnalyticsStore) Stats(ctx context.Context) (*models.VisitorStats, error) {
	var stats models.VisitorStats

	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM visitor_sessions WHERE started_at >= CURRENT_DATE),
			(SELECT COUNT(*) FROM visitor_sessions),
			(SELECT COUNT(*) FROM visitor_sessions WHERE last_activity_at > NOW() - INTERVAL '5 minutes'),
			(SELECT COUNT(*) FROM page_visits WHERE visited_at >= CURRENT_DATE)
	`).Scan(&stats.VisitorsToday, &stats.VisitorsTotal, &stats.ActiveNow, &stats.PageViewsToday)
	if err != nil {
		return nil, fmt.Errorf("failed to compute visitor stats: %w", mapPostgresError(err))
	}

	stats.TopPages, err = s.topPages(ctx)
	if err != nil {
		return nil, err
	}
	stats.ByCountry, err = s.namedStats(ctx,
		`SELECT COALESCE(country, 'Unknown'), COUNT(*) FROM visitor_sessions GROUP BY 1 ORDER BY 2 DESC LIMIT 10`)
	if err != nil {
		return nil, err
	}
	stats.ByDevice, err = s.namedStats(ctx,
		`SELECT device_type, COUNT(*) FROM page_visits GROUP BY 1 ORDER BY 2 DESC`)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// RecentSessions lists the most recently active sessions.
func (s *AnalyticsStore) RecentSessions(ctx context.Context, limit int) ([]*models.VisitorSession, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, ip_address, user_agent,
		       COALESCE(country, ''), COALESCE(country_code, ''), COALESCE(region, ''), COALESCE(city, ''),
		       current_page, page_title, referrer,
		       COALESCE(screen_width, 0), COALESCE(screen_height, 0), language, timezone,
		       page_views_count, started_at, last_activity_at
		FROM visitor_sessions
		ORDER BY last_activity_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list visitor sessions: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var sessions []*models.VisitorSession
	for rows.Next() {
		var vs models.VisitorSession
		err := rows.Scan(
			&vs.ID, &vs.SessionID, &vs.IPAddress, &vs.UserAgent,
			&vs.Country, &vs.CountryCode, &vs.Region, &vs.City,
			&vs.CurrentPage, &vs.PageTitle, &vs.Referrer,
			&vs.ScreenWidth, &vs.ScreenHeight, &vs.Language, &vs.Timezone,
			&vs.PageViewsCount, &vs.StartedAt, &vs.LastActivityAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan visitor session: %w", err)
		}
		sessions = append(sessions, &vs)
	}
	return sessions, rows.Err()
}

// Get implements store.GeoCache.
func (s *AnalyticsStore) Get(ctx context.Context, ip string) (*models.Geolocation, error) {
	var geo models.Geolocation
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(country, ''), COALESCE(country_code, ''), COALESCE(region, ''), COALESCE(city, '')
		FROM ip_geolocation_cache
		WHERE ip_address = $1
	`, ip).Scan(&geo.Country, &geo.CountryCode, &geo.Region, &geo.City)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read geolocation cache: %w", mapPostgresError(err))
	}
	return &geo, nil
}

// Put implements store.GeoCache.
func (s *AnalyticsStore) Put(ctx context.Context, ip string, geo *models.Geolocation) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ip_geolocation_cache (ip_address, country, country_code, region, city)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (ip_address) DO UPDATE SET
			country = EXCLUDED.country,
			country_code = EXCLUDED.country_code,
			region = EXCLUDED.region,
			city = EXCLUDED.city,
			cached_at = NOW()
	`, ip, nullIfEmpty(geo.Country), nullIfEmpty(geo.CountryCode), nullIfEmpty(geo.Region), nullIfEmpty(geo.City))
	if err != nil {
		return fmt.Errorf("failed to write geolocation cache: %w", mapPostgresError(err))
	}
	return nil
}

func (s *AnalyticsStore) topPages(ctx context.Context) ([]models.PageStat, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT page_path, COUNT(*) FROM page_visits GROUP BY page_path ORDER BY 2 DESC LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top pages: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var stats []models.PageStat
	for rows.Next() {
		var ps models.PageStat
		if err := rows.Scan(&ps.Path, &ps.Count); err != nil {
			return nil, fmt.Errorf("failed to scan page stat: %w", err)
		}
		stats = append(stats, ps)
	}
	return stats, rows.Err()
}

func (s *AnalyticsStore) namedStats(ctx context.Context, query string) ([]models.NamedStat, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var stats []models.NamedStat
	for rows.Next() {
		var ns models.NamedStat
		if err := rows.Scan(&ns.Name, &ns.Count); err != nil {
			return nil, fmt.Errorf("failed to scan stat: %w", err)
		}
		stats = append(stats, ns)
	}
	return stats, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
