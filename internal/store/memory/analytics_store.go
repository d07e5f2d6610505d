package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zenitmed/siteapi/internal/models"
)

// AnalyticsStore implements store.AnalyticsStore and store.GeoCache using
// in-memory storage.
type AnalyticsStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.VisitorSession
	visits   []*models.PageVisit
	geo      map[string]*models.Geolocation
}

// NewAnalyticsStore creates a new in-memory analytics store.
func NewAnalyticsStore() *AnalyticsStore {
	return &AnalyticsStore{
		sessions: make(map[string]*models.VisitorSession),
		geo:      make(map[string]*models.Geolocation),
	}
}

func (s *AnalyticsStore) TrackPageview(ctx context.Context, sess *models.VisitorSession, visit *models.PageVisit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if existing, ok := s.sessions[sess.SessionID]; ok {
		existing.CurrentPage = sess.CurrentPage
		existing.PageTitle = sess.PageTitle
		existing.LastActivityAt = now
		existing.PageViewsCount++
	} else {
		clone := *sess
		if clone.ID == uuid.Nil {
			clone.ID = uuid.New()
		}
		clone.PageViewsCount = 1
		clone.StartedAt = now
		clone.LastActivityAt = now
		s.sessions[sess.SessionID] = &clone
	}

	vclone := *visit
	if vclone.ID == uuid.Nil {
		vclone.ID = uuid.New()
	}
	vclone.VisitedAt = now
	s.visits = append(s.visits, &vclone)
	return nil
}

func (s *AnalyticsStore) Heartbeat(ctx context.Context, sessionID, pagePath, pageTitle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		sess.LastActivityAt = time.Now()
		sess.CurrentPage = pagePath
		sess.PageTitle = pageTitle
	}
	return nil
}

func (s *AnalyticsStore) RecordLeave(ctx context.Context, sessionID, pagePath string, seconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.visits) - 1; i >= 0; i-- {
		v := s.visits[i]
		if v.SessionID == sessionID && v.PagePath == pagePath {
			v.TimeOnPage = seconds
			return nil
		}
	}
	return nil
}

func (s *AnalyticsStore) Stats(ctx context.Context) (*models.VisitorStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats := &models.VisitorStats{VisitorsTotal: len(s.sessions)}

	countries := make(map[string]int)
	for _, sess := range s.sessions {
		if !sess.StartedAt.Before(midnight) {
			stats.VisitorsToday++
		}
		if now.Sub(sess.LastActivityAt) < 5*time.Minute {
			stats.ActiveNow++
		}
		country := sess.Country
		if country == "" {
			country = "Unknown"
		}
		countries[country]++
	}

	pages := make(map[string]int)
	devices := make(map[string]int)
	for _, v := range s.visits {
		if !v.VisitedAt.Before(midnight) {
			stats.PageViewsToday++
		}
		pages[v.PagePath]++
		devices[v.DeviceType]++
	}

	stats.TopPages = topPageStats(pages, 10)
	stats.ByCountry = toNamedStats(countries, 10)
	stats.ByDevice = toNamedStats(devices, 0)
	return stats, nil
}

func (s *AnalyticsStore) RecentSessions(ctx context.Context, limit int) ([]*models.VisitorSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var sessions []*models.VisitorSession
	for _, sess := range s.sessions {
		clone := *sess
		sessions = append(sessions, &clone)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastActivityAt.After(sessions[j].LastActivityAt)
	})
	if len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

// Get implements store.GeoCache.
func (s *AnalyticsStore) Get(ctx context.Context, ip string) (*models.Geolocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	geo, ok := s.geo[ip]
	if !ok {
		return nil, nil
	}
	clone := *geo
	return &clone, nil
}

// Put implements store.GeoCache.
func (s *AnalyticsStore) Put(ctx context.Context, ip string, geo *models.Geolocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *geo
	s.geo[ip] = &clone
	return nil
}

func topPageStats(counts map[string]int, limit int) []models.PageStat {
	var stats []models.PageStat
	for path, count := range counts {
		stats = append(stats, models.PageStat{Path: path, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Path < stats[j].Path
	})
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

func toNamedStats(counts map[string]int, limit int) []models.NamedStat {
	var stats []models.NamedStat
	for name, count := range counts {
		stats = append(stats, models.NamedStat{Name: name, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Name < stats[j].Name
	})
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}
