package models

import (
	"time"

	"github.com/google/uuid"
)

// VisitorSession is one browser session on the public site, keyed by the
// client-generated session id and kept fresh by heartbeats.
type VisitorSession struct {
	ID             uuid.UUID `json:"id"`
	SessionID      string    `json:"sessionId"`
	IPAddress      string    `json:"ip"`
	UserAgent      string    `json:"userAgent"`
	Country        string    `json:"country,omitempty"`
	CountryCode    string    `json:"countryCode,omitempty"`
	Region         string    `json:"region,omitempty"`
	City           string    `json:"city,omitempty"`
	CurrentPage    string    `json:"currentPage"`
	PageTitle      string    `json:"pageTitle,omitempty"`
	Referrer       string    `json:"referrer,omitempty"`
	ScreenWidth    int       `json:"screenWidth,omitempty"`
	ScreenHeight   int       `json:"screenHeight,omitempty"`
	Language       string    `json:"language,omitempty"`
	Timezone       string    `json:"timezone,omitempty"`
	PageViewsCount int       `json:"pageViewsCount"`
	StartedAt      time.Time `json:"startedAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
}

// PageVisit is a single page view within a visitor session.
type PageVisit struct {
	ID          uuid.UUID `json:"id"`
	SessionID   string    `json:"sessionId"`
	IPAddress   string    `json:"ip"`
	UserAgent   string    `json:"userAgent"`
	Country     string    `json:"country,omitempty"`
	CountryCode string    `json:"countryCode,omitempty"`
	Region      string    `json:"region,omitempty"`
	City        string    `json:"city,omitempty"`
	PagePath    string    `json:"pagePath"`
	PageTitle   string    `json:"pageTitle,omitempty"`
	Referrer    string    `json:"referrer,omitempty"`
	UTMSource   string    `json:"utmSource,omitempty"`
	UTMMedium   string    `json:"utmMedium,omitempty"`
	UTMCampaign string    `json:"utmCampaign,omitempty"`
	DeviceType  string    `json:"deviceType"`
	Browser     string    `json:"browser"`
	OS          string    `json:"os"`
	TimeOnPage  int       `json:"timeOnPage,omitempty"`
	VisitedAt   time.Time `json:"visitedAt"`
}

// Geolocation is the cached lookup result for one IP address.
type Geolocation struct {
	Country     string
	CountryCode string
	Region      string
	City        string
}

// PageStat aggregates visits for one path.
type PageStat struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// NamedStat is a generic name/count aggregation row (country, device, ...).
type NamedStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// VisitorStats is the admin analytics dashboard payload.
type VisitorStats struct {
	VisitorsToday  int         `json:"visitorsToday"`
	VisitorsTotal  int         `json:"visitorsTotal"`
	ActiveNow      int         `json:"activeNow"`
	PageViewsToday int         `json:"pageViewsToday"`
	TopPages       []PageStat  `json:"topPages"`
	ByCountry      []NamedStat `json:"byCountry"`
	ByDevice       []NamedStat `json:"byDevice"`
}
