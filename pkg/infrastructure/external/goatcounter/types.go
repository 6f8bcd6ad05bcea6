package goatcounter

import "time"

// Page names a breakdown listing under /stats/{page}.
type Page string

const (
	PageBrowsers  Page = "browsers"
	PageSystems   Page = "systems"
	PageLocations Page = "locations"
	PageSizes     Page = "sizes"
	PageCampaigns Page = "campaigns"
	PageTopRefs   Page = "toprefs"
)

// HitStat is one day of a hit series.
type HitStat struct {
	Day    string `json:"day"`
	Hourly []int  `json:"hourly"`
	Daily  int    `json:"daily"`
}

// Hit is the pageview series of one path.
type Hit struct {
	PathID int64     `json:"path_id"`
	Path   string    `json:"path"`
	Title  string    `json:"title"`
	Event  bool      `json:"event"`
	Count  int       `json:"count"`
	Max    int       `json:"max"`
	Stats  []HitStat `json:"stats"`
}

type HitsResponse struct {
	Hits  []Hit `json:"hits"`
	Total int   `json:"total"`
	More  bool  `json:"more"`
}

type TotalResponse struct {
	Total       int       `json:"total"`
	TotalEvents int       `json:"total_events"`
	TotalUTC    int       `json:"total_utc"`
	Stats       []HitStat `json:"stats"`
}

// StatItem is one row of a breakdown page or a referrer listing.
type StatItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Count     int     `json:"count"`
	RefScheme *string `json:"ref_scheme,omitempty"`
}

type StatsResponse struct {
	Stats []StatItem `json:"stats"`
	More  bool       `json:"more"`
}

type RefsResponse struct {
	Refs []StatItem `json:"refs"`
	More bool       `json:"more"`
}

type Path struct {
	ID    int64  `json:"id"`
	Path  string `json:"path"`
	Title string `json:"title"`
	Event bool   `json:"event"`
}

type PathsResponse struct {
	Paths []Path `json:"paths"`
	More  bool   `json:"more"`
}

type Site struct {
	ID        int64     `json:"id"`
	Parent    *int64    `json:"parent"`
	Code      string    `json:"code"`
	Cname     *string   `json:"cname"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SitesResponse struct {
	Sites []Site `json:"sites"`
}

type User struct {
	ID     int64  `json:"id"`
	SiteID int64  `json:"site_id"`
	Email  string `json:"email"`
}

type MeResponse struct {
	User User `json:"user"`
}

// Pageview is a single hit sent to the count endpoint.
type Pageview struct {
	Path      string `json:"path"`
	Title     string `json:"title,omitempty"`
	Ref       string `json:"ref,omitempty"`
	Event     bool   `json:"event,omitempty"`
	Session   string `json:"session,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Location  string `json:"location,omitempty"`
}

type countRequest struct {
	NoSessions bool       `json:"no_sessions"`
	Hits       []Pageview `json:"hits"`
}
