package model

// SiteStatus is the outcome of aggregating one project.
type SiteStatus string

const (
	SiteStatusOK            SiteStatus = "ok"
	SiteStatusFailed        SiteStatus = "failed"
	SiteStatusNotConfigured SiteStatus = "not_configured"
)

// DashboardSuggestion is attached to every warnings block.
const DashboardSuggestion = "Check the site code and API token of the failed projects in their settings. " +
	"Rate-limited projects usually recover on the next refresh."

// PageView is the pageview count of one path.
type PageView struct {
	PathID int64  `json:"pathId"`
	Path   string `json:"path"`
	Title  string `json:"title"`
	Event  bool   `json:"event"`
	Count  int    `json:"count"`
}

// DailyCount is the pageview count of one day.
type DailyCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// SiteAnalytics is the metrics snapshot of one project for the requested range.
type SiteAnalytics struct {
	TotalPageviews int          `json:"totalPageviews"`
	TotalEvents    int          `json:"totalEvents"`
	Visitors       int          `json:"visitors"`
	PageViews      []PageView   `json:"pageViews"`
	Daily          []DailyCount `json:"daily"`
}

// SiteEntry is one project of a dashboard. Analytics is set only when Status is ok,
// Error only when Status is failed.
type SiteEntry struct {
	ProjectID   ID             `json:"projectId"`
	ProjectName string         `json:"projectName"`
	SiteCode    string         `json:"siteCode,omitempty"`
	Status      SiteStatus     `json:"status"`
	Analytics   *SiteAnalytics `json:"analytics"`
	Error       string         `json:"error,omitempty"`
}

// DashboardTotals sums the successful entries of a dashboard.
type DashboardTotals struct {
	TotalPageviews int `json:"totalPageviews"`
	TotalVisitors  int `json:"totalVisitors"`
	TotalSites     int `json:"totalSites"`
	FailedProjects int `json:"failedProjects"`
}

// DashboardWarnings summarizes the projects that failed.
type DashboardWarnings struct {
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
	Suggestion string   `json:"suggestion"`
}

// DashboardResult is the aggregated analytics of every project of a user.
// Totals is nil when the user has no projects.
type DashboardResult struct {
	Sites    []SiteEntry        `json:"sites"`
	Totals   *DashboardTotals   `json:"totals"`
	Warnings *DashboardWarnings `json:"warnings,omitempty"`
	Range    DateRange          `json:"range"`
}

// Breakdown is one row of a breakdown listing such as browsers.
type Breakdown struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ProjectDetail is the analytics of a single project including breakdowns. A
// breakdown that failed is nil and its error is listed in BreakdownErrors.
type ProjectDetail struct {
	SiteEntry
	Browsers        []Breakdown       `json:"browsers"`
	Systems         []Breakdown       `json:"systems"`
	Locations       []Breakdown       `json:"locations"`
	Referrers       []Breakdown       `json:"referrers"`
	BreakdownErrors map[string]string `json:"breakdownErrors,omitempty"`
	Range           DateRange         `json:"range"`
}
