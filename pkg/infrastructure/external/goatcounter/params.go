package goatcounter

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format of the start and end parameters.
const DateLayout = "2006-01-02"

// Credentials identify a site and authorize requests against it.
type Credentials struct {
	SiteCode string
	Token    string
}

// Configured reports whether both the site code and the token are present.
func (c Credentials) Configured() bool {
	return strings.TrimSpace(c.SiteCode) != "" && strings.TrimSpace(c.Token) != ""
}

// QueryParams are the per-call query options. They are passed by value and never
// modified once built; the slices must not be mutated by the caller after use.
type QueryParams struct {
	Start        time.Time
	End          time.Time
	Limit        int
	Offset       int
	IncludePaths []int64
	ExcludePaths []int64
	Daily        bool
}

// Values renders the parameters as a query string. Zero values are omitted.
func (p QueryParams) Values() url.Values {
	v := url.Values{}
	if !p.Start.IsZero() {
		v.Set("start", p.Start.Format(DateLayout))
	}
	if !p.End.IsZero() {
		v.Set("end", p.End.Format(DateLayout))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		v.Set("offset", strconv.Itoa(p.Offset))
	}
	if p.Daily {
		v.Set("daily", "true")
	}
	if len(p.IncludePaths) > 0 {
		v.Set("include_paths", joinIDs(p.IncludePaths))
	}
	if len(p.ExcludePaths) > 0 {
		v.Set("exclude_paths", joinIDs(p.ExcludePaths))
	}
	return v
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
