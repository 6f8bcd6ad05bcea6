package datetime

import (
	"fmt"
	"time"
)

// FormatDate formats t as RFC 3339 in its own zone.
func FormatDate(t time.Time) string {
	return t.Format(time.RFC3339)
}

// FormatSpan describes a run from start to end, e.g.
// "2024-02-11T10:30:40Z to 2024-02-11T10:30:42Z (1.5s)". The duration is rounded to
// milliseconds and never negative.
func FormatSpan(start, end time.Time) string {
	d := end.Sub(start).Round(time.Millisecond)
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%s to %s (%s)", FormatDate(start), FormatDate(end), d)
}
