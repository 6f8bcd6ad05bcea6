package metrics

import "time"

// Sink records rate governor and upstream call metrics.
// All methods must be non-blocking and fire-and-forget.
type Sink interface {
	// QueueDepth reports the number of work units waiting for dispatch.
	QueueDepth(depth int)
	// Dispatched counts a finished work unit by outcome ("success", "failure").
	Dispatched(outcome string)
	// RetryScheduled records a rate-limit retry and the backoff chosen for it.
	RetryScheduled(delay time.Duration)
	// PacingWait records how long a dispatch waited for the minimum interval.
	PacingWait(delay time.Duration)
	// UpstreamRequest records one HTTP round trip to the provider.
	UpstreamRequest(endpoint string, statusClass string, duration time.Duration)
}

// StatusClass buckets an HTTP status code for metric labels.
// A zero status means the request never got a response.
func StatusClass(status int) string {
	switch {
	case status == 0:
		return "error"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status == 429:
		return "429"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
