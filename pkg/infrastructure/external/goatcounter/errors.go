package goatcounter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrNotConfigured is returned when a call is made without a site code or token.
var ErrNotConfigured = errors.New("analytics is not configured for this project")

// ErrorKind classifies a failed provider call.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindRateLimited
	KindUnreachable
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindUnreachable:
		return "unreachable"
	default:
		return "upstream_error"
	}
}

// Error is a classified provider failure. Message is safe to show to end users.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	// RetryAfter is the provider's suggested wait for rate-limited calls, 0 if none.
	RetryAfter time.Duration

	cause error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) IsRateLimited() bool {
	return e.Kind == KindRateLimited
}

func (e *Error) RetryHint() time.Duration {
	return e.RetryAfter
}

// IsKind reports whether err is a provider error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

const maxMessageLen = 200

var retryInRe = regexp.MustCompile(`try again in ([0-9]*\.?[0-9]+)ms`)

// classifyResponse turns a non-2xx response into an Error.
func classifyResponse(status int, header http.Header, body []byte) *Error {
	upstream := upstreamMessage(body)

	switch status {
	case http.StatusUnauthorized:
		return &Error{
			Kind:    KindUnauthorized,
			Status:  status,
			Message: "Analytics authentication failed: the API token was rejected. Check the project's API token.",
		}
	case http.StatusForbidden:
		return &Error{
			Kind:    KindForbidden,
			Status:  status,
			Message: "Analytics access denied: the API token is missing permission to read statistics for this site.",
		}
	case http.StatusNotFound:
		return &Error{
			Kind:    KindNotFound,
			Status:  status,
			Message: "Analytics site not found. Check the project's site code.",
		}
	case http.StatusTooManyRequests:
		return &Error{
			Kind:       KindRateLimited,
			Status:     status,
			Message:    "Analytics rate limit exceeded; the request should retry automatically.",
			RetryAfter: parseRetryAfter(header.Get("Retry-After"), upstream),
		}
	default:
		if upstream == "" {
			upstream = http.StatusText(status)
		}
		return &Error{
			Kind:    KindOther,
			Status:  status,
			Message: fmt.Sprintf("Analytics provider error (status %d): %s", status, upstream),
		}
	}
}

// classifyTransport turns a failed round trip into an Error. The request URL is
// dropped from the message.
func classifyTransport(err error) *Error {
	cause := err
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		cause = urlErr.Err
	}

	reason := "network error"
	if errors.Is(err, context.DeadlineExceeded) || (urlErr != nil && urlErr.Timeout()) {
		reason = "request timed out"
	}

	return &Error{
		Kind:    KindUnreachable,
		Message: fmt.Sprintf("Analytics provider unreachable: %s (%v)", reason, cause),
		cause:   err,
	}
}

// parseRetryAfter reads the retry hint of a 429. The header is whole seconds; the
// body form "try again in <float>ms" is milliseconds rounded up.
func parseRetryAfter(header string, message string) time.Duration {
	if header != "" {
		if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}

	if m := retryInRe.FindStringSubmatch(message); m != nil {
		if ms, err := strconv.ParseFloat(m[1], 64); err == nil && ms > 0 {
			return time.Duration(math.Ceil(ms)) * time.Millisecond
		}
	}
	return 0
}

// upstreamMessage extracts the provider's error text from a response body.
// Accepts {"error": "..."}, {"errors": {"field": ["..."]}} or plain text.
func upstreamMessage(body []byte) string {
	var payload struct {
		Error  string              `json:"error"`
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return truncate(payload.Error)
		}
		if len(payload.Errors) > 0 {
			fields := make([]string, 0, len(payload.Errors))
			for field := range payload.Errors {
				fields = append(fields, field)
			}
			sort.Strings(fields)
			parts := make([]string, 0, len(fields))
			for _, field := range fields {
				parts = append(parts, field+": "+strings.Join(payload.Errors[field], ", "))
			}
			return truncate(strings.Join(parts, "; "))
		}
	}
	return truncate(strings.TrimSpace(string(body)))
}

// truncate shortens s to at most maxMessageLen bytes without splitting a rune.
func truncate(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}
	cut := maxMessageLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
