package goatcounter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"statsboard-backend/config"
	"statsboard-backend/pkg/infrastructure/metrics"
	"statsboard-backend/pkg/infrastructure/ratelimit"
	"statsboard-backend/pkg/util/logger"
)

const (
	// DefaultBaseURL is formatted with the site code.
	DefaultBaseURL = "https://%s.goatcounter.com/api/v0"
	// DefaultTimeout bounds every request regardless of endpoint.
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 4 << 20
)

// Client is a typed facade over the GoatCounter API. Every request is submitted to
// the shared rate governor, so callers never talk to the provider directly.
type Client struct {
	governor   *ratelimit.Governor
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	metrics    metrics.Sink
	logger     *zap.SugaredLogger
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL sets the API root. A "%s" verb is replaced by the site code.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithMetrics(sink metrics.Sink) Option {
	return func(c *Client) {
		if sink != nil {
			c.metrics = sink
		}
	}
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client that dispatches through governor.
func New(governor *ratelimit.Governor, opts ...Option) *Client {
	c := &Client{
		governor:   governor,
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
		timeout:    DefaultTimeout,
		metrics:    metrics.NoopSink{},
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig creates a client from config.C.Provider.
func NewFromConfig(governor *ratelimit.Governor, opts ...Option) *Client {
	cfg := config.C.Provider

	base := []Option{
		WithBaseURL(cfg.BaseURL),
		WithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second),
		WithLogger(logger.New("goatcounter")),
	}
	return New(governor, append(base, opts...)...)
}

type request struct {
	endpoint string
	method   string
	path     string
	query    url.Values
	body     any
}

// Hits fetches the pageview series per path.
func (c *Client) Hits(ctx context.Context, creds Credentials, params QueryParams) (*HitsResponse, error) {
	return fetch[HitsResponse](ctx, c, creds, request{
		endpoint: "hits",
		method:   http.MethodGet,
		path:     "/stats/hits",
		query:    params.Values(),
	})
}

// Total fetches the aggregate pageview totals.
func (c *Client) Total(ctx context.Context, creds Credentials, params QueryParams) (*TotalResponse, error) {
	return fetch[TotalResponse](ctx, c, creds, request{
		endpoint: "total",
		method:   http.MethodGet,
		path:     "/stats/total",
		query:    params.Values(),
	})
}

// Stats fetches one page of a breakdown such as browsers or locations.
func (c *Client) Stats(ctx context.Context, creds Credentials, page Page, params QueryParams) (*StatsResponse, error) {
	return fetch[StatsResponse](ctx, c, creds, request{
		endpoint: "stats_" + string(page),
		method:   http.MethodGet,
		path:     "/stats/" + url.PathEscape(string(page)),
		query:    params.Values(),
	})
}

// PathReferrers fetches the referrers of a single path.
func (c *Client) PathReferrers(ctx context.Context, creds Credentials, pathID int64, params QueryParams) (*RefsResponse, error) {
	return fetch[RefsResponse](ctx, c, creds, request{
		endpoint: "path_refs",
		method:   http.MethodGet,
		path:     "/stats/hits/" + strconv.FormatInt(pathID, 10),
		query:    params.Values(),
	})
}

// Paths lists the site's paths. Offset is sent as the "after" path id.
func (c *Client) Paths(ctx context.Context, creds Credentials, params QueryParams) (*PathsResponse, error) {
	q := url.Values{}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		q.Set("after", strconv.Itoa(params.Offset))
	}
	return fetch[PathsResponse](ctx, c, creds, request{
		endpoint: "paths",
		method:   http.MethodGet,
		path:     "/paths",
		query:    q,
	})
}

// Sites lists the sites visible to the token.
func (c *Client) Sites(ctx context.Context, creds Credentials) (*SitesResponse, error) {
	return fetch[SitesResponse](ctx, c, creds, request{
		endpoint: "sites",
		method:   http.MethodGet,
		path:     "/sites",
	})
}

// Me returns the account the token belongs to.
func (c *Client) Me(ctx context.Context, creds Credentials) (*MeResponse, error) {
	return fetch[MeResponse](ctx, c, creds, request{
		endpoint: "me",
		method:   http.MethodGet,
		path:     "/me",
	})
}

// RecordResult is the outcome of a best-effort pageview recording.
type RecordResult struct {
	Err error
}

func (r RecordResult) OK() bool {
	return r.Err == nil
}

// RecordPageview queues a pageview and returns immediately. Failures are logged and
// delivered on the returned channel, never raised; callers may ignore the channel.
func (c *Client) RecordPageview(ctx context.Context, creds Credentials, pv Pageview) <-chan RecordResult {
	out := make(chan RecordResult, 1)

	if !creds.Configured() {
		out <- RecordResult{Err: ErrNotConfigured}
		close(out)
		return out
	}

	f := c.governor.Submit(ctx, func(ctx context.Context) (any, error) {
		return nil, c.roundTrip(ctx, creds, request{
			endpoint: "count",
			method:   http.MethodPost,
			path:     "/count",
			body:     countRequest{NoSessions: true, Hits: []Pageview{pv}},
		}, nil)
	})

	go func() {
		defer close(out)
		<-f.Done()
		_, err := f.Wait(context.Background())
		if err != nil {
			c.logger.Warnw("failed to record pageview",
				"site", creds.SiteCode,
				"path", pv.Path,
				"attempts", f.Attempts(),
				"error", err,
			)
		}
		out <- RecordResult{Err: err}
	}()
	return out
}

func fetch[T any](ctx context.Context, c *Client, creds Credentials, r request) (*T, error) {
	if !creds.Configured() {
		return nil, ErrNotConfigured
	}

	res, err := ratelimit.Do(ctx, c.governor, func(ctx context.Context) (*T, error) {
		var out T
		if err := c.roundTrip(ctx, creds, r, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		c.logger.Infow("analytics request failed",
			"endpoint", r.endpoint,
			"site", creds.SiteCode,
			"error", err,
		)
		return nil, err
	}
	return res, nil
}

func (c *Client) siteURL(siteCode string) string {
	if strings.Contains(c.baseURL, "%s") {
		return fmt.Sprintf(c.baseURL, url.PathEscape(siteCode))
	}
	return c.baseURL
}

// roundTrip performs one HTTP exchange. It runs inside a governor work unit.
func (c *Client) roundTrip(ctx context.Context, creds Credentials, r request, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.siteURL(creds.SiteCode) + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.Token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamRequest(r.endpoint, metrics.StatusClass(0), time.Since(startTime))
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.metrics.UpstreamRequest(r.endpoint, metrics.StatusClass(resp.StatusCode), time.Since(startTime))
	if err != nil {
		return classifyTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyResponse(resp.StatusCode, resp.Header, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{
			Kind:    KindOther,
			Status:  resp.StatusCode,
			Message: "Analytics provider returned an unreadable response.",
			cause:   err,
		}
	}
	return nil
}
