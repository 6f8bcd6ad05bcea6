package goatcounter_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statsboard-backend/pkg/infrastructure/external/goatcounter"
	"statsboard-backend/pkg/infrastructure/ratelimit"
)

var creds = goatcounter.Credentials{SiteCode: "mysite", Token: "s3cr3t-token"}

func newTestGovernor() *ratelimit.Governor {
	return ratelimit.New(
		ratelimit.WithMinInterval(time.Millisecond),
		ratelimit.WithPolicy(ratelimit.Policy{Base: time.Millisecond, Floor: time.Millisecond}),
	)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...goatcounter.Option) *goatcounter.Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]goatcounter.Option{goatcounter.WithBaseURL(server.URL + "/%s/api/v0")}, opts...)
	return goatcounter.New(newTestGovernor(), opts...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestClient_Hits(t *testing.T) {
	var gotPath, gotAuth string
	var gotQuery map[string][]string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query()
		writeJSON(w, http.StatusOK, map[string]any{
			"hits": []map[string]any{
				{"path_id": 1, "path": "/", "title": "Home", "count": 12},
				{"path_id": 2, "path": "/about", "title": "About", "count": 3},
			},
			"total": 15,
			"more":  false,
		})
	})

	res, err := client.Hits(testContext(t), creds, goatcounter.QueryParams{
		Start:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Limit:        10,
		Daily:        true,
		IncludePaths: []int64{1, 2},
	})
	require.NoError(t, err)

	assert.Equal(t, "/mysite/api/v0/stats/hits", gotPath)
	assert.Equal(t, "Bearer s3cr3t-token", gotAuth)
	assert.Equal(t, []string{"2024-01-01"}, gotQuery["start"])
	assert.Equal(t, []string{"2024-01-31"}, gotQuery["end"])
	assert.Equal(t, []string{"10"}, gotQuery["limit"])
	assert.Equal(t, []string{"true"}, gotQuery["daily"])
	assert.Equal(t, []string{"1,2"}, gotQuery["include_paths"])
	assert.NotContains(t, gotQuery, "exclude_paths")

	require.Len(t, res.Hits, 2)
	assert.Equal(t, "/about", res.Hits[1].Path)
	assert.Equal(t, 15, res.Total)
}

func TestClient_Endpoints(t *testing.T) {
	tests := []struct {
		name     string
		wantPath string
		body     any
		act      func(ctx context.Context, c *goatcounter.Client) (any, error)
		assert   func(t *testing.T, got any)
	}{
		{
			name:     "total",
			wantPath: "/mysite/api/v0/stats/total",
			body:     map[string]any{"total": 1000, "total_events": 4},
			act: func(ctx context.Context, c *goatcounter.Client) (any, error) {
				return c.Total(ctx, creds, goatcounter.QueryParams{})
			},
			assert: func(t *testing.T, got any) {
				res := got.(*goatcounter.TotalResponse)
				assert.Equal(t, 1000, res.Total)
				assert.Equal(t, 4, res.TotalEvents)
			},
		},
		{
			name:     "browsers",
			wantPath: "/mysite/api/v0/stats/browsers",
			body:     map[string]any{"stats": []map[string]any{{"id": "Firefox", "name": "Firefox", "count": 7}}},
			act: func(ctx context.Context, c *goatcounter.Client) (any, error) {
				return c.Stats(ctx, creds, goatcounter.PageBrowsers, goatcounter.QueryParams{Limit: 5})
			},
			assert: func(t *testing.T, got any) {
				res := got.(*goatcounter.StatsResponse)
				require.Len(t, res.Stats, 1)
				assert.Equal(t, 7, res.Stats[0].Count)
			},
		},
		{
			name:     "path referrers",
			wantPath: "/mysite/api/v0/stats/hits/42",
			body:     map[string]any{"refs": []map[string]any{{"name": "news.ycombinator.com", "count": 9}}},
			act: func(ctx context.Context, c *goatcounter.Client) (any, error) {
				return c.PathReferrers(ctx, creds, 42, goatcounter.QueryParams{})
			},
			assert: func(t *testing.T, got any) {
				res := got.(*goatcounter.RefsResponse)
				require.Len(t, res.Refs, 1)
				assert.Equal(t, "news.ycombinator.com", res.Refs[0].Name)
			},
		},
		{
			name:     "paths",
			wantPath: "/mysite/api/v0/paths",
			body:     map[string]any{"paths": []map[string]any{{"id": 1, "path": "/"}}, "more": true},
			act: func(ctx context.Context, c *goatcounter.Client) (any, error) {
				return c.Paths(ctx, creds, goatcounter.QueryParams{Limit: 1})
			},
			assert: func(t *testing.T, got any) {
				res := got.(*goatcounter.PathsResponse)
				assert.True(t, res.More)
				assert.Equal(t, int64(1), res.Paths[0].ID)
			},
		},
		{
			name:     "sites",
			wantPath: "/mysite/api/v0/sites",
			body:     map[string]any{"sites": []map[string]any{{"id": 3, "code": "mysite"}}},
			act: func(ctx context.Context, c *goatcounter.Client) (any, error) {
				return c.Sites(ctx, creds)
			},
			assert: func(t *testing.T, got any) {
				res := got.(*goatcounter.SitesResponse)
				assert.Equal(t, "mysite", res.Sites[0].Code)
			},
		},
		{
			name:     "me",
			wantPath: "/mysite/api/v0/me",
			body:     map[string]any{"user": map[string]any{"id": 5, "email": "owner@example.com"}},
			act: func(ctx context.Context, c *goatcounter.Client) (any, error) {
				return c.Me(ctx, creds)
			},
			assert: func(t *testing.T, got any) {
				res := got.(*goatcounter.MeResponse)
				assert.Equal(t, "owner@example.com", res.User.Email)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				writeJSON(w, http.StatusOK, tt.body)
			})

			got, err := tt.act(testContext(t), client)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, gotPath)
			tt.assert(t, got)
		})
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   goatcounter.ErrorKind
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"bad token"}`, kind: goatcounter.KindUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, kind: goatcounter.KindForbidden},
		{name: "not found", status: http.StatusNotFound, kind: goatcounter.KindNotFound},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"db down"}`, kind: goatcounter.KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.Total(testContext(t), creds, goatcounter.QueryParams{})
			require.Error(t, err)
			require.True(t, goatcounter.IsKind(err, tt.kind), "got %v", err)
			require.NotContains(t, err.Error(), creds.Token)
			require.Equal(t, int32(1), calls.Load(), "non rate-limit failures are not retried")
		})
	}
}

func TestClient_RateLimitRetries(t *testing.T) {
	t.Run("Should give up after three attempts", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limited exceeded; try again in 1.2ms"})
		})

		_, err := client.Hits(testContext(t), creds, goatcounter.QueryParams{})
		require.True(t, goatcounter.IsKind(err, goatcounter.KindRateLimited))
		require.Equal(t, int32(3), calls.Load())
	})

	t.Run("Should succeed when the limit clears", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.Header().Set("Retry-After", "0")
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "slow down"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"total": 7})
		})

		res, err := client.Total(testContext(t), creds, goatcounter.QueryParams{})
		require.NoError(t, err)
		require.Equal(t, 7, res.Total)
		require.Equal(t, int32(3), calls.Load())
	})
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	client := goatcounter.New(newTestGovernor(), goatcounter.WithBaseURL(base))
	_, err := client.Total(testContext(t), creds, goatcounter.QueryParams{})
	require.True(t, goatcounter.IsKind(err, goatcounter.KindUnreachable), "got %v", err)
	require.NotContains(t, err.Error(), creds.Token)
}

func TestClient_Timeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, goatcounter.WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := client.Total(testContext(t), creds, goatcounter.QueryParams{})
	require.True(t, goatcounter.IsKind(err, goatcounter.KindUnreachable), "got %v", err)
	require.Contains(t, err.Error(), "timed out")
	require.Less(t, time.Since(start), time.Second)
}

func TestClient_NotConfigured(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	_, err := client.Hits(testContext(t), goatcounter.Credentials{SiteCode: "mysite"}, goatcounter.QueryParams{})
	require.ErrorIs(t, err, goatcounter.ErrNotConfigured)
	require.Zero(t, calls.Load())
}

func TestClient_RecordPageview(t *testing.T) {
	t.Run("Should post the hit", func(t *testing.T) {
		var mu sync.Mutex
		var body map[string]any
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/mysite/api/v0/count", r.URL.Path)
			_ = json.NewDecoder(r.Body).Decode(&body)
			w.WriteHeader(http.StatusAccepted)
		})

		res := <-client.RecordPageview(testContext(t), creds, goatcounter.Pageview{Path: "/pricing", Title: "Pricing"})
		require.True(t, res.OK())

		mu.Lock()
		defer mu.Unlock()
		hits := body["hits"].([]any)
		require.Len(t, hits, 1)
		assert.Equal(t, "/pricing", hits[0].(map[string]any)["path"])
		assert.Equal(t, true, body["no_sessions"])
	})

	t.Run("Should report failures without raising them", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		res := <-client.RecordPageview(testContext(t), creds, goatcounter.Pageview{Path: "/"})
		require.False(t, res.OK())
		require.True(t, goatcounter.IsKind(res.Err, goatcounter.KindOther))
	})

	t.Run("Should skip unconfigured sites", func(t *testing.T) {
		client := goatcounter.New(newTestGovernor())
		res := <-client.RecordPageview(testContext(t), goatcounter.Credentials{}, goatcounter.Pageview{Path: "/"})
		require.ErrorIs(t, res.Err, goatcounter.ErrNotConfigured)
	})
}

func TestQueryParams_Values(t *testing.T) {
	p := goatcounter.QueryParams{
		Start:        time.Date(2024, 2, 1, 15, 4, 5, 0, time.UTC),
		Offset:       20,
		ExcludePaths: []int64{7, 8, 9},
	}
	v := p.Values()
	assert.Equal(t, "2024-02-01", v.Get("start"))
	assert.Equal(t, "", v.Get("end"))
	assert.Equal(t, "20", v.Get("offset"))
	assert.Equal(t, "7,8,9", v.Get("exclude_paths"))
	assert.Equal(t, "", v.Get("daily"))
	assert.Len(t, v, 3)
}
