package e2e

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"statsboard-backend/config"
	"statsboard-backend/pkg/infrastructure/cache"
	"statsboard-backend/pkg/infrastructure/external/goatcounter"
	"statsboard-backend/pkg/infrastructure/ratelimit"
	"statsboard-backend/pkg/infrastructure/router"
	"statsboard-backend/pkg/registry"
	"statsboard-backend/pkg/util/auth"
	"statsboard-backend/testutil"
)

// SetupOption is an option of Setup
type SetupOption struct {
	// Upstream answers the analytics requests in place of the provider.
	Upstream http.Handler
	// Cache enables response caching.
	Cache    bool
	TearDown func(t *testing.T, pool *pgxpool.Pool)
}

// Setup starts the API against the e2e database and a fake provider.
func Setup(t *testing.T, option SetupOption) (expect *httpexpect.Expect, pool *pgxpool.Pool, teardown func()) {
	testutil.ReadConfigE2E()

	pool = testutil.NewDBPool(t)

	upstream := option.Upstream
	if upstream == nil {
		upstream = http.NotFoundHandler()
	}
	provider := httptest.NewServer(upstream)

	governor := ratelimit.New(
		ratelimit.WithMinInterval(time.Millisecond),
		ratelimit.WithPolicy(ratelimit.Policy{Base: time.Millisecond, Floor: time.Millisecond}),
	)
	analytics := goatcounter.New(governor, goatcounter.WithBaseURL(provider.URL+"/%s/api/v0"))

	ctrl := registry.NewWithOptions(pool, registry.RegistryOptions{Analytics: analytics}).NewController()

	options := router.Options{JwtSecret: []byte(config.C.JwtTokenSecret)}
	if option.Cache {
		options.Cache = cache.NewMemoryCache(128, time.Minute)
		options.CacheTTL = time.Minute
	}
	srv := httptest.NewServer(router.New(ctrl, options))

	expect = httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  srv.URL,
		Reporter: httpexpect.NewAssertReporter(t),
		Printers: []httpexpect.Printer{
			httpexpect.NewDebugPrinter(t, true),
		},
	})

	return expect, pool, func() {
		if option.TearDown != nil {
			option.TearDown(t, pool)
		}
		srv.Close()
		provider.Close()
		pool.Close()
	}
}

// Token signs an access token for userID with the configured secret.
func Token(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateAccessTokenWithSecret(userID, []byte(config.C.JwtTokenSecret), time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + token
}
