package router

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"statsboard-backend/pkg/adapter/controller"
	"statsboard-backend/pkg/infrastructure/cache"
	"statsboard-backend/pkg/infrastructure/router/handler"
	authmiddleware "statsboard-backend/pkg/infrastructure/router/middleware"
)

// Path of route
const (
	apiPath         = "/api"
	HealthCheckPath = "/health_check"
	DashboardPath   = apiPath + "/dashboard"
	AnalyticsPath   = apiPath + "/projects/:id/analytics"
	PageviewsPath   = apiPath + "/projects/:id/pageviews"
)

// Options of router
type Options struct {
	JwtSecret []byte
	// Cache and CacheTTL enable response caching.
	Cache    cache.Cache
	CacheTTL time.Duration
	// Metrics is served on MetricsPath when set.
	Metrics     http.Handler
	MetricsPath string
}

// New creates route endpoint
func New(ctrl controller.Controller, options Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderXRequestedWith,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
		},
	}))

	e.GET(HealthCheckPath, func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	if options.Metrics != nil {
		path := options.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		e.GET(path, echo.WrapHandler(options.Metrics))
	}

	dashboard := handler.NewDashboard(ctrl.Dashboard, options.Cache, options.CacheTTL)

	api := e.Group("", authmiddleware.Auth(authmiddleware.AuthOptions{Secret: options.JwtSecret}))
	{
		api.GET(DashboardPath, dashboard.Overview)
		api.GET(AnalyticsPath, dashboard.ProjectDetail)
		api.POST(PageviewsPath, dashboard.RecordPageview)
	}

	return e
}
