package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/singleflight"

	"statsboard-backend/pkg/adapter/controller"
	"statsboard-backend/pkg/entity/model"
	"statsboard-backend/pkg/infrastructure/cache"
	"statsboard-backend/pkg/infrastructure/external/goatcounter"
	"statsboard-backend/pkg/util/auth"
)

// DefaultRangeDays is the range used when a request names no dates.
const DefaultRangeDays = 30

// CacheHeader reports whether a response came from the cache.
const CacheHeader = "X-Cache"

type rangeQuery struct {
	Start string `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `query:"end" validate:"omitempty,datetime=2006-01-02"`
}

type pageviewInput struct {
	Path      string `json:"path" validate:"required,max=2048"`
	Title     string `json:"title" validate:"max=512"`
	Ref       string `json:"ref" validate:"max=2048"`
	Event     bool   `json:"event"`
	UserAgent string `json:"userAgent" validate:"max=512"`
	Location  string `json:"location" validate:"omitempty,iso3166_1_alpha2"`
}

// Dashboard serves the analytics endpoints. Responses are cached per user and query,
// and concurrent identical requests share one aggregation.
type Dashboard struct {
	controller controller.Dashboard
	cache      cache.Cache
	ttl        time.Duration
	validate   *validator.Validate
	group      singleflight.Group
	now        func() time.Time
}

// NewDashboard creates the handlers. A nil cache disables caching.
func NewDashboard(ctrl controller.Dashboard, c cache.Cache, ttl time.Duration) *Dashboard {
	return &Dashboard{
		controller: ctrl,
		cache:      c,
		ttl:        ttl,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		now:        time.Now,
	}
}

// Overview handles GET /api/dashboard.
func (h *Dashboard) Overview(c echo.Context) error {
	userID, dateRange, err := h.prepare(c)
	if err != nil {
		return HandleError(c, err)
	}

	key := cache.Key(string(userID), "dashboard?"+dateRange.String())
	return h.respond(c, key, func(ctx context.Context) (any, error) {
		return h.controller.Overview(ctx, userID, dateRange)
	})
}

// ProjectDetail handles GET /api/projects/:id/analytics.
func (h *Dashboard) ProjectDetail(c echo.Context) error {
	userID, dateRange, err := h.prepare(c)
	if err != nil {
		return HandleError(c, err)
	}
	projectID := model.ID(c.Param("id"))

	key := cache.Key(string(userID), "projects/"+string(projectID)+"?"+dateRange.String())
	return h.respond(c, key, func(ctx context.Context) (any, error) {
		return h.controller.ProjectDetail(ctx, userID, projectID, dateRange)
	})
}

// RecordPageview handles POST /api/projects/:id/pageviews. The pageview is queued
// and the request returns before the provider answers.
func (h *Dashboard) RecordPageview(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c.Request().Context())
	if err != nil {
		return HandleError(c, err)
	}

	var in pageviewInput
	if err := c.Bind(&in); err != nil {
		return HandleError(c, model.NewValidationError(errors.New("malformed pageview")))
	}
	if err := h.validate.Struct(in); err != nil {
		return HandleError(c, model.NewValidationError(err))
	}

	err = h.controller.RecordPageview(c.Request().Context(), userID, model.ID(c.Param("id")), goatcounter.Pageview{
		Path:      in.Path,
		Title:     in.Title,
		Ref:       in.Ref,
		Event:     in.Event,
		UserAgent: in.UserAgent,
		Location:  in.Location,
	})
	if err != nil {
		return HandleError(c, err)
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *Dashboard) prepare(c echo.Context) (model.ID, model.DateRange, error) {
	userID, err := auth.GetUserIDFromContext(c.Request().Context())
	if err != nil {
		return "", model.DateRange{}, err
	}

	var q rangeQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return "", model.DateRange{}, model.NewValidationError(errors.New("malformed query"))
	}
	if err := h.validate.Struct(q); err != nil {
		return "", model.DateRange{}, model.NewValidationError(err)
	}

	switch {
	case q.Start == "" && q.End == "":
		return userID, model.LastDays(h.now(), DefaultRangeDays), nil
	case q.Start == "" || q.End == "":
		return "", model.DateRange{}, model.NewValidationError(errors.New("start and end must be given together"))
	}

	dateRange, err := model.ParseDateRange(q.Start, q.End)
	if err != nil {
		return "", model.DateRange{}, model.NewValidationError(err)
	}
	return userID, dateRange, nil
}

// respond serves key from the cache or computes, stores and serves it. The computation is
// shared by every caller waiting on key and is not tied to any one of their requests.
func (h *Dashboard) respond(c echo.Context, key string, compute func(ctx context.Context) (any, error)) error {
	ctx := c.Request().Context()

	if h.cache != nil {
		b, ok, err := h.cache.Get(ctx, key)
		if err != nil {
			log.Warnw("cache read failed", "key", key, "error", err)
		}
		if ok {
			c.Response().Header().Set(CacheHeader, "HIT")
			return c.JSONBlob(http.StatusOK, b)
		}
	}

	shared := context.WithoutCancel(ctx)
	ch := h.group.DoChan(key, func() (any, error) {
		res, err := compute(shared)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(res)
		if err != nil {
			return nil, fmt.Errorf("failed to encode response: %w", err)
		}
		if h.cache != nil && h.ttl > 0 {
			if err := h.cache.Set(shared, key, b, h.ttl); err != nil {
				log.Warnw("cache write failed", "key", key, "error", err)
			}
		}
		return b, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return HandleError(c, res.Err)
		}
		c.Response().Header().Set(CacheHeader, "MISS")
		return c.JSONBlob(http.StatusOK, res.Val.([]byte))
	}
}
