package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"statsboard-backend/config"
	"statsboard-backend/pkg/adapter/controller"
	"statsboard-backend/pkg/infrastructure/cache"
	"statsboard-backend/pkg/infrastructure/datastore"
	"statsboard-backend/pkg/infrastructure/metrics"
	"statsboard-backend/pkg/infrastructure/router"
	"statsboard-backend/pkg/infrastructure/scheduler"
	"statsboard-backend/pkg/registry"
)

func main() {
	config.ReadConfig(config.ReadConfigOption{})

	pool := newDBPool()
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	sink := metrics.NewPrometheusSink(reg)

	ctrl := newController(pool, sink)

	responseCache, err := cache.NewFromConfig()
	if err != nil {
		log.Fatalf("Failed to create cache: %v", err)
	}

	s := scheduler.NewScheduler()
	if err := s.RegisterCredentialAudit(func(ctx context.Context) error {
		_, err := ctrl.CredentialAudit.Run(ctx)
		return err
	}); err != nil {
		log.Fatalf("Failed to schedule credential audit: %v", err)
	}
	s.Start()
	defer s.Stop()

	options := router.Options{
		JwtSecret: []byte(config.C.JwtTokenSecret),
		Cache:     responseCache,
		CacheTTL:  time.Duration(config.C.Cache.TTLSeconds) * time.Second,
	}
	if config.C.Metrics.Enabled {
		options.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
		options.MetricsPath = config.C.Metrics.Path
	}

	e := router.New(ctrl, options)

	e.Logger.Fatal(e.Start(":" + config.C.Server.Address))
}

func newDBPool() *pgxpool.Pool {
	pool, err := datastore.NewPool(context.Background())
	if err != nil {
		log.Fatalf("Failed to open db connection: %v", err)
	}
	return pool
}

func newController(pool *pgxpool.Pool, sink metrics.Sink) controller.Controller {
	r := registry.NewWithOptions(pool, registry.RegistryOptions{Metrics: sink})
	return r.NewController()
}
