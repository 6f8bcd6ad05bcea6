package registry

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"statsboard-backend/pkg/adapter/controller"
	"statsboard-backend/pkg/adapter/repository/projectrepository"
	"statsboard-backend/pkg/infrastructure/email"
	"statsboard-backend/pkg/infrastructure/external/goatcounter"
	"statsboard-backend/pkg/infrastructure/metrics"
	"statsboard-backend/pkg/infrastructure/ratelimit"
	"statsboard-backend/pkg/usecase/repository"
	credentialaudit "statsboard-backend/pkg/usecase/usecase/credentialaudit"
)

type registry struct {
	pool        *pgxpool.Pool
	projectRepo repository.Project
	analytics   repository.Analytics
	notifier    credentialaudit.Notifier
}

// Registry is an interface of registry
type Registry interface {
	NewController() controller.Controller
}

// RegistryOptions contains optional dependencies for registry. Nil fields are
// built from config.
type RegistryOptions struct {
	ProjectRepo repository.Project
	Analytics   repository.Analytics
	Notifier    credentialaudit.Notifier
	Metrics     metrics.Sink
}

// New registers entire controller with dependencies
func New(pool *pgxpool.Pool) Registry {
	return NewWithOptions(pool, RegistryOptions{})
}

// NewWithOptions registers entire controller with additional dependencies. Every
// analytics call of the process goes through one governor built here.
func NewWithOptions(pool *pgxpool.Pool, opts RegistryOptions) Registry {
	r := &registry{
		pool:        pool,
		projectRepo: opts.ProjectRepo,
		analytics:   opts.Analytics,
		notifier:    opts.Notifier,
	}

	sink := opts.Metrics
	if sink == nil {
		sink = metrics.NoopSink{}
	}
	if r.projectRepo == nil {
		r.projectRepo = projectrepository.NewProjectRepository(pool)
	}
	if r.analytics == nil {
		governor := ratelimit.NewFromConfig(ratelimit.WithMetrics(sink))
		r.analytics = goatcounter.NewFromConfig(governor, goatcounter.WithMetrics(sink))
	}
	if r.notifier == nil {
		r.notifier = email.NewEmailService()
	}
	return r
}

// NewController generates controllers
func (r *registry) NewController() controller.Controller {
	return controller.Controller{
		Dashboard:       r.NewDashboardController(),
		CredentialAudit: r.NewCredentialAuditController(),
	}
}
