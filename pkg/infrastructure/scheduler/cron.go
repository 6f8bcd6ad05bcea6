package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"statsboard-backend/config"
	"statsboard-backend/pkg/util/logger"
)

// CredentialAuditJob is the name of the credential audit job.
const CredentialAuditJob = "credential_audit"

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler manages cron jobs
type Scheduler struct {
	cron     *cron.Cron
	logger   *zap.SugaredLogger
	mu       sync.Mutex
	jobs     map[string]Job
	entryIDs map[string]cron.EntryID // Map job names to cron entry IDs
}

// NewScheduler creates a new scheduler
func NewScheduler() *Scheduler {
	return NewSchedulerWithLogger(logger.New("scheduler"))
}

func NewSchedulerWithLogger(l *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		logger:   l,
		jobs:     make(map[string]Job),
		entryIDs: make(map[string]cron.EntryID),
	}
}

// Register adds job under name with a standard five-field cron schedule.
func (s *Scheduler) Register(name string, schedule string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.entryIDs[name]; ok {
		s.cron.Remove(entryID)
		delete(s.entryIDs, name)
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		s.run(context.Background(), name, job)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job %s: %w", name, err)
	}

	s.jobs[name] = job
	s.entryIDs[name] = entryID
	s.logger.Infow("registered job", "job", name, "schedule", schedule)
	return nil
}

// RegisterCredentialAudit schedules audit with config.C.Cron.CredentialAuditSchedule.
func (s *Scheduler) RegisterCredentialAudit(audit Job) error {
	return s.Register(CredentialAuditJob, config.C.Cron.CredentialAuditSchedule, audit)
}

// RunNow runs a registered job synchronously.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job: %s", name)
	}
	return s.run(ctx, name, job)
}

// Start starts the cron scheduler
func (s *Scheduler) Start() {
	s.logger.Info("starting cron scheduler")
	s.cron.Start()
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping cron scheduler")
	cronCtx := s.cron.Stop()
	<-cronCtx.Done()
	s.logger.Info("cron scheduler stopped")
}

// Entries is the number of scheduled jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) run(ctx context.Context, name string, job Job) error {
	s.logger.Infow("running job", "job", name)
	if err := job(ctx); err != nil {
		s.logger.Errorw("job failed", "job", name, "error", err)
		return err
	}
	s.logger.Infow("job completed", "job", name)
	return nil
}
