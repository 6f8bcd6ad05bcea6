package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"statsboard-backend/pkg/entity/model"
	"statsboard-backend/pkg/infrastructure/external/goatcounter"
	"statsboard-backend/pkg/usecase/repository"
)

// Notifier is told about failed audits.
type Notifier interface {
	SendCredentialAuditAlert(report *model.AuditReport) error
}

// CredentialAudit verifies the provider credentials of every configured project.
type CredentialAudit interface {
	Run(ctx context.Context) (*model.AuditReport, error)
}

type credentialAuditUseCase struct {
	projectRepository repository.Project
	analytics         repository.Analytics
	notifier          Notifier
	logger            *zap.SugaredLogger
	now               func() time.Time
}

func NewCredentialAuditUseCase(
	p repository.Project,
	a repository.Analytics,
	n Notifier,
	l *zap.SugaredLogger,
) CredentialAudit {
	return &credentialAuditUseCase{
		projectRepository: p,
		analytics:         a,
		notifier:          n,
		logger:            l,
		now:               time.Now,
	}
}

// Run checks projects one at a time through the shared rate governor and alerts
// the admin when any check failed. A failed alert is logged, not returned.
func (u *credentialAuditUseCase) Run(ctx context.Context) (*model.AuditReport, error) {
	projects, err := u.projectRepository.ListConfigured(ctx)
	if err != nil {
		return nil, err
	}

	report := &model.AuditReport{
		StartedAt: u.now(),
		Checks:    make([]model.CredentialCheck, 0, len(projects)),
	}

	for _, p := range projects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		check := model.CredentialCheck{
			ProjectID:   p.ID,
			ProjectName: p.Name,
			SiteCode:    p.SiteCodeValue(),
			OK:          true,
		}

		creds := goatcounter.Credentials{SiteCode: p.SiteCodeValue(), Token: p.APITokenValue()}
		if _, err := u.analytics.Me(ctx, creds); err != nil {
			check.OK = false
			check.Error = err.Error()
			report.Failed++
		}
		report.Checks = append(report.Checks, check)
	}
	report.FinishedAt = u.now()

	u.logger.Infow("credential audit finished",
		"checked", len(report.Checks),
		"failed", report.Failed,
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)

	if report.Failed > 0 && u.notifier != nil {
		if err := u.notifier.SendCredentialAuditAlert(report); err != nil {
			u.logger.Errorw("failed to send credential audit alert", "error", err)
		}
	}

	return report, nil
}
