package registry

import (
	"statsboard-backend/pkg/adapter/controller"
	usecase "statsboard-backend/pkg/usecase/usecase/credentialaudit"
	"statsboard-backend/pkg/util/logger"
)

func (r *registry) NewCredentialAuditController() controller.CredentialAudit {
	u := usecase.NewCredentialAuditUseCase(r.projectRepo, r.analytics, r.notifier, logger.New("credential_audit"))

	return controller.NewCredentialAuditController(u)
}
