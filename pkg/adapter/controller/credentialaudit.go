package controller

import (
	"context"

	"statsboard-backend/pkg/entity/model"
	usecase "statsboard-backend/pkg/usecase/usecase/credentialaudit"
)

type CredentialAudit interface {
	Run(ctx context.Context) (*model.AuditReport, error)
}

type credentialAuditController struct {
	credentialAuditUseCase usecase.CredentialAudit
}

func NewCredentialAuditController(cu usecase.CredentialAudit) CredentialAudit {
	return &credentialAuditController{credentialAuditUseCase: cu}
}

func (cc *credentialAuditController) Run(ctx context.Context) (*model.AuditReport, error) {
	return cc.credentialAuditUseCase.Run(ctx)
}
