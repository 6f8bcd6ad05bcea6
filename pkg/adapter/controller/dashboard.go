package controller

import (
	"context"

	"statsboard-backend/pkg/entity/model"
	"statsboard-backend/pkg/infrastructure/external/goatcounter"
	usecase "statsboard-backend/pkg/usecase/usecase/dashboard"
)

type Dashboard interface {
	Overview(ctx context.Context, ownerID model.ID, dateRange model.DateRange) (*model.DashboardResult, error)
	ProjectDetail(ctx context.Context, ownerID model.ID, projectID model.ID, dateRange model.DateRange) (*model.ProjectDetail, error)
	RecordPageview(ctx context.Context, ownerID model.ID, projectID model.ID, pv goatcounter.Pageview) error
}

type dashboardController struct {
	dashboardUseCase usecase.Dashboard
}

// NewDashboardController creates new dashboard controller
func NewDashboardController(du usecase.Dashboard) Dashboard {
	return &dashboardController{dashboardUseCase: du}
}

func (dc *dashboardController) Overview(
	ctx context.Context,
	ownerID model.ID,
	dateRange model.DateRange,
) (*model.DashboardResult, error) {
	return dc.dashboardUseCase.Overview(ctx, ownerID, dateRange)
}

func (dc *dashboardController) ProjectDetail(
	ctx context.Context,
	ownerID model.ID,
	projectID model.ID,
	dateRange model.DateRange,
) (*model.ProjectDetail, error) {
	return dc.dashboardUseCase.ProjectDetail(ctx, ownerID, projectID, dateRange)
}

func (dc *dashboardController) RecordPageview(
	ctx context.Context,
	ownerID model.ID,
	projectID model.ID,
	pv goatcounter.Pageview,
) error {
	return dc.dashboardUseCase.RecordPageview(ctx, ownerID, projectID, pv)
}
