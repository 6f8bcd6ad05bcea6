package registry

import (
	"statsboard-backend/pkg/adapter/controller"
	usecase "statsboard-backend/pkg/usecase/usecase/dashboard"
)

func (r *registry) NewDashboardController() controller.Dashboard {
	u := usecase.NewDashboardUseCase(r.projectRepo, r.analytics)

	return controller.NewDashboardController(u)
}
