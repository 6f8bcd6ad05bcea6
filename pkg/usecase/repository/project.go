//go:generate mockgen -source=project.go -destination=./mocks/project_repository_mock.go -package=mocks
package repository

import (
	"context"

	"statsboard-backend/pkg/entity/model"
)

type Project interface {
	Get(ctx context.Context, id model.ID) (*model.Project, error)
	// ListByOwner returns the owner's projects ordered by creation time.
	ListByOwner(ctx context.Context, ownerID model.ID) ([]*model.Project, error)
	// ListConfigured returns every project that has a site code and an API token.
	ListConfigured(ctx context.Context) ([]*model.Project, error)
	Create(ctx context.Context, project *model.Project) (*model.Project, error)
}
