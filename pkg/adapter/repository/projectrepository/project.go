package projectrepository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"statsboard-backend/pkg/entity/model"
	"statsboard-backend/pkg/usecase/repository"
)

const projectColumns = `id, owner_id, name, site_code, api_token, created_at, updated_at`

type projectRow struct {
	ID        string    `db:"id"`
	OwnerID   string    `db:"owner_id"`
	Name      string    `db:"name"`
	SiteCode  *string   `db:"site_code"`
	APIToken  *string   `db:"api_token"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r projectRow) toModel() *model.Project {
	return &model.Project{
		ID:        model.ID(r.ID),
		OwnerID:   model.ID(r.OwnerID),
		Name:      r.Name,
		SiteCode:  r.SiteCode,
		APIToken:  r.APIToken,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository returns the Postgres project repository.
func NewProjectRepository(pool *pgxpool.Pool) repository.Project {
	return &projectRepository{pool: pool}
}

func (r *projectRepository) Get(ctx context.Context, id model.ID) (*model.Project, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, string(id))
	if err != nil {
		return nil, model.NewDBError(err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[projectRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.NewNotFoundError(fmt.Errorf("project %s", id), "project")
	}
	if err != nil {
		return nil, model.NewDBError(err)
	}
	return row.toModel(), nil
}

func (r *projectRepository) ListByOwner(ctx context.Context, ownerID model.ID) ([]*model.Project, error) {
	return r.list(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE owner_id = $1 ORDER BY created_at, id`,
		string(ownerID),
	)
}

func (r *projectRepository) ListConfigured(ctx context.Context) ([]*model.Project, error) {
	return r.list(ctx,
		`SELECT `+projectColumns+` FROM projects
		WHERE coalesce(trim(site_code), '') <> '' AND coalesce(trim(api_token), '') <> ''
		ORDER BY created_at, id`,
	)
}

func (r *projectRepository) Create(ctx context.Context, p *model.Project) (*model.Project, error) {
	id := p.ID
	if id == "" {
		id = model.NewID(model.ProjectPrefix)
	}

	rows, err := r.pool.Query(ctx,
		`INSERT INTO projects (id, owner_id, name, site_code, api_token)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+projectColumns,
		string(id), string(p.OwnerID), p.Name, p.SiteCode, p.APIToken,
	)
	if err != nil {
		return nil, model.NewDBError(err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[projectRow])
	if err != nil {
		return nil, model.NewDBError(err)
	}
	return row.toModel(), nil
}

func (r *projectRepository) list(ctx context.Context, sql string, args ...any) ([]*model.Project, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, model.NewDBError(err)
	}

	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[projectRow])
	if err != nil {
		return nil, model.NewDBError(err)
	}

	projects := make([]*model.Project, 0, len(collected))
	for _, row := range collected {
		projects = append(projects, row.toModel())
	}
	return projects, nil
}
