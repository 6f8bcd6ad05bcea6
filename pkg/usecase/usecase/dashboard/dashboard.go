package usecase

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"statsboard-backend/pkg/entity/model"
	"statsboard-backend/pkg/infrastructure/external/goatcounter"
	"statsboard-backend/pkg/usecase/repository"
	"statsboard-backend/pkg/util/logger"
)

const (
	// TopPathsLimit is the number of paths listed per project.
	TopPathsLimit = 10
	// BreakdownLimit is the number of rows fetched per breakdown.
	BreakdownLimit = 10
)

// Dashboard aggregates the analytics of a user's projects.
type Dashboard interface {
	// Overview aggregates every project of owner. Upstream failures are reported per
	// project; only a persistence failure returns an error.
	Overview(ctx context.Context, ownerID model.ID, dateRange model.DateRange) (*model.DashboardResult, error)
	// ProjectDetail is the overview of one project plus its breakdowns.
	ProjectDetail(ctx context.Context, ownerID model.ID, projectID model.ID, dateRange model.DateRange) (*model.ProjectDetail, error)
	// RecordPageview forwards a pageview without waiting for the provider.
	RecordPageview(ctx context.Context, ownerID model.ID, projectID model.ID, pv goatcounter.Pageview) error
}

type dashboardUseCase struct {
	projectRepository repository.Project
	analytics         repository.Analytics
	logger            *zap.SugaredLogger
}

// NewDashboardUseCase creates the dashboard use case.
func NewDashboardUseCase(p repository.Project, a repository.Analytics) Dashboard {
	return NewDashboardUseCaseWithLogger(p, a, logger.New("dashboard"))
}

func NewDashboardUseCaseWithLogger(p repository.Project, a repository.Analytics, l *zap.SugaredLogger) Dashboard {
	return &dashboardUseCase{projectRepository: p, analytics: a, logger: l}
}

func (u *dashboardUseCase) Overview(
	ctx context.Context,
	ownerID model.ID,
	dateRange model.DateRange,
) (*model.DashboardResult, error) {
	projects, err := u.projectRepository.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result := &model.DashboardResult{
		Sites: make([]model.SiteEntry, 0, len(projects)),
		Range: dateRange,
	}

	var totals model.DashboardTotals
	var failures []string

	for _, p := range projects {
		// An abandoned request should not keep queueing upstream work.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry := u.siteEntry(ctx, p, dateRange)
		switch entry.Status {
		case model.SiteStatusOK:
			totals.TotalPageviews += entry.Analytics.TotalPageviews
			totals.TotalVisitors += entry.Analytics.Visitors
			totals.TotalSites++
		case model.SiteStatusFailed:
			totals.FailedProjects++
			failures = append(failures, fmt.Sprintf("%s: %s", p.Name, entry.Error))
		}
		result.Sites = append(result.Sites, entry)
	}

	if len(projects) > 0 {
		result.Totals = &totals
	}

	if totals.FailedProjects > 0 {
		result.Warnings = &model.DashboardWarnings{
			Message:    fmt.Sprintf("Analytics could not be loaded for %d of %d projects.", totals.FailedProjects, len(projects)),
			Errors:     failures,
			Suggestion: model.DashboardSuggestion,
		}
		u.logger.Warnw("dashboard aggregated with failures",
			"owner", ownerID,
			"projects", len(projects),
			"failed", totals.FailedProjects,
		)
	}

	return result, nil
}

func (u *dashboardUseCase) ProjectDetail(
	ctx context.Context,
	ownerID model.ID,
	projectID model.ID,
	dateRange model.DateRange,
) (*model.ProjectDetail, error) {
	p, err := u.ownedProject(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}

	detail := &model.ProjectDetail{
		SiteEntry: u.siteEntry(ctx, p, dateRange),
		Range:     dateRange,
	}
	if detail.Status != model.SiteStatusOK {
		return detail, nil
	}

	breakdowns := []struct {
		name string
		page goatcounter.Page
		dst  *[]model.Breakdown
	}{
		{name: "browsers", page: goatcounter.PageBrowsers, dst: &detail.Browsers},
		{name: "systems", page: goatcounter.PageSystems, dst: &detail.Systems},
		{name: "locations", page: goatcounter.PageLocations, dst: &detail.Locations},
		{name: "referrers", page: goatcounter.PageTopRefs, dst: &detail.Referrers},
	}

	creds := credentials(p)
	params := goatcounter.QueryParams{Start: dateRange.Start, End: dateRange.End, Limit: BreakdownLimit}

	var errs *multierror.Error
	for _, b := range breakdowns {
		res, err := u.analytics.Stats(ctx, creds, b.page, params)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", b.name, err))
			if detail.BreakdownErrors == nil {
				detail.BreakdownErrors = map[string]string{}
			}
			detail.BreakdownErrors[b.name] = err.Error()
			continue
		}
		*b.dst = toBreakdowns(res.Stats)
	}

	if err := errs.ErrorOrNil(); err != nil {
		u.logger.Warnw("project breakdowns incomplete",
			"project", p.ID,
			"failed", errs.Len(),
			"error", err,
		)
	}

	return detail, nil
}

func (u *dashboardUseCase) RecordPageview(
	ctx context.Context,
	ownerID model.ID,
	projectID model.ID,
	pv goatcounter.Pageview,
) error {
	p, err := u.ownedProject(ctx, ownerID, projectID)
	if err != nil {
		return err
	}
	if !p.Configured() {
		return model.NewValidationError(goatcounter.ErrNotConfigured)
	}

	u.analytics.RecordPageview(ctx, credentials(p), pv)
	return nil
}

func (u *dashboardUseCase) ownedProject(ctx context.Context, ownerID, projectID model.ID) (*model.Project, error) {
	p, err := u.projectRepository.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, model.NewNotFoundError(fmt.Errorf("project %s is not owned by %s", projectID, ownerID), "project")
	}
	return p, nil
}

// siteEntry fetches the list-view analytics of one project. Unconfigured projects
// make no upstream call.
func (u *dashboardUseCase) siteEntry(ctx context.Context, p *model.Project, dateRange model.DateRange) model.SiteEntry {
	entry := model.SiteEntry{
		ProjectID:   p.ID,
		ProjectName: p.Name,
		SiteCode:    p.SiteCodeValue(),
	}

	if !p.Configured() {
		entry.Status = model.SiteStatusNotConfigured
		return entry
	}

	creds := credentials(p)

	hits, err := u.analytics.Hits(ctx, creds, goatcounter.QueryParams{
		Start: dateRange.Start,
		End:   dateRange.End,
		Limit: TopPathsLimit,
	})
	if err != nil {
		return failed(entry, err)
	}

	total, err := u.analytics.Total(ctx, creds, goatcounter.QueryParams{
		Start: dateRange.Start,
		End:   dateRange.End,
		Daily: true,
	})
	if err != nil {
		return failed(entry, err)
	}

	entry.Status = model.SiteStatusOK
	entry.Analytics = toAnalytics(hits, total)
	return entry
}

func failed(entry model.SiteEntry, err error) model.SiteEntry {
	entry.Status = model.SiteStatusFailed
	entry.Error = err.Error()
	return entry
}

func credentials(p *model.Project) goatcounter.Credentials {
	return goatcounter.Credentials{SiteCode: p.SiteCodeValue(), Token: p.APITokenValue()}
}

func toAnalytics(hits *goatcounter.HitsResponse, total *goatcounter.TotalResponse) *model.SiteAnalytics {
	a := &model.SiteAnalytics{
		TotalPageviews: total.Total,
		TotalEvents:    total.TotalEvents,
		PageViews:      make([]model.PageView, 0, len(hits.Hits)),
		Daily:          make([]model.DailyCount, 0, len(total.Stats)),
	}

	for _, h := range hits.Hits {
		a.PageViews = append(a.PageViews, model.PageView{
			PathID: h.PathID,
			Path:   h.Path,
			Title:  h.Title,
			Event:  h.Event,
			Count:  h.Count,
		})
		a.Visitors += h.Count
	}
	for _, s := range total.Stats {
		a.Daily = append(a.Daily, model.DailyCount{Day: s.Day, Count: s.Daily})
	}
	return a
}

func toBreakdowns(items []goatcounter.StatItem) []model.Breakdown {
	out := make([]model.Breakdown, 0, len(items))
	for _, it := range items {
		out = append(out, model.Breakdown{ID: it.ID, Name: it.Name, Count: it.Count})
	}
	return out
}
