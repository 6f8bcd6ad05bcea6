package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"statsboard-backend/pkg/entity/model"
	"statsboard-backend/pkg/infrastructure/external/goatcounter"
	"statsboard-backend/pkg/usecase/repository/mocks"
	usecase "statsboard-backend/pkg/usecase/usecase/dashboard"
	"statsboard-backend/pkg/util/logger"
)

const ownerID = model.ID("USR01HV000000000000000000000")

func strPtr(s string) *string { return &s }

func configuredProject(id, name, siteCode string) *model.Project {
	return &model.Project{
		ID:       model.ID(id),
		OwnerID:  ownerID,
		Name:     name,
		SiteCode: strPtr(siteCode),
		APIToken: strPtr("token-" + siteCode),
	}
}

func mustRange(t *testing.T) model.DateRange {
	t.Helper()
	r, err := model.ParseDateRange("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	return r
}

func hitsFor(n int) *goatcounter.HitsResponse {
	res := &goatcounter.HitsResponse{}
	for i := 1; i <= n; i++ {
		res.Hits = append(res.Hits, goatcounter.Hit{
			PathID: int64(i),
			Path:   fmt.Sprintf("/page-%d", i),
			Title:  fmt.Sprintf("Page %d", i),
			Count:  i * 10,
		})
	}
	return res
}

type fixture struct {
	projects  *mocks.MockProject
	analytics *mocks.MockAnalytics
	uc        usecase.Dashboard
}

func setupDashboard(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		projects:  mocks.NewMockProject(ctrl),
		analytics: mocks.NewMockAnalytics(ctrl),
	}
	f.uc = usecase.NewDashboardUseCaseWithLogger(f.projects, f.analytics, logger.Nop())
	return f
}

// expectSites answers Hits and Total per site code. Sites listed in failing get err
// from Hits.
func (f *fixture) expectSites(failing map[string]error) {
	f.analytics.EXPECT().Hits(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, creds goatcounter.Credentials, _ goatcounter.QueryParams) (*goatcounter.HitsResponse, error) {
			if err, ok := failing[creds.SiteCode]; ok {
				return nil, err
			}
			return hitsFor(len(creds.SiteCode)), nil
		}).AnyTimes()
	f.analytics.EXPECT().Total(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, creds goatcounter.Credentials, _ goatcounter.QueryParams) (*goatcounter.TotalResponse, error) {
			return &goatcounter.TotalResponse{
				Total: 100 * len(creds.SiteCode),
				Stats: []goatcounter.HitStat{{Day: "2024-01-01", Daily: len(creds.SiteCode)}},
			}, nil
		}).AnyTimes()
}

func TestOverview(t *testing.T) {
	notFound := &goatcounter.Error{Kind: goatcounter.KindNotFound, Status: 404, Message: "Analytics site not found. Check the project's site code."}

	tests := []struct {
		name    string
		arrange func(f *fixture)
		act     func(f *fixture) (*model.DashboardResult, error)
		assert  func(t *testing.T, res *model.DashboardResult, err error)
	}{
		{
			name: "Should aggregate a single configured project",
			arrange: func(f *fixture) {
				f.projects.EXPECT().ListByOwner(gomock.Any(), ownerID).
					Return([]*model.Project{configuredProject("PRJ1", "Blog", "blog")}, nil)
				f.analytics.EXPECT().Hits(gomock.Any(), goatcounter.Credentials{SiteCode: "blog", Token: "token-blog"}, gomock.Any()).
					DoAndReturn(func(_ context.Context, _ goatcounter.Credentials, p goatcounter.QueryParams) (*goatcounter.HitsResponse, error) {
						require.Equal(t, "2024-01-01", p.Start.Format(model.DateLayout))
						require.Equal(t, "2024-01-31", p.End.Format(model.DateLayout))
						require.Equal(t, usecase.TopPathsLimit, p.Limit)
						return hitsFor(10), nil
					})
				f.analytics.EXPECT().Total(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(&goatcounter.TotalResponse{Total: 1000}, nil)
			},
			act: func(f *fixture) (*model.DashboardResult, error) {
				return f.uc.Overview(context.Background(), ownerID, mustRange(t))
			},
			assert: func(t *testing.T, res *model.DashboardResult, err error) {
				require.NoError(t, err)
				require.NotNil(t, res.Totals)
				require.Equal(t, 1000, res.Totals.TotalPageviews)
				require.Equal(t, 1, res.Totals.TotalSites)
				require.Equal(t, 0, res.Totals.FailedProjects)
				require.Len(t, res.Sites, 1)
				require.Equal(t, model.SiteStatusOK, res.Sites[0].Status)
				require.Len(t, res.Sites[0].Analytics.PageViews, 10)
				require.Nil(t, res.Warnings)
			},
		},
		{
			name: "Should skip unconfigured projects without calling the provider",
			arrange: func(f *fixture) {
				f.projects.EXPECT().ListByOwner(gomock.Any(), ownerID).Return([]*model.Project{
					{ID: "PRJ1", OwnerID: ownerID, Name: "Draft"},
					{ID: "PRJ2", OwnerID: ownerID, Name: "No token", SiteCode: strPtr("notoken")},
				}, nil)
				f.analytics.EXPECT().Hits(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				f.analytics.EXPECT().Total(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			act: func(f *fixture) (*model.DashboardResult, error) {
				return f.uc.Overview(context.Background(), ownerID, mustRange(t))
			},
			assert: func(t *testing.T, res *model.DashboardResult, err error) {
				require.NoError(t, err)
				require.Len(t, res.Sites, 2)
				for _, s := range res.Sites {
					require.Equal(t, model.SiteStatusNotConfigured, s.Status)
					require.Nil(t, s.Analytics)
					require.Empty(t, s.Error)
				}
				require.Equal(t, &model.DashboardTotals{}, res.Totals)
				require.Nil(t, res.Warnings)
			},
		},
		{
			name: "Should report failed projects in warnings",
			arrange: func(f *fixture) {
				f.projects.EXPECT().ListByOwner(gomock.Any(), ownerID).Return([]*model.Project{
					configuredProject("PRJ1", "Blog", "blog"),
					configuredProject("PRJ2", "Shop", "shop"),
				}, nil)
				f.expectSites(map[string]error{"shop": notFound})
			},
			act: func(f *fixture) (*model.DashboardResult, error) {
				return f.uc.Overview(context.Background(), ownerID, mustRange(t))
			},
			assert: func(t *testing.T, res *model.DashboardResult, err error) {
				require.NoError(t, err)
				require.Equal(t, model.SiteStatusFailed, res.Sites[1].Status)
				require.Equal(t, notFound.Message, res.Sites[1].Error)
				require.Nil(t, res.Sites[1].Analytics)

				require.Equal(t, 1, res.Totals.TotalSites)
				require.Equal(t, 1, res.Totals.FailedProjects)
				require.Equal(t, 400, res.Totals.TotalPageviews)

				require.NotNil(t, res.Warnings)
				require.Contains(t, res.Warnings.Message, "1 of 2")
				require.Equal(t, []string{"Shop: " + notFound.Message}, res.Warnings.Errors)
				require.Equal(t, model.DashboardSuggestion, res.Warnings.Suggestion)
			},
		},
		{
			name: "Should mark a project failed when totals fail after hits succeed",
			arrange: func(f *fixture) {
				f.projects.EXPECT().ListByOwner(gomock.Any(), ownerID).
					Return([]*model.Project{configuredProject("PRJ1", "Blog", "blog")}, nil)
				f.analytics.EXPECT().Hits(gomock.Any(), gomock.Any(), gomock.Any()).Return(hitsFor(3), nil)
				f.analytics.EXPECT().Total(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, &goatcounter.Error{Kind: goatcounter.KindRateLimited, Message: "Analytics rate limit exceeded; the request should retry automatically."})
			},
			act: func(f *fixture) (*model.DashboardResult, error) {
				return f.uc.Overview(context.Background(), ownerID, mustRange(t))
			},
			assert: func(t *testing.T, res *model.DashboardResult, err error) {
				require.NoError(t, err)
				require.Equal(t, model.SiteStatusFailed, res.Sites[0].Status)
				require.Equal(t, 0, res.Totals.TotalPageviews)
				require.Equal(t, 0, res.Totals.TotalSites)
				require.NotNil(t, res.Warnings)
			},
		},
		{
			name: "Should return null totals for a user without projects",
			arrange: func(f *fixture) {
				f.projects.EXPECT().ListByOwner(gomock.Any(), ownerID).Return(nil, nil)
			},
			act: func(f *fixture) (*model.DashboardResult, error) {
				return f.uc.Overview(context.Background(), ownerID, mustRange(t))
			},
			assert: func(t *testing.T, res *model.DashboardResult, err error) {
				require.NoError(t, err)
				require.NotNil(t, res.Sites)
				require.Empty(t, res.Sites)
				require.Nil(t, res.Totals)
				require.Nil(t, res.Warnings)

				b, err := json.Marshal(res)
				require.NoError(t, err)
				require.JSONEq(t, `{"sites":[],"totals":null,"range":{"start":"2024-01-01","end":"2024-01-31"}}`, string(b))
			},
		},
		{
			name: "Should fail when projects cannot be loaded",
			arrange: func(f *fixture) {
				f.projects.EXPECT().ListByOwner(gomock.Any(), ownerID).
					Return(nil, model.NewDBError(errors.New("connection refused")))
			},
			act: func(f *fixture) (*model.DashboardResult, error) {
				return f.uc.Overview(context.Background(), ownerID, mustRange(t))
			},
			assert: func(t *testing.T, res *model.DashboardResult, err error) {
				require.Error(t, err)
				require.Nil(t, res)
			},
		},
		{
			name: "Should stop when the request is cancelled",
			arrange: func(f *fixture) {
				f.projects.EXPECT().ListByOwner(gomock.Any(), ownerID).
					Return([]*model.Project{configuredProject("PRJ1", "Blog", "blog")}, nil)
				f.analytics.EXPECT().Hits(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			act: func(f *fixture) (*model.DashboardResult, error) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return f.uc.Overview(ctx, ownerID, mustRange(t))
			},
			assert: func(t *testing.T, res *model.DashboardResult, err error) {
				require.ErrorIs(t, err, context.Canceled)
				require.Nil(t, res)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupDashboard(t)
			tt.arrange(f)

			res, err := tt.act(f)

			tt.assert(t, res, err)
		})
	}
}

func TestOverview_FailureIsolation(t *testing.T) {
	first := configuredProject("PRJ1", "Blog", "blog")
	broken := configuredProject("PRJ2", "Shop", "shop")
	third := configuredProject("PRJ3", "Docs", "documentation")
	failing := map[string]error{"shop": errors.New("Analytics provider error (status 500): boom")}

	run := func(projects []*model.Project) *model.DashboardResult {
		f := setupDashboard(t)
		f.projects.EXPECT().ListByOwner(gomock.Any(), ownerID).Return(projects, nil)
		f.expectSites(failing)

		res, err := f.uc.Overview(context.Background(), ownerID, mustRange(t))
		require.NoError(t, err)
		return res
	}

	with := run([]*model.Project{first, broken, third})
	without := run([]*model.Project{first, third})

	require.Len(t, with.Sites, 3)
	require.Equal(t, 1, with.Totals.FailedProjects)
	require.Equal(t, 2, with.Totals.TotalSites)
	require.NotNil(t, with.Warnings)
	require.Equal(t, []string{"Shop: Analytics provider error (status 500): boom"}, with.Warnings.Errors)
	require.Nil(t, without.Warnings)

	for i, j := range map[int]int{0: 0, 2: 1} {
		a, err := json.Marshal(with.Sites[i])
		require.NoError(t, err)
		b, err := json.Marshal(without.Sites[j])
		require.NoError(t, err)
		require.Equal(t, string(b), string(a))
	}
	require.Equal(t, without.Totals.TotalPageviews, with.Totals.TotalPageviews)
	require.Equal(t, without.Totals.TotalVisitors, with.Totals.TotalVisitors)
}

func TestProjectDetail(t *testing.T) {
	project := configuredProject("PRJ1", "Blog", "blog")

	tests := []struct {
		name    string
		arrange func(f *fixture)
		act     func(f *fixture) (*model.ProjectDetail, error)
		assert  func(t *testing.T, res *model.ProjectDetail, err error)
	}{
		{
			name: "Should keep the other breakdowns when one fails",
			arrange: func(f *fixture) {
				f.projects.EXPECT().Get(gomock.Any(), project.ID).Return(project, nil)
				f.expectSites(nil)
				f.analytics.EXPECT().Stats(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ goatcounter.Credentials, page goatcounter.Page, p goatcounter.QueryParams) (*goatcounter.StatsResponse, error) {
						require.Equal(t, usecase.BreakdownLimit, p.Limit)
						if page == goatcounter.PageLocations {
							return nil, &goatcounter.Error{Kind: goatcounter.KindOther, Message: "Analytics provider error (status 502): Bad Gateway"}
						}
						return &goatcounter.StatsResponse{Stats: []goatcounter.StatItem{{ID: string(page), Name: string(page), Count: 3}}}, nil
					}).Times(4)
			},
			act: func(f *fixture) (*model.ProjectDetail, error) {
				return f.uc.ProjectDetail(context.Background(), ownerID, project.ID, mustRange(t))
			},
			assert: func(t *testing.T, res *model.ProjectDetail, err error) {
				require.NoError(t, err)
				require.Equal(t, model.SiteStatusOK, res.Status)
				require.Len(t, res.Browsers, 1)
				require.Len(t, res.Systems, 1)
				require.Len(t, res.Referrers, 1)
				require.Equal(t, "toprefs", res.Referrers[0].ID)
				require.Nil(t, res.Locations)
				require.Equal(t, map[string]string{"locations": "Analytics provider error (status 502): Bad Gateway"}, res.BreakdownErrors)
			},
		},
		{
			name: "Should skip breakdowns when the overview fails",
			arrange: func(f *fixture) {
				f.projects.EXPECT().Get(gomock.Any(), project.ID).Return(project, nil)
				f.expectSites(map[string]error{"blog": errors.New("unauthorized")})
				f.analytics.EXPECT().Stats(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			act: func(f *fixture) (*model.ProjectDetail, error) {
				return f.uc.ProjectDetail(context.Background(), ownerID, project.ID, mustRange(t))
			},
			assert: func(t *testing.T, res *model.ProjectDetail, err error) {
				require.NoError(t, err)
				require.Equal(t, model.SiteStatusFailed, res.Status)
				require.Equal(t, "unauthorized", res.Error)
			},
		},
		{
			name: "Should hide projects of other users",
			arrange: func(f *fixture) {
				other := *project
				other.OwnerID = "USR01HVOTHER0000000000000000"
				f.projects.EXPECT().Get(gomock.Any(), project.ID).Return(&other, nil)
			},
			act: func(f *fixture) (*model.ProjectDetail, error) {
				return f.uc.ProjectDetail(context.Background(), ownerID, project.ID, mustRange(t))
			},
			assert: func(t *testing.T, res *model.ProjectDetail, err error) {
				var appErr *model.AppError
				require.ErrorAs(t, err, &appErr)
				require.Equal(t, model.NotFoundErrorCode, appErr.Code)
				require.Nil(t, res)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupDashboard(t)
			tt.arrange(f)

			res, err := tt.act(f)

			tt.assert(t, res, err)
		})
	}
}

func TestRecordPageview(t *testing.T) {
	t.Run("Should forward the pageview", func(t *testing.T) {
		f := setupDashboard(t)
		project := configuredProject("PRJ1", "Blog", "blog")
		pv := goatcounter.Pageview{Path: "/hello"}

		f.projects.EXPECT().Get(gomock.Any(), project.ID).Return(project, nil)
		f.analytics.EXPECT().RecordPageview(gomock.Any(), goatcounter.Credentials{SiteCode: "blog", Token: "token-blog"}, pv).
			DoAndReturn(func(context.Context, goatcounter.Credentials, goatcounter.Pageview) <-chan goatcounter.RecordResult {
				ch := make(chan goatcounter.RecordResult, 1)
				ch <- goatcounter.RecordResult{Err: errors.New("ignored")}
				close(ch)
				return ch
			})

		require.NoError(t, f.uc.RecordPageview(context.Background(), ownerID, project.ID, pv))
	})

	t.Run("Should reject unconfigured projects", func(t *testing.T) {
		f := setupDashboard(t)
		project := &model.Project{ID: "PRJ2", OwnerID: ownerID, Name: "Draft"}

		f.projects.EXPECT().Get(gomock.Any(), project.ID).Return(project, nil)
		f.analytics.EXPECT().RecordPageview(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		err := f.uc.RecordPageview(context.Background(), ownerID, project.ID, goatcounter.Pageview{Path: "/"})
		require.ErrorIs(t, err, goatcounter.ErrNotConfigured)
	})
}
