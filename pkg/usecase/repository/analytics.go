//go:generate mockgen -source=analytics.go -destination=./mocks/analytics_repository_mock.go -package=mocks
package repository

import (
	"context"

	"statsboard-backend/pkg/infrastructure/external/goatcounter"
)

// Analytics is the subset of the provider client the use cases depend on.
type Analytics interface {
	Hits(ctx context.Context, creds goatcounter.Credentials, params goatcounter.QueryParams) (*goatcounter.HitsResponse, error)
	Total(ctx context.Context, creds goatcounter.Credentials, params goatcounter.QueryParams) (*goatcounter.TotalResponse, error)
	Stats(ctx context.Context, creds goatcounter.Credentials, page goatcounter.Page, params goatcounter.QueryParams) (*goatcounter.StatsResponse, error)
	Me(ctx context.Context, creds goatcounter.Credentials) (*goatcounter.MeResponse, error)
	RecordPageview(ctx context.Context, creds goatcounter.Credentials, pv goatcounter.Pageview) <-chan goatcounter.RecordResult
}
