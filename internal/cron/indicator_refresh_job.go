package cron

import (
	"context"
	"fmt"

	"github.com/cafeconecta/cafeconecta-backend/internal/market"
	"github.com/cafeconecta/cafeconecta-backend/pkg/logger"
)

// indicatorRefresher is the slice of the market service this job drives.
type indicatorRefresher interface {
	RefreshIndicator(ctx context.Context) (*market.IndicatorDTO, error)
}

// IndicatorRefreshJobParams configure the indicator refresh job.
type IndicatorRefreshJobParams struct {
	Logger *logger.Logger
	Market indicatorRefresher
}

type indicatorRefreshJob struct {
	logg   *logger.Logger
	market indicatorRefresher
}

// NewIndicatorRefreshJob builds the job that re-pulls the global market
// indicator from the external feed and rewrites the cache.
func NewIndicatorRefreshJob(params IndicatorRefreshJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Market == nil {
		return nil, fmt.Errorf("market service required")
	}
	return &indicatorRefreshJob{logg: params.Logger, market: params.Market}, nil
}

func (j *indicatorRefreshJob) Name() string { return "indicator-refresh" }

func (j *indicatorRefreshJob) Run(ctx context.Context) error {
	indicator, err := j.market.RefreshIndicator(ctx)
	if err != nil {
		return fmt.Errorf("refresh indicator: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"symbol":    indicator.Symbol,
		"price_brl": indicator.PriceBRL,
	})
	j.logg.Info(logCtx, "market indicator refreshed")
	return nil
}
