package cron

import (
	"context"
	"fmt"

	"github.com/cafeconecta/cafeconecta-backend/pkg/logger"
)

// alertEvaluator is the slice of the market service that sweeps price alerts.
type alertEvaluator interface {
	EvaluateAlerts(ctx context.Context) (int, error)
}

// AlertSweepJobParams configure the alert sweep job.
type AlertSweepJobParams struct {
	Logger *logger.Logger
	Market alertEvaluator
}

type alertSweepJob struct {
	logg   *logger.Logger
	market alertEvaluator
}

// NewAlertSweepJob builds the job that evaluates untriggered price alerts
// against the current quotes. Alerts also get evaluated on every admin quote
// update; the sweep catches alerts created after the last price change.
func NewAlertSweepJob(params AlertSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Market == nil {
		return nil, fmt.Errorf("market service required")
	}
	return &alertSweepJob{logg: params.Logger, market: params.Market}, nil
}

func (j *alertSweepJob) Name() string { return "alert-sweep" }

func (j *alertSweepJob) Run(ctx context.Context) error {
	triggered, err := j.market.EvaluateAlerts(ctx)
	if err != nil {
		return fmt.Errorf("evaluate alerts: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "alerts_triggered", triggered)
	j.logg.Info(logCtx, "price alert sweep complete")
	return nil
}
