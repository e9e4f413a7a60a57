package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ReportWarmer recomputes cached reports.
type ReportWarmer interface {
	WarmUp(ctx context.Context) error
}

type AnalyticsRefreshService struct {
	warmer ReportWarmer
	logger *zap.Logger
	now    func() time.Time
}

type AnalyticsRefreshResult struct {
	DataUpdated   bool
	LastRefreshAt time.Time
	Duration      time.Duration
}

func NewAnalyticsRefreshService(warmer ReportWarmer, logger *zap.Logger) *AnalyticsRefreshService {
	return &AnalyticsRefreshService{warmer: warmer, logger: logger, now: time.Now}
}

func (a *AnalyticsRefreshService) Refresh(ctx context.Context) (*AnalyticsRefreshResult, error) {
	started := a.now()
	if err := a.warmer.WarmUp(ctx); err != nil {
		a.logger.Error("report refresh failed", zap.Error(err))
		return &AnalyticsRefreshResult{LastRefreshAt: started}, err
	}

	result := &AnalyticsRefreshResult{
		DataUpdated:   true,
		LastRefreshAt: started,
		Duration:      a.now().Sub(started),
	}
	a.logger.Debug("reports refreshed", zap.Duration("took", result.Duration))
	return result, nil
}

// ScheduledRefresh adapts Refresh to the scheduler's task signature.
func (a *AnalyticsRefreshService) ScheduledRefresh(ctx context.Context) error {
	_, err := a.Refresh(ctx)
	return err
}
