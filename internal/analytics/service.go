package analytics

import (
	"context"
	"fmt"
	"time"

	"restopos/internal/caching"
	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/repositories"

	"go.uber.org/zap"
)

const (
	defaultPopularLimit = 10
	maxPopularLimit     = 100
)

// AnalyticsService computes the manager reports and keeps recent results in the cache.
type AnalyticsService struct {
	reportRepo repositories.ReportRepository
	cache      caching.CacheService
	ttl        time.Duration
	logger     *zap.Logger
}

func NewAnalyticsService(reportRepo repositories.ReportRepository, cache caching.CacheService, ttl time.Duration, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		reportRepo: reportRepo,
		cache:      cache,
		ttl:        ttl,
		logger:     logger,
	}
}

func rangeKey(rng models.ReportRange) string {
	if !rng.Bounded() {
		return "all"
	}
	return rng.Start.UTC().Format(time.RFC3339) + "_" + rng.End.UTC().Format(time.RFC3339)
}

func validateRange(rng models.ReportRange) error {
	if rng.Bounded() {
		if err := common.ValidateDateRange(*rng.Start, *rng.End); err != nil {
			return common.Invalid("end_date", err.Error())
		}
	}
	return nil
}

// cached fills dest from the cache under name, or runs load and stores its result.
func cached[T any](ctx context.Context, a *AnalyticsService, name string, load func() (T, error)) (T, error) {
	var value T
	hit, err := a.cache.GetReport(ctx, name, &value)
	if err != nil {
		a.logger.Warn("failed to read cached report", zap.String("report", name), zap.Error(err))
	} else if hit {
		return value, nil
	}

	value, err = load()
	if err != nil {
		return value, err
	}
	if err := a.cache.SetReport(ctx, name, value, a.ttl); err != nil {
		a.logger.Warn("failed to cache report", zap.String("report", name), zap.Error(err))
	}
	return value, nil
}

func (a *AnalyticsService) Summary(ctx context.Context, rng models.ReportRange) (*models.ReportSummary, error) {
	if err := validateRange(rng); err != nil {
		return nil, err
	}
	return cached(ctx, a, "summary:"+rangeKey(rng), func() (*models.ReportSummary, error) {
		return a.reportRepo.Summary(ctx, rng)
	})
}

func (a *AnalyticsService) PopularItems(ctx context.Context, rng models.ReportRange, limit int) ([]*models.PopularItem, error) {
	if err := validateRange(rng); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = defaultPopularLimit
	}
	if err := common.ValidatePositiveInteger(limit, "limit", maxPopularLimit); err != nil {
		return nil, common.Invalid("limit", err.Error())
	}
	name := fmt.Sprintf("popular:%d:%s", limit, rangeKey(rng))
	return cached(ctx, a, name, func() ([]*models.PopularItem, error) {
		items, err := a.reportRepo.PopularItems(ctx, rng, limit)
		if items == nil {
			items = []*models.PopularItem{}
		}
		return items, err
	})
}

func (a *AnalyticsService) PaymentSummary(ctx context.Context, rng models.ReportRange) (*models.PaymentSummary, error) {
	if err := validateRange(rng); err != nil {
		return nil, err
	}
	return cached(ctx, a, "payments:"+rangeKey(rng), func() (*models.PaymentSummary, error) {
		return a.reportRepo.PaymentSummary(ctx, rng)
	})
}

// DailySummary lists paid orders and revenue per day. Both ends are required.
func (a *AnalyticsService) DailySummary(ctx context.Context, rng models.ReportRange) ([]*models.DailySummary, error) {
	if !rng.Bounded() {
		return nil, common.Invalid("start_date", "start_date and end_date are required")
	}
	if err := validateRange(rng); err != nil {
		return nil, err
	}
	return cached(ctx, a, "daily:"+rangeKey(rng), func() ([]*models.DailySummary, error) {
		days, err := a.reportRepo.DailySummary(ctx, *rng.Start, *rng.End)
		if days == nil {
			days = []*models.DailySummary{}
		}
		return days, err
	})
}

// DailySummaryPDF renders the daily summary for the range as a PDF document.
func (a *AnalyticsService) DailySummaryPDF(ctx context.Context, rng models.ReportRange) ([]byte, error) {
	days, err := a.DailySummary(ctx, rng)
	if err != nil {
		return nil, err
	}
	return RenderDailySummaryPDF(*rng.Start, *rng.End, days)
}

// WarmUp recomputes the unbounded reports so the dashboard's first load is served from the cache.
func (a *AnalyticsService) WarmUp(ctx context.Context) error {
	if err := a.cache.InvalidateReports(ctx); err != nil {
		a.logger.Warn("failed to clear report cache before warm-up", zap.Error(err))
	}
	all := models.ReportRange{}
	if _, err := a.Summary(ctx, all); err != nil {
		return fmt.Errorf("failed to warm summary report: %w", err)
	}
	if _, err := a.PopularItems(ctx, all, defaultPopularLimit); err != nil {
		return fmt.Errorf("failed to warm popular items report: %w", err)
	}
	if _, err := a.PaymentSummary(ctx, all); err != nil {
		return fmt.Errorf("failed to warm payment summary report: %w", err)
	}
	return nil
}
