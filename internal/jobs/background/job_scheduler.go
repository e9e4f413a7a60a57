package background

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"restopos/internal/jobs"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const (
	JobLowStock      = "low-stock-alerts"
	JobReportWarmUp  = "report-warm-up"
	reportWarmUpTick = 10 * time.Minute
)

// JobScheduler runs the periodic inventory and reporting jobs.
type JobScheduler struct {
	scheduler gocron.Scheduler
	alerts    *jobs.InventoryAlertService
	reports   *jobs.AnalyticsRefreshService
	logger    *zap.Logger
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler registers the low-stock sweep at lowStockInterval and the report
// warm-up every ten minutes. A nil service skips its job.
func NewJobScheduler(alerts *jobs.InventoryAlertService, reports *jobs.AnalyticsRefreshService, lowStockInterval time.Duration, logger *zap.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		alerts:    alerts,
		reports:   reports,
		logger:    logger,
		jobs:      make(map[string]gocron.Job),
	}

	if alerts != nil {
		if err := js.AddJob(JobLowStock, lowStockInterval, alerts.ScheduledLowStockCheck); err != nil {
			return nil, err
		}
	}
	if reports != nil {
		if err := js.AddJob(JobReportWarmUp, reportWarmUpTick, reports.ScheduledRefresh); err != nil {
			return nil, err
		}
	}

	logger.Info("registered background jobs", zap.Int("count", len(js.jobs)))
	return js, nil
}

func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// AddJob runs task every interval. A run that is still going when the next one is
// due pushes that run back instead of overlapping.
func (js *JobScheduler) AddJob(name string, interval time.Duration, task func(ctx context.Context) error) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}

	js.mu.Lock()
	defer js.mu.Unlock()

	if _, exists := js.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(js.wrap(name, task)),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", name, err)
	}

	js.jobs[name] = job
	return nil
}

// wrap gives every run its own bounded context and logs failures.
func (js *JobScheduler) wrap(name string, task func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := task(ctx); err != nil {
			js.logger.Error("background job failed", zap.String("job", name), zap.Error(err))
		}
	}
}

func (js *JobScheduler) RemoveJob(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, exists := js.jobs[name]
	if !exists {
		return nil
	}
	delete(js.jobs, name)
	return js.scheduler.RemoveJob(job.ID())
}

// RunNow triggers a registered job outside its schedule.
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, exists := js.jobs[name]
	js.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", name)
	}
	return job.RunNow()
}

// GetJobStatus returns the registered job names and their next run times.
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	nextRuns := make(map[string]time.Time, len(js.jobs))
	for name, job := range js.jobs {
		names = append(names, name)
		if next, err := job.NextRun(); err == nil {
			nextRuns[name] = next
		}
	}
	sort.Strings(names)

	return map[string]interface{}{
		"total_jobs": len(js.jobs),
		"jobs":       names,
		"next_runs":  nextRuns,
	}
}
