package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 3 * time.Second

// Pinger is anything whose connectivity can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BucketChecker probes object storage.
type BucketChecker interface {
	EnsureBucket(ctx context.Context) error
}

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db      Pinger
	cache   Pinger
	storage BucketChecker
	started time.Time
	version string
}

// NewHealthHandlers creates a new health handlers instance. storage may be nil when
// image uploads are disabled.
func NewHealthHandlers(db Pinger, cache Pinger, storage BucketChecker, version string) *HealthHandlers {
	return &HealthHandlers{
		db:      db,
		cache:   cache,
		storage: storage,
		started: time.Now(),
		version: version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
}

func (h *HealthHandlers) checks(ctx context.Context) map[string]error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	results := map[string]error{
		"database": h.db.Ping(ctx),
		"redis":    h.cache.Ping(ctx),
	}
	if h.storage != nil {
		results["storage"] = h.storage.EnsureBucket(ctx)
	}
	return results
}

// HealthCheck reports every dependency. A failing dependency degrades the status
// but the endpoint still answers 200 so load balancers keep routing reads.
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
	}
	for name, err := range h.checks(c.Request().Context()) {
		if err != nil {
			health.Services[name] = "unhealthy"
			health.Status = "degraded"
			continue
		}
		health.Services[name] = "healthy"
	}
	return c.JSON(http.StatusOK, health)
}

// ReadinessCheck fails when the database is unreachable
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "database unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}

// LivenessCheck determines if the application is running
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":     "alive",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"goroutines": runtime.NumGoroutine(),
	})
}
