// Package monitoring provides the health checker and the engine's
// OpenTelemetry metrics.
package monitoring

import (
	"context"

	"github.com/astromatch/astromatch/internal/cache"
	"github.com/astromatch/astromatch/internal/database"
)

// HealthStatus is the aggregate health report.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthChecker probes the engine's dependencies. Postgres is required;
// Redis is optional and only degrades the report.
type HealthChecker struct {
	db    *database.DB
	cache *cache.Service
}

func NewHealthChecker(db *database.DB, cacheSvc *cache.Service) *HealthChecker {
	return &HealthChecker{db: db, cache: cacheSvc}
}

// Check probes each dependency. Healthy reports "healthy"; a Redis
// failure reports "degraded"; a database failure reports "unhealthy".
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status: "healthy",
		Checks: make(map[string]string),
	}

	if err := h.db.Health(); err != nil {
		status.Status = "unhealthy"
		status.Checks["postgres"] = err.Error()
	} else {
		status.Checks["postgres"] = "ok"
	}

	if h.cache != nil {
		if err := h.cache.HealthCheck(ctx); err != nil {
			if status.Status == "healthy" {
				status.Status = "degraded"
			}
			status.Checks["redis"] = err.Error()
		} else {
			status.Checks["redis"] = "ok"
		}
	}

	return status
}
