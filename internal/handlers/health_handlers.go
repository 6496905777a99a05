package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"torqbay/internal/caching"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db       *pgxpool.Pool
	redisSvc caching.CacheService
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(db *pgxpool.Pool, redisSvc caching.CacheService) *HealthHandlers {
	return &HealthHandlers{
		db:       db,
		redisSvc: redisSvc,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version"`
}

// HealthCheck performs comprehensive health checks
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Version:   "1.0.0",
	}

	if err := h.checkDatabase(ctx); err != nil {
		health.Services["database"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["database"] = "healthy"
	}

	if err := h.checkRedis(ctx); err != nil {
		health.Services["redis"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["redis"] = "healthy"
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusPartialContent
	}
	return c.JSON(statusCode, health)
}

func (h *HealthHandlers) checkDatabase(ctx context.Context) error {
	_, err := h.db.Exec(ctx, "SELECT 1")
	return err
}

func (h *HealthHandlers) checkRedis(ctx context.Context) error {
	if h.redisSvc == nil {
		return nil
	}
	return h.redisSvc.SetString(ctx, "torqbay:health:ping", "ok", 10*time.Second)
}

// ReadinessCheck determines if the application is ready to serve traffic.
// Redis is deliberately excluded: the store degrades to direct lookups
// without it.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.checkDatabase(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Database unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}

// LivenessCheck determines if the application is running (basic liveness probe)
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetMetrics provides basic runtime metrics
func (h *HealthHandlers) GetMetrics(c echo.Context) error {
	stats := h.db.Stat()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"goroutines": runtime.NumGoroutine(),
		"database": map[string]interface{}{
			"total_connections": stats.TotalConns(),
			"idle_connections":  stats.IdleConns(),
			"max_connections":   stats.MaxConns(),
		},
	})
}
