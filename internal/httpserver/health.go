package httpserver

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// HealthChecker probes the service's dependencies.
type HealthChecker struct {
	db    *sql.DB
	redis *redis.Client
	now   func() time.Time
}

// NewHealthChecker builds a checker. Either dependency may be nil.
func NewHealthChecker(db *sql.DB, redisClient *redis.Client) *HealthChecker {
	return &HealthChecker{db: db, redis: redisClient, now: time.Now}
}

// HealthStatus is the readiness report.
type HealthStatus struct {
	Status       string                      `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// DependencyStatus reports a single dependency.
type DependencyStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latencyMs"`
}

// Check probes every configured dependency. The database is required; Redis
// only degrades the service because the limiter fails open.
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:       statusHealthy,
		Timestamp:    h.now().UTC(),
		Dependencies: make(map[string]DependencyStatus),
	}

	if h.db != nil {
		dep := h.probe(func() error {
			var one int
			return h.db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
		})
		status.Dependencies["database"] = dep
		if dep.Status == statusUnhealthy {
			status.Status = statusUnhealthy
		}
	}

	if h.redis != nil {
		dep := h.probe(func() error { return h.redis.Ping(ctx).Err() })
		status.Dependencies["redis"] = dep
		if dep.Status == statusUnhealthy && status.Status == statusHealthy {
			status.Status = statusDegraded
		}
	}
	return status
}

func (h *HealthChecker) probe(fn func() error) DependencyStatus {
	start := h.now()
	err := fn()
	dep := DependencyStatus{Status: statusHealthy, LatencyMS: h.now().Sub(start).Milliseconds()}
	if err != nil {
		dep.Status = statusUnhealthy
		dep.Message = err.Error()
	}
	return dep
}

func (h *HealthChecker) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthStatus{Status: statusHealthy, Timestamp: h.now().UTC()})
}

func (h *HealthChecker) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := h.Check(ctx)
	code := http.StatusOK
	if status.Status == statusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}
