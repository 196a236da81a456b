package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maka4h/user-service/internal/metrics"
)

// Health check gauge values exported to Prometheus.
const (
	checkFail = 0
	checkWarn = 1
	checkPass = 2
)

// HealthCheck is the health endpoint response body.
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// CheckResult is the result of a single dependency check.
type CheckResult struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

// BrokerStatus reports event broker reachability. Satisfied by the notify
// publisher; health reporting only.
type BrokerStatus interface {
	Connected() bool
}

// HealthChecker reports overall service health plus independent substatus
// for the record store and the event broker. The service is unhealthy only
// when the store is unreachable; a disconnected broker degrades event
// delivery, not the service.
type HealthChecker struct {
	pool    *pgxpool.Pool
	broker  BrokerStatus
	version string
}

// NewHealthChecker creates a health checker over the shared dependencies.
func NewHealthChecker(pool *pgxpool.Pool, broker BrokerStatus, version string) *HealthChecker {
	return &HealthChecker{pool: pool, broker: broker, version: version}
}

// Health returns the comprehensive health check handler.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]CheckResult{
			"database": h.checkDatabase(ctx),
			"broker":   h.checkBroker(),
		}

		overallStatus := "healthy"
		statusCode := http.StatusOK
		for _, check := range checks {
			if check.Status == "fail" {
				overallStatus = "unhealthy"
				statusCode = http.StatusServiceUnavailable
				break
			}
			if check.Status == "warn" {
				overallStatus = "degraded"
			}
		}

		response := HealthCheck{
			Status:    overallStatus,
			Version:   h.version,
			Checks:    checks,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(response)
	}
}

func (h *HealthChecker) checkDatabase(ctx context.Context) CheckResult {
	start := time.Now()

	if h.pool == nil {
		metrics.HealthCheckStatus.WithLabelValues("database").Set(checkFail)
		return CheckResult{
			Status:  "fail",
			Message: "database pool not initialized",
		}
	}

	dbCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var result int
	err := h.pool.QueryRow(dbCtx, "SELECT 1").Scan(&result)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		metrics.HealthCheckStatus.WithLabelValues("database").Set(checkFail)
		return CheckResult{
			Status:    "fail",
			Message:   "database query failed: " + err.Error(),
			LatencyMs: latency,
		}
	}

	metrics.HealthCheckStatus.WithLabelValues("database").Set(checkPass)
	return CheckResult{
		Status:    "pass",
		Message:   "postgres connection successful",
		LatencyMs: latency,
	}
}

func (h *HealthChecker) checkBroker() CheckResult {
	if h.broker == nil || !h.broker.Connected() {
		metrics.HealthCheckStatus.WithLabelValues("broker").Set(checkWarn)
		return CheckResult{
			Status:  "warn",
			Message: "broker disconnected; events are not being delivered",
		}
	}

	metrics.HealthCheckStatus.WithLabelValues("broker").Set(checkPass)
	return CheckResult{
		Status:  "pass",
		Message: "broker connection open",
	}
}

// Healthz returns a lightweight liveness response.
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondHealth(w, http.StatusOK, "ok")
	})
}

// Readyz returns a readiness response.
func Readyz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondHealth(w, http.StatusOK, "ready")
	})
}

type healthResponse struct {
	Status string `json:"status"`
}

func respondHealth(w http.ResponseWriter, status int, value string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: value})
}
