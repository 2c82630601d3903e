// Package telemetry provides application-level observability for the Songbird backend.
//
// All metrics are registered against the default Prometheus registry and are
// served on a side-channel HTTP port started by main.go (default 9090, path
// /metrics). The endpoint is intentionally not part of the Gin router so the
// scrape path is never subject to the sync endpoint's rate limiting.
//
// HTTP metrics use the Gin route template (c.FullPath()) rather than the raw
// request URL so user-supplied path segments cannot inflate label cardinality.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, route template, and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration is a latency histogram by method and route template.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	// SyncCommandsTotal counts device sync commands by command name and outcome.
	//
	// The outcome label has bounded values: "ok", plus the protocol error codes
	// (invalid_api_key, suspended_key, revoked_key, inactive_key, no_entitlement,
	// venue_not_found, request_not_found, validation_error, unknown_command,
	// internal_error). The command label is the device-supplied command string,
	// normalised to "<unknown>" for unrecognised commands to keep cardinality bounded.
	//
	// Example PromQL:
	//   - Poll rate per command:  sum by (command) (rate(sync_commands_total[5m]))
	//   - Auth failure rate:      rate(sync_commands_total{outcome="invalid_api_key"}[5m])
	SyncCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_commands_total",
			Help: "Total number of device sync commands processed, by command and outcome.",
		},
		[]string{"command", "outcome"},
	)

	// SyncRateLimitedTotal counts requests rejected by the sync rate limiter.
	SyncRateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_rate_limited_total",
			Help: "Total number of sync requests rejected with HTTP 429.",
		},
	)

	// DBOpenConnections tracks the current size of the database connection pool.
	DBOpenConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Current number of open database connections in the pool.",
		},
	)
)

// StartDBStatsCollector launches a background goroutine that samples sql.DB connection
// pool statistics every 30 seconds and updates the DBOpenConnections gauge.
// The goroutine exits cleanly when the database becomes unreachable (db.Ping fails),
// which happens automatically when the application shuts down and defers db.Close().
//
// Call this once, immediately after db.Connect() succeeds in main.go:
//
//	telemetry.StartDBStatsCollector(database)
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	}()
}
