// Package telemetry provides observability for the downloader.
//
// It includes:
//   - logging.go: structured logging via slog
//   - metrics.go: Prometheus metrics
//
// The session logger writes to the session's log file so console output
// stays reserved for progress reporting. Metrics are exported on an
// optional /metrics endpoint for long crawls worth watching.
package telemetry
