package telemetry

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics for the download pipeline.
var (
	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scratchdl_fetches_total",
		Help: "Fetch tasks finished, labelled by result (success or failure)",
	}, []string{"result"})

	RetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scratchdl_retries_total",
		Help: "Fetch attempts retried after a transient failure",
	})

	InFlightTasks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scratchdl_inflight_tasks",
		Help: "Fetch tasks currently dispatched to workers",
	})

	DatasetRowsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scratchdl_dataset_rows_total",
		Help: "Metadata rows written to the dataset CSV",
	})
)

// Serve exposes /metrics and /healthz on addr from a background
// goroutine. An empty addr disables the endpoint.
func Serve(addr string, logger *slog.Logger) {
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		logger.Info("metrics listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics server error", "error", err)
		}
	}()
}
