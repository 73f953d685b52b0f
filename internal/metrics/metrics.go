package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	// APIRequestsTotal counts upstream API requests by API and outcome
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_sync_api_requests_total",
			Help: "Total number of upstream API requests",
		},
		[]string{"api", "status"},
	)

	// RowsFlattened counts flattened rows produced per dataset
	RowsFlattened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_sync_rows_flattened_total",
			Help: "Total number of flattened rows produced",
		},
		[]string{"dataset"},
	)

	// UploadsTotal counts upload dispatch outcomes per dataset
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_sync_uploads_total",
			Help: "Total number of upload dispatches",
		},
		[]string{"dataset", "result"},
	)

	// RunDuration tracks end-to-end run time per run kind
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "copilot_sync_run_duration_seconds",
			Help:    "Synchronization run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"run"},
	)

	// LastSyncedDate tracks the committed checkpoint as a unix timestamp
	LastSyncedDate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "copilot_sync_last_synced_date_seconds",
			Help: "Checkpoint date of the last committed synchronization",
		},
	)

	// ErrorsTotal counts errors by component
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_sync_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component"},
	)
)

// Push delivers the default registry to a Pushgateway. The process is
// run-to-completion, so there is nothing for Prometheus to scrape.
func Push(gatewayURL, job string) error {
	return push.New(gatewayURL, job).
		Gatherer(prometheus.DefaultGatherer).
		Push()
}
