package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	IntakeMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signalbridge_intake_messages_total", Help: "Messages received by intake, by outcome"},
		[]string{"source", "status"},
	)
	SignalsStoredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signalbridge_signals_stored_total", Help: "Signals appended to the store"},
		[]string{"type"},
	)
	StoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signalbridge_store_errors_total", Help: "Store operations that failed"},
		[]string{"op"},
	)
	DispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signalbridge_dispatch_total", Help: "Signals handed to the executor, by result"},
		[]string{"type", "status"},
	)
	ScanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "signalbridge_consumer_scan_seconds",
			Help:    "Duration of one consumer scan cycle",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(IntakeMessagesTotal, SignalsStoredTotal, StoreErrorsTotal, DispatchTotal, ScanDuration)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
