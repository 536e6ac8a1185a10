package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels for operation counters
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	// Notary facade metrics
	NotaryOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notary_operations_total",
			Help: "Total number of notary operations by operation and result",
		},
		[]string{"operation", "result"},
	)

	// Security module metrics
	SSMOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notary_ssm_operations_total",
			Help: "Total number of security module operations by operation and result",
		},
		[]string{"operation", "result"},
	)

	DocumentsNotarized = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notary_documents_notarized_total",
			Help: "Total number of documents notarized",
		},
	)

	KeyRotations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notary_key_rotations_total",
			Help: "Total number of key rotations",
		},
	)
)

func init() {
	prometheus.MustRegister(NotaryOperationsTotal)
	prometheus.MustRegister(SSMOperationsTotal)
	prometheus.MustRegister(DocumentsNotarized)
	prometheus.MustRegister(KeyRotations)
}

// RecordNotaryOperation records the outcome of a notary facade operation.
func RecordNotaryOperation(operation string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	NotaryOperationsTotal.WithLabelValues(operation, result).Inc()
}

// RecordSSMOperation records the outcome of a security module operation.
func RecordSSMOperation(operation string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	SSMOperationsTotal.WithLabelValues(operation, result).Inc()
}

// Handler returns the HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes the metrics and health endpoints on the given address. It
// blocks, so callers run it in a goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.Handle("/healthz", HealthHandler())
	return http.ListenAndServe(addr, mux)
}
