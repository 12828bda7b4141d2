// Package metrics exposes a Prometheus endpoint and the ledger's
// operation counters on a dedicated listener, kept off the API port so
// scrapes never compete with submissions.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer serves a Prometheus registry over HTTP.
type MetricsServer struct {
	registry *prometheus.Registry
	srv      *http.Server

	// Operations counts ledger operations by name and outcome.
	Operations *prometheus.CounterVec

	// Submissions counts accepted encrypted submissions by kind.
	Submissions *prometheus.CounterVec

	// DecryptionRequests counts oracle round trips by stage.
	DecryptionRequests *prometheus.CounterVec
}

// New creates a metrics server for the given service. The listen
// address may be empty when metrics are disabled; the collectors still
// work, only the listener is skipped.
func New(service, listenAddr string) (*MetricsServer, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: service,
		Name:      "operations_total",
		Help:      "Ledger operations by name and outcome.",
	}, []string{"operation", "outcome"})

	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: service,
		Name:      "submissions_total",
		Help:      "Accepted encrypted submissions by kind.",
	}, []string{"kind"})

	decryptions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: service,
		Name:      "decryption_requests_total",
		Help:      "Oracle decryption round trips by stage.",
	}, []string{"stage"})

	registry.MustRegister(operations, submissions, decryptions)

	m := &MetricsServer{
		registry:           registry,
		Operations:         operations,
		Submissions:        submissions,
		DecryptionRequests: decryptions,
	}

	if listenAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		m.srv = &http.Server{Addr: listenAddr, Handler: mux}
	}

	return m, nil
}

// ListenAndServe blocks serving the metrics endpoint. Returns
// immediately when no listen address was configured.
func (m *MetricsServer) ListenAndServe() error {
	if m.srv == nil {
		return nil
	}
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the listener.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	if m.srv == nil {
		return nil
	}
	return m.srv.Shutdown(ctx)
}
