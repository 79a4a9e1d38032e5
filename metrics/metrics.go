// Package metrics exposes Prometheus counters for the reconciliation
// pipeline and a standalone metrics server the HTTP server runs alongside
// the API listener.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	// ReconcileRuns counts completed reconciliation runs by outcome
	// ("success" or "error").
	ReconcileRuns = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_runs_total",
		Help: "Completed reconciliation runs by outcome.",
	}, []string{"outcome"})

	// PhaseFailures counts run failures by pipeline phase
	// ("signing", "list" or "upsert").
	PhaseFailures = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_phase_failures_total",
		Help: "Reconciliation failures by pipeline phase.",
	}, []string{"phase"})

	// TokensSigned counts DSQL auth tokens minted.
	TokensSigned = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "dsql_tokens_signed_total",
		Help: "DSQL authentication tokens generated.",
	})

	// Upserts counts Hyperdrive configuration writes by operation
	// ("create" or "edit") and outcome.
	Upserts = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "hyperdrive_upserts_total",
		Help: "Hyperdrive configuration writes by operation and outcome.",
	}, []string{"operation", "outcome"})
)

// MetricsServer serves the Prometheus registry on its own listener so that
// scrapes never contend with the API listener.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server for the given listen address.
func New(addr string) (*MetricsServer, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &MetricsServer{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}, nil
}

func (s *MetricsServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
