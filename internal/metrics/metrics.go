// Package metrics exposes run counters over an optional Prometheus endpoint.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks pipeline outcomes for one process.
type Metrics struct {
	EventsTotal *prometheus.CounterVec
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Summary

	registry *prometheus.Registry
	server   *http.Server
}

// New creates and registers the pipeline metrics on a private registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.EventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "archerysync",
		Name:      "events_total",
		Help:      "Events processed by reconciliation outcome",
	}, []string{"outcome"})
	m.RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "archerysync",
		Name:      "runs_total",
		Help:      "Pipeline runs by result",
	}, []string{"result"})
	m.RunDuration = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: "archerysync",
		Name:      "run_duration_seconds",
		Help:      "Time spent on a full sync run",
	})

	m.registry.MustRegister(m.EventsTotal, m.RunsTotal, m.RunDuration)
	return m
}

// Serve exposes /metrics and /healthz on addr until Shutdown is called.
func (m *Metrics) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	m.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return m.server.ListenAndServe()
}

// Shutdown stops the metrics listener if one is running.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}
