// Package metricsserver exposes a completed run's sim/driver.Metrics as
// Prometheus gauges over HTTP, for long batch-replay jobs where an
// operator wants to scrape a result rather than parse the run log. Not
// part of the simulation core: started, if at all, only after Run returns.
package metricsserver

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inference-sim/inference-sim/sim/driver"
)

// Server exposes one run's metrics at /metrics.
type Server struct {
	http *http.Server

	incidentsReported prometheus.Gauge
	incidentsResolved prometheus.Gauge
	eventsProcessed   prometheus.Gauge
	meanResponse      prometheus.Gauge
	meanResolution    prometheus.Gauge
}

// New builds a Server bound to addr (e.g. ":9090"), registering gauges in
// their own registry so repeated test construction never collides with
// the global Prometheus default registry.
func New(addr string) *Server {
	registry := prometheus.NewRegistry()
	s := &Server{
		incidentsReported: prometheus.NewGauge(prometheus.GaugeOpts{Name: "sim_incidents_reported", Help: "Total incidents reported during the run."}),
		incidentsResolved: prometheus.NewGauge(prometheus.GaugeOpts{Name: "sim_incidents_resolved", Help: "Total incidents resolved during the run."}),
		eventsProcessed:   prometheus.NewGauge(prometheus.GaugeOpts{Name: "sim_events_processed", Help: "Total events processed during the run."}),
		meanResponse:      prometheus.NewGauge(prometheus.GaugeOpts{Name: "sim_mean_response_seconds", Help: "Mean seconds from report to response."}),
		meanResolution:    prometheus.NewGauge(prometheus.GaugeOpts{Name: "sim_mean_resolution_seconds", Help: "Mean seconds from report to resolution."}),
	}
	registry.MustRegister(s.incidentsReported, s.incidentsResolved, s.eventsProcessed, s.meanResponse, s.meanResolution)

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	s.http = &http.Server{Addr: addr, Handler: router}
	return s
}

// Publish sets the gauges from m. Call once after Simulator.Run returns.
func (s *Server) Publish(m *driver.Metrics) {
	s.incidentsReported.Set(float64(m.IncidentsReported))
	s.incidentsResolved.Set(float64(m.IncidentsResolved))
	s.eventsProcessed.Set(float64(m.EventsProcessed))
	s.meanResponse.Set(m.MeanResponseSeconds)
	s.meanResolution.Set(m.MeanResolutionSeconds)
}

// ListenAndServe blocks serving /metrics until the process is signaled to
// stop; callers typically run it in its own goroutine.
func (s *Server) ListenAndServe() error {
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
