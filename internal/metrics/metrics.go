// Package metrics exposes Prometheus instrumentation and the HTTP
// surface that serves it.
package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Metrics holds every collector the bot reports. Collectors are bound to
// a private registry so tests can create throwaway instances.
type Metrics struct {
	registry *prometheus.Registry

	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	EventsDropped   prometheus.Counter
	ActiveUsers     prometheus.Gauge
}

// New builds a metrics set on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pursebot",
			Name:      "commands_total",
			Help:      "Total dispatched commands by command name and outcome.",
		}, []string{"command", "status"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pursebot",
			Name:      "command_duration_seconds",
			Help:      "Handler execution time in seconds.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"command"}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pursebot",
			Name:      "events_dropped_total",
			Help:      "Events discarded because the recorder queue was full.",
		}),
		ActiveUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pursebot",
			Name:      "known_users",
			Help:      "Number of users with a ledger record.",
		}),
	}
	reg.MustRegister(
		m.CommandsTotal,
		m.CommandDuration,
		m.EventsDropped,
		m.ActiveUsers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCommand is shaped to plug straight into the usage tracker hook.
func (m *Metrics) ObserveCommand(command, status string) {
	m.CommandsTotal.WithLabelValues(command, status).Inc()
}

// Handler returns the chi router serving /metrics and /healthz.
func (m *Metrics) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	return r
}

// Serve runs the metrics endpoint until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, log zerolog.Logger) {
	srv := &http.Server{Addr: addr, Handler: m.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info().Str("addr", addr).Msg("metrics endpoint listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("metrics server stopped")
	}
}
