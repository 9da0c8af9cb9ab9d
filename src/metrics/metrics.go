// Package metrics exposes Prometheus counters for collector deliveries and
// processed workflow runs.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Attempt outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeRejected       = "rejected"
	OutcomeTransportError = "transport_error"
)

// Recorder receives delivery and processing events.
type Recorder interface {
	DeliveryAttempt(outcome string)
	EventDelivered(ok bool)
	LogFetchFailed()
	RunProcessed(ok bool)
}

// Nop discards everything.
type Nop struct{}

func (Nop) DeliveryAttempt(string) {}
func (Nop) EventDelivered(bool)    {}
func (Nop) LogFetchFailed()        {}
func (Nop) RunProcessed(bool)      {}

// Prometheus records into its own registry so several instances can coexist
// in one process.
type Prometheus struct {
	registry         *prometheus.Registry
	deliveryAttempts *prometheus.CounterVec
	events           *prometheus.CounterVec
	logFailures      prometheus.Counter
	runs             *prometheus.CounterVec
}

func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		deliveryAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hec_delivery_attempts_total",
			Help: "Total number of POST attempts against the HTTP Event Collector",
		}, []string{"outcome"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hec_events_total",
			Help: "Total number of events delivered or given up on",
		}, []string{"result"}),
		logFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "github_job_log_fetch_failures_total",
			Help: "Total number of job logs replaced by a placeholder",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workflow_runs_processed_total",
			Help: "Total number of workflow runs processed",
		}, []string{"result"}),
	}
	p.registry.MustRegister(p.deliveryAttempts, p.events, p.logFailures, p.runs)
	return p
}

func (p *Prometheus) DeliveryAttempt(outcome string) {
	p.deliveryAttempts.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) EventDelivered(ok bool) {
	p.events.WithLabelValues(result(ok)).Inc()
}

func (p *Prometheus) LogFetchFailed() {
	p.logFailures.Inc()
}

func (p *Prometheus) RunProcessed(ok bool) {
	p.runs.WithLabelValues(result(ok)).Inc()
}

// Registry returns the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
