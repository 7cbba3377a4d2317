// Package metrics records manager operation outcomes.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives one observation per manager operation.
type Recorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
	ReplayFailed(ctx context.Context, operation string)
}

// Nop discards every observation.
type Nop struct{}

func (Nop) Observe(context.Context, string, bool, time.Duration) {}

func (Nop) ReplayFailed(context.Context, string) {}

// Prometheus exports counters and latency histograms for manager operations.
type Prometheus struct {
	operations     *prometheus.CounterVec
	durations      *prometheus.HistogramVec
	replayFailures *prometheus.CounterVec
}

// NewPrometheus registers the collectors with reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "client_registry_operations_total",
			Help: "Manager operations by outcome.",
		}, []string{"operation", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "client_registry_operation_duration_seconds",
			Help:    "Manager operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		replayFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "client_registry_replay_failures_total",
			Help: "Cached searches that could not be refreshed after a mutation.",
		}, []string{"operation"}),
	}
	for _, c := range []prometheus.Collector{p.operations, p.durations, p.replayFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	p.operations.WithLabelValues(operation, status).Inc()
	p.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

func (p *Prometheus) ReplayFailed(_ context.Context, operation string) {
	p.replayFailures.WithLabelValues(operation).Inc()
}
