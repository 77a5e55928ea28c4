package observability

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// GatewayMetrics records remote calls issued through the contract gateway.
type GatewayMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// ConfiguratorMetrics records the orchestrator's per-step decisions.
type ConfiguratorMetrics struct {
	steps *prometheus.CounterVec
}

var (
	gatewayMetricsOnce sync.Once
	gatewayRegistry    *GatewayMetrics

	configuratorMetricsOnce sync.Once
	configuratorRegistry    *ConfiguratorMetrics
)

// NewGatewayMetrics builds gateway collectors and registers them with reg
// when it is non-nil.
func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	m := &GatewayMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aptoslend",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Remote calls segmented by kind (view or transaction), function and outcome.",
		}, []string{"kind", "function", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aptoslend",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Latency of remote calls including transaction finality waits.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"kind", "function"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.latency)
	}
	return m
}

// Gateway returns the process-wide gateway metrics on the default registry.
func Gateway() *GatewayMetrics {
	gatewayMetricsOnce.Do(func() {
		gatewayRegistry = NewGatewayMetrics(prometheus.DefaultRegisterer)
	})
	return gatewayRegistry
}

// Observe records one call. Function should be "module::name" so label
// cardinality stays bounded across deployments.
func (m *GatewayMetrics) Observe(kind, function, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	if function == "" {
		function = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.requests.WithLabelValues(kind, function, outcome).Inc()
	m.latency.WithLabelValues(kind, function).Observe(duration.Seconds())
}

// Requests exposes the request counter for tests and exporters.
func (m *GatewayMetrics) Requests() *prometheus.CounterVec {
	if m == nil {
		return nil
	}
	return m.requests
}

// NewConfiguratorMetrics builds orchestrator collectors and registers them
// with reg when it is non-nil.
func NewConfiguratorMetrics(reg prometheus.Registerer) *ConfiguratorMetrics {
	m := &ConfiguratorMetrics{
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aptoslend",
			Subsystem: "configurator",
			Name:      "step_actions_total",
			Help:      "Orchestrator actions segmented by step and action (submitted, skipped).",
		}, []string{"step", "action"}),
	}
	if reg != nil {
		reg.MustRegister(m.steps)
	}
	return m
}

// Configurator returns the process-wide orchestrator metrics.
func Configurator() *ConfiguratorMetrics {
	configuratorMetricsOnce.Do(func() {
		configuratorRegistry = NewConfiguratorMetrics(prometheus.DefaultRegisterer)
	})
	return configuratorRegistry
}

// RecordStep counts one action taken by a step.
func (m *ConfiguratorMetrics) RecordStep(step, action string) {
	if m == nil {
		return
	}
	m.steps.WithLabelValues(step, action).Inc()
}

// Steps exposes the step counter for tests.
func (m *ConfiguratorMetrics) Steps() *prometheus.CounterVec {
	if m == nil {
		return nil
	}
	return m.steps
}

// PushDefault pushes everything on the default registry to a Prometheus
// pushgateway. One-shot commands use it in place of a scrape endpoint.
func PushDefault(ctx context.Context, url, job string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	if job == "" {
		return fmt.Errorf("pushgateway job name required")
	}
	if err := push.New(url, job).Gatherer(prometheus.DefaultGatherer).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
