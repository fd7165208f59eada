package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/resilience"
	"github.com/riskibarqy/kleague-reconciler/internal/usecase"
)

const namespace = "kleague_reconciler"

var _ usecase.RunMetrics = (*Service)(nil)

// Service holds the counters of one reconciliation process. A batch run has
// no scrape endpoint, so the registry is pushed once when the run ends.
type Service struct {
	registry *prometheus.Registry

	Resolutions    *prometheus.CounterVec
	RemoteFailures *prometheus.CounterVec
	FoldedEvents   *prometheus.CounterVec
	MatchDuration  prometheus.Histogram
	CircuitState   *prometheus.GaugeVec
	LastRunSeconds prometheus.Gauge
}

// NewService registers every collector on registry. A nil registry gets a
// fresh one so tests never touch the global default.
func NewService(registry *prometheus.Registry) *Service {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	s := &Service{
		registry: registry,
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_resolutions_total",
			Help:      "Identity resolution outcomes by status.",
		}, []string{"status"}),
		RemoteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_failures_total",
			Help:      "Remote calls that failed after retries, by operation.",
		}, []string{"operation"}),
		FoldedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "folded_events_total",
			Help:      "Match events folded into season totals, by outcome.",
		}, []string{"outcome"}),
		MatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_processing_duration_seconds",
			Help:      "Time spent resolving, fetching and folding one match.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		CircuitState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_open",
			Help:      "1 while a remote client's circuit breaker is open, 0.5 while half open.",
		}, []string{"breaker"}),
		LastRunSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last reconciliation run.",
		}),
	}

	registry.MustRegister(
		s.Resolutions,
		s.RemoteFailures,
		s.FoldedEvents,
		s.MatchDuration,
		s.CircuitState,
		s.LastRunSeconds,
	)
	return s
}

func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Service) ObserveResolution(status usecase.ResolutionStatus) {
	s.Resolutions.WithLabelValues(string(status)).Inc()
}

func (s *Service) IncRemoteFailure(operation string) {
	operation = strings.TrimSpace(operation)
	if operation == "" {
		operation = "unknown"
	}
	s.RemoteFailures.WithLabelValues(operation).Inc()
}

func (s *Service) AddFoldedEvents(applied, skipped int) {
	if applied > 0 {
		s.FoldedEvents.WithLabelValues("applied").Add(float64(applied))
	}
	if skipped > 0 {
		s.FoldedEvents.WithLabelValues("skipped").Add(float64(skipped))
	}
}

func (s *Service) ObserveMatchDuration(d time.Duration) {
	s.MatchDuration.Observe(d.Seconds())
}

func (s *Service) SetLastRunDuration(d time.Duration) {
	s.LastRunSeconds.Set(d.Seconds())
}

// ObserveCircuitState matches the remote clients' state change hook.
func (s *Service) ObserveCircuitState(name string, _, to resilience.CircuitState) {
	value := 0.0
	switch to {
	case resilience.CircuitStateOpen:
		value = 1
	case resilience.CircuitStateHalfOpen:
		value = 0.5
	}
	s.CircuitState.WithLabelValues(name).Set(value)
}

// Push sends the registry to a Prometheus Pushgateway. An empty url is a
// no-op.
func (s *Service) Push(ctx context.Context, url, job string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(s.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics job=%s: %w", job, err)
	}
	return nil
}
