// Package telemetry counts the side-effecting steps of settings resolution:
// port allocations and mirror lookups.
package telemetry

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeMirror   = "mirror"
	OutcomeFallback = "fallback"
)

// Collector receives resolution events. Implementations are called inline
// while a setting is being resolved and must not block.
type Collector interface {
	IncPortAllocation(outcome string)
	IncMirrorLookup(outcome string)
}

type noopCollector struct{}

// Noop returns a collector that discards all events.
func Noop() Collector {
	return noopCollector{}
}

func (noopCollector) IncPortAllocation(string) {}
func (noopCollector) IncMirrorLookup(string)   {}

// PrometheusCollector exposes resolution counters via Prometheus.
type PrometheusCollector struct {
	portAllocations *prometheus.CounterVec
	mirrorLookups   *prometheus.CounterVec
}

// NewPrometheusCollector registers the counters with reg, or with the default
// registerer when reg is nil. Counters already registered by an earlier call
// are reused.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	ports, err := registerCounterVec(reg, prometheus.CounterOpts{
		Name: "solrwrap_port_allocations_total",
		Help: "Number of ephemeral port allocations by outcome.",
	}, "outcome")
	if err != nil {
		return nil, err
	}

	lookups, err := registerCounterVec(reg, prometheus.CounterOpts{
		Name: "solrwrap_mirror_lookups_total",
		Help: "Number of mirror lookups by outcome (mirror, fallback, error).",
	}, "outcome")
	if err != nil {
		return nil, err
	}

	return &PrometheusCollector{portAllocations: ports, mirrorLookups: lookups}, nil
}

func registerCounterVec(reg prometheus.Registerer, opts prometheus.CounterOpts, labels ...string) (*prometheus.CounterVec, error) {
	counter := prometheus.NewCounterVec(opts, labels)
	if err := reg.Register(counter); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return counter, nil
}

// IncPortAllocation counts one port allocation attempt.
func (p *PrometheusCollector) IncPortAllocation(outcome string) {
	if p == nil || p.portAllocations == nil {
		return
	}
	p.portAllocations.WithLabelValues(outcome).Inc()
}

// IncMirrorLookup counts one mirror lookup.
func (p *PrometheusCollector) IncMirrorLookup(outcome string) {
	if p == nil || p.mirrorLookups == nil {
		return
	}
	p.mirrorLookups.WithLabelValues(outcome).Inc()
}
