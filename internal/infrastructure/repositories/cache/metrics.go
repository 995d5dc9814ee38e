package cache

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultHit      = "hit"
	resultMiss     = "miss"
	resultEviction = "eviction"
	resultError    = "error"
)

type metrics struct {
	lookups *prometheus.CounterVec
}

func newMetrics(registerer prometheus.Registerer) *metrics {
	m := &metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "envtracker",
			Subsystem: "remote_lookup_cache",
			Name:      "lookups_total",
			Help:      "Remote lookup cache outcomes per operation: hit, miss, eviction or remote error",
		}, []string{"operation", "result"}),
	}

	if registerer == nil {
		return m
	}
	if err := registerer.Register(m.lookups); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				m.lookups = existing
			}
		}
	}
	return m
}

func (m *metrics) record(operation, result string) {
	m.lookups.With(prometheus.Labels{"operation": operation, "result": result}).Inc()
}
