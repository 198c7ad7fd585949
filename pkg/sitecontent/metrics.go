package sitecontent

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Rejection reasons of saved documents.
const (
	ReasonSyntax = "syntax"
	ReasonShape  = "shape"
	ReasonFields = "fields"
)

// Metrics holds the Prometheus counters of the engine. A nil *Metrics is
// valid and counts nothing.
type Metrics struct {
	DocumentsRejected    *prometheus.CounterVec
	AugmentationDegraded *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		DocumentsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sitecontent",
				Name:      "documents_rejected_total",
				Help:      "Total number of page bodies rejected on save",
			},
			[]string{"reason"},
		),
		AugmentationDegraded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sitecontent",
				Name:      "augmentation_degraded_total",
				Help:      "Total number of augmentation rules that fell back to an empty result",
			},
			[]string{"rule"},
		),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.DocumentsRejected, m.AugmentationDegraded} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) documentRejected(reason string) {
	if m == nil {
		return
	}
	m.DocumentsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) augmentationDegraded(rule string) {
	if m == nil {
		return
	}
	m.AugmentationDegraded.WithLabelValues(rule).Inc()
}
