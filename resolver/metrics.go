// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0
package resolver

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the query API.
type Metrics struct {
	Resolutions     *prometheus.CounterVec // labels: kind={election_day,early_voting}, outcome={hit,empty,error}
	RequestDuration prometheus.Histogram
	DatasetPlaces   prometheus.Gauge
}

// NewMetrics creates and registers the API metrics with the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voteatx",
			Name:      "resolutions_total",
			Help:      "Resolutions by kind and outcome.",
		}, []string{"kind", "outcome"}),
		RequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voteatx",
			Name:      "request_duration_seconds",
			Help:      "Duration of a complete voting-place query.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		DatasetPlaces: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voteatx",
			Name:      "dataset_places",
			Help:      "Voting places in the served dataset snapshot.",
		}),
	}

	reg.MustRegister(m.Resolutions, m.RequestDuration, m.DatasetPlaces)

	return m
}

func (m *Metrics) observe(kind string, n int, err error) {
	outcome := "hit"

	switch {
	case err != nil:
		outcome = "error"
	case n == 0:
		outcome = "empty"
	}

	m.Resolutions.WithLabelValues(kind, outcome).Inc()
}
