/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors the Engine Facade updates as
// connections are accepted/closed, contexts queue up, and requests are
// answered (spec.md DOMAIN STACK). It is optional: an Engine built
// without WithMetrics runs with all updates as no-ops.
//
// Grounded on nabbar-golib's httpserver package, the one repo in the
// retrieval pack that wires prometheus/client_golang directly into an
// HTTP server's lifecycle hooks rather than leaving metrics to a
// separate middleware layer.
type Metrics struct {
	ActiveConnections prometheus.Gauge
	AcceptedTotal     prometheus.Counter
	ClosedTotal       prometheus.Counter
	QueueDepth        prometheus.Gauge
	RequestDuration   prometheus.Histogram
}

// NewMetrics builds a Metrics registered against reg under the given
// namespace, ready to pass to WithMetrics.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "active_connections",
			Help: "Number of currently open connections.",
		}),
		AcceptedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "connections_accepted_total",
			Help: "Total number of accepted connections.",
		}),
		ClosedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "connections_closed_total",
			Help: "Total number of closed connections.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "context_queue_depth",
			Help: "Number of parsed requests waiting for GetContext to pull them.",
		}),
		RequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "request_duration_seconds",
			Help:    "Time between a request being queued and its response being written.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.ActiveConnections, m.AcceptedTotal, m.ClosedTotal, m.QueueDepth, m.RequestDuration)
	}
	return m
}

func (e *Engine) metrics() *Metrics { return e.opts.Metrics }
