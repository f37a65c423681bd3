// Package metrics exposes floor plan counters for Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	MoveAccepted = "accepted"
	MoveRejected = "rejected"
)

type Metrics struct {
	registry   *prometheus.Registry
	tableMoves *prometheus.CounterVec
	hubClients prometheus.GaugeFunc
}

// New builds a registry with the floor plan counters. clients reports open floor hub connections.
func New(clients func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tableMoves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floorplan",
			Name:      "table_moves_total",
			Help:      "Table moves by validation result.",
		}, []string{"result"}),
	}
	m.hubClients = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "floorplan",
		Name:      "hub_clients",
		Help:      "Open floor plan websocket connections.",
	}, func() float64 {
		if clients == nil {
			return 0
		}
		return float64(clients())
	})

	m.registry.MustRegister(
		m.tableMoves,
		m.hubClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) RecordMove(result string) {
	if m == nil {
		return
	}
	m.tableMoves.WithLabelValues(result).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
