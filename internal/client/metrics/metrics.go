// Package metrics counts what the client core does: backend calls by outcome,
// session state transitions and mutation results. The counters live in a
// private prometheus registry that the shell's "stats" command renders.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeUnavailable  = "unavailable"
	OutcomeUnauthorized = "unauthorized"
	OutcomeServer       = "server_error"
	OutcomeValidation   = "validation_error"
)

type Metrics struct {
	registry *prometheus.Registry

	Requests    *prometheus.CounterVec
	Transitions *prometheus.CounterVec
	Mutations   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roadwatch",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Backend calls by path and outcome.",
		}, []string{"path", "outcome"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roadwatch",
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session state transitions.",
		}, []string{"from", "to"}),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roadwatch",
			Subsystem: "session",
			Name:      "mutations_total",
			Help:      "Session mutations by kind and result.",
		}, []string{"kind", "result"}),
	}
	m.registry.MustRegister(m.Requests, m.Transitions, m.Mutations)
	return m
}

// Nil-safe recorders so components can run without metrics.

func (m *Metrics) ObserveRequest(path, outcome string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(path, outcome).Inc()
}

func (m *Metrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) ObserveMutation(kind string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.Mutations.WithLabelValues(kind, result).Inc()
}

// WriteSummary prints every non-zero counter as "name{labels} value", sorted.
func (m *Metrics) WriteSummary(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			labels := make([]string, 0, len(metric.GetLabel()))
			for _, lp := range metric.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), strings.Join(labels, ","), metric.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)

	if len(lines) == 0 {
		_, err := fmt.Fprintln(w, "no activity recorded")
		return err
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
