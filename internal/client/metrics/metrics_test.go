package metrics

import (
	"bytes"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveRequest("/auth/me", OutcomeOK)
	m.ObserveRequest("/auth/me", OutcomeOK)
	m.ObserveRequest("/auth/login", OutcomeUnauthorized)
	m.ObserveTransition("unknown", "anonymous")
	m.ObserveMutation("login", nil)
	m.ObserveMutation("login", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("/auth/me", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/auth/login", OutcomeUnauthorized)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("unknown", "anonymous")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("login", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("login", "failure")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("/x", OutcomeOK)
	m.ObserveTransition("a", "b")
	m.ObserveMutation("logout", nil)
}

func TestMetrics_WriteSummary(t *testing.T) {
	m := New()

	var empty bytes.Buffer
	require.NoError(t, m.WriteSummary(&empty))
	assert.Equal(t, "no activity recorded\n", empty.String())

	m.ObserveRequest("/auth/me", OutcomeOK)

	var buf bytes.Buffer
	require.NoError(t, m.WriteSummary(&buf))
	assert.Contains(t, buf.String(), `roadwatch_client_requests_total{outcome="ok",path="/auth/me"} 1`)
}
