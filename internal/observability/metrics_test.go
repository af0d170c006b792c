package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics("assistant", prometheus.NewRegistry())

	m.ObserveCommand("math", 10*time.Millisecond)
	m.ObserveCommand("math", 20*time.Millisecond)
	m.CollaboratorFailed("weather")
	m.Delivered(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Commands.WithLabelValues("math")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CollaboratorErrors.WithLabelValues("weather")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RemindersDelivered))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("assistant", nil)
	m.ObserveCommand("greeting", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `assistant_commands_total{intent="greeting"} 1`)
	assert.Contains(t, string(body), "assistant_command_duration_seconds_bucket")
}

func TestNewMetrics_Twice(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics("assistant", nil)
		NewMetrics("assistant", nil)
	})
}
