package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the assistant.
type Metrics struct {
	Commands           *prometheus.CounterVec
	CollaboratorErrors *prometheus.CounterVec
	CommandDuration    prometheus.Histogram
	RemindersDelivered prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics registers the instruments with reg. A nil reg uses a fresh
// private registry so repeated construction never panics.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		Commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Processed commands by routed intent.",
		}, []string{"intent"}),
		CollaboratorErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_errors_total",
			Help:      "Failed calls to external collaborators.",
		}, []string{"collaborator"}),
		CommandDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Time spent handling one command.",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		RemindersDelivered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_delivered_total",
			Help:      "Reminders returned by due queries.",
		}),
		gatherer: reg,
	}
}

func (m *Metrics) ObserveCommand(intent string, d time.Duration) {
	m.Commands.WithLabelValues(intent).Inc()
	m.CommandDuration.Observe(d.Seconds())
}

func (m *Metrics) CollaboratorFailed(name string) {
	m.CollaboratorErrors.WithLabelValues(name).Inc()
}

func (m *Metrics) Delivered(n int) {
	m.RemindersDelivered.Add(float64(n))
}

// Handler serves the registry these metrics were registered with.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
