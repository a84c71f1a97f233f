// Package metrics records suite outcomes in a private Prometheus registry
// and writes them for the node exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/epinio/epinio-e2e/internal/scenario"
)

const namespace = "epinio_e2e"

// Collector implements scenario.Observer.
type Collector struct {
	registry     *prometheus.Registry
	stepDuration *prometheus.HistogramVec
	stepFailures *prometheus.CounterVec
	cases        *prometheus.CounterVec
	caseDuration *prometheus.GaugeVec
	lastRun      prometheus.Gauge
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Collector{
		registry: reg,
		stepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of console steps",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"suite", "step"}),
		stepFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_failures_total",
			Help:      "Total number of failed steps",
		}, []string{"suite", "step"}),
		cases: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cases_total",
			Help:      "Total number of finished cases by outcome",
		}, []string{"suite", "case", "outcome"}),
		caseDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "case_duration_seconds",
			Help:      "Duration of the last run of each case",
		}, []string{"suite", "case"}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last case finished",
		}),
	}
}

func (c *Collector) StepDone(ev scenario.StepEvent) {
	c.stepDuration.WithLabelValues(ev.Suite, ev.Step).Observe(ev.Duration.Seconds())
	if ev.Err != nil {
		c.stepFailures.WithLabelValues(ev.Suite, ev.Step).Inc()
	}
}

func (c *Collector) CaseDone(ev scenario.CaseEvent) {
	outcome := "passed"
	if ev.Err != nil {
		outcome = "failed"
	}
	c.cases.WithLabelValues(ev.Suite, ev.Case, outcome).Inc()
	c.caseDuration.WithLabelValues(ev.Suite, ev.Case).Set(ev.Duration.Seconds())
	c.lastRun.Set(float64(time.Now().Unix()))
}

// WriteTextfile writes the registry to path atomically. An empty path is a
// no-op.
func (c *Collector) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, c.registry)
}

var _ scenario.Observer = (*Collector)(nil)
