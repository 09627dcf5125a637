// Package metrics exports FileAccess operation counts to Prometheus.
//
//	c := metrics.NewCollector("myapp")
//	prometheus.MustRegister(c)
//	fa := posix.New(fileaccess.WithRecorder(c))
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/input-output-hk/catalyst-forge-libs/fileaccess"
	"github.com/input-output-hk/catalyst-forge-libs/fileaccess/errors"
)

const subsystem = "fileaccess"

// Collector counts operations by op and failures by op and error code.
// It implements both fileaccess.Recorder and prometheus.Collector.
type Collector struct {
	operations *prometheus.CounterVec
	failures   *prometheus.CounterVec
}

var (
	_ fileaccess.Recorder  = (*Collector)(nil)
	_ prometheus.Collector = (*Collector)(nil)
)

// NewCollector creates a Collector whose metrics live under namespace.
func NewCollector(namespace string) *Collector {
	return &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operations_total",
			Help:      "File operations performed, by primitive.",
		}, []string{"op"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "failures_total",
			Help:      "File operations that failed, by primitive and error code.",
		}, []string{"op", "code"}),
	}
}

// Record implements fileaccess.Recorder.
func (c *Collector) Record(op string, err error) {
	c.operations.WithLabelValues(op).Inc()
	if err != nil {
		c.failures.WithLabelValues(op, string(errors.CodeOf(err))).Inc()
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.operations.Describe(ch)
	c.failures.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.operations.Collect(ch)
	c.failures.Collect(ch)
}
