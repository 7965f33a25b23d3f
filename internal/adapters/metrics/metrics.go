// Package metrics implements the Metrics port with Prometheus collectors
// registered on a private registry.
package metrics

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.trai.ch/augur/internal/core/ports"
	"go.trai.ch/zerr"
)

const namespace = "augur"

var _ ports.Metrics = (*Recorder)(nil)

// Recorder implements ports.Metrics.
type Recorder struct {
	registry         *prometheus.Registry
	cacheRequests    *prometheus.CounterVec
	trainings        *prometheus.CounterVec
	trainingDuration prometheus.Histogram
	sourceRequests   *prometheus.CounterVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Model cache lookups by result.",
		}, []string{"result"}),
		trainings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trainings_total",
			Help:      "Training runs by outcome.",
		}, []string{"outcome"}),
		trainingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "training_duration_seconds",
			Help:      "Duration of training runs.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		sourceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Upstream data source requests by outcome.",
		}, []string{"outcome"}),
	}

	r.registry.MustRegister(r.cacheRequests, r.trainings, r.trainingDuration, r.sourceRequests)
	return r
}

// Registry exposes the collectors for an external transport.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// CacheLookup counts one model cache lookup.
func (r *Recorder) CacheLookup(result ports.CacheResult) {
	r.cacheRequests.WithLabelValues(string(result)).Inc()
}

// Training records one training run.
func (r *Recorder) Training(success bool, elapsed time.Duration) {
	r.trainings.WithLabelValues(outcome(success)).Inc()
	r.trainingDuration.Observe(elapsed.Seconds())
}

// SourceFetch records one upstream request.
func (r *Recorder) SourceFetch(success bool) {
	r.sourceRequests.WithLabelValues(outcome(success)).Inc()
}

// Dump writes every sample with a non-zero count as "name{labels} value" lines.
func (r *Recorder) Dump(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return zerr.Wrap(err, "failed to gather metrics")
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if err := writeMetric(w, mf.GetName(), mf.GetType(), m); err != nil {
				return zerr.Wrap(err, "failed to write metrics")
			}
		}
	}
	return nil
}

func writeMetric(w io.Writer, name string, typ dto.MetricType, m *dto.Metric) error {
	labels := formatLabels(m.GetLabel())
	switch typ {
	case dto.MetricType_COUNTER:
		_, err := fmt.Fprintf(w, "%s%s %g\n", name, labels, m.GetCounter().GetValue())
		return err
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		if h.GetSampleCount() == 0 {
			return nil
		}
		_, err := fmt.Fprintf(w, "%s_count%s %d\n%s_sum%s %g\n",
			name, labels, h.GetSampleCount(), name, labels, h.GetSampleSum())
		return err
	default:
		return nil
	}
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s=%q", p.GetName(), p.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
