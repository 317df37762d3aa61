// Package metrics exposes Prometheus metrics for job submission and results processing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

type JobMetrics struct {
	registry *prometheus.Registry

	jobsSubmittedTotal     prometheus.Counter
	completionsTotal       *prometheus.CounterVec
	resultsProcessedTotal  *prometheus.CounterVec
	detectionPagesTotal    prometheus.Counter
	detectionsFetchedTotal prometheus.Counter
	resultsDuration        prometheus.Histogram
}

// NewJobMetrics creates and registers the job metrics on registry.
func NewJobMetrics(registry *prometheus.Registry) (*JobMetrics, error) {
	m := &JobMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *JobMetrics) initMetrics() {
	m.jobsSubmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vidtrack_jobs_submitted_total",
		Help: "Total number of analysis jobs submitted",
	})
	m.completionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtrack_job_completions_total",
			Help: "Total number of completion notifications handled",
		},
		[]string{"status"},
	)
	m.resultsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtrack_results_processed_total",
			Help: "Total number of results aggregations",
		},
		[]string{"outcome"},
	)
	m.detectionPagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vidtrack_detection_pages_total",
		Help: "Total number of detection pages fetched from the analysis service",
	})
	m.detectionsFetchedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vidtrack_detections_fetched_total",
		Help: "Total number of detection records fetched from the analysis service",
	})
	m.resultsDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vidtrack_results_duration_seconds",
		Help:    "Time taken to fetch and aggregate the results of one job",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})
}

func (m *JobMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.jobsSubmittedTotal.Describe(ch)
	m.completionsTotal.Describe(ch)
	m.resultsProcessedTotal.Describe(ch)
	m.detectionPagesTotal.Describe(ch)
	m.detectionsFetchedTotal.Describe(ch)
	m.resultsDuration.Describe(ch)
}

func (m *JobMetrics) Collect(ch chan<- prometheus.Metric) {
	m.jobsSubmittedTotal.Collect(ch)
	m.completionsTotal.Collect(ch)
	m.resultsProcessedTotal.Collect(ch)
	m.detectionPagesTotal.Collect(ch)
	m.detectionsFetchedTotal.Collect(ch)
	m.resultsDuration.Collect(ch)
}

// The recorders below are no-ops on a nil receiver.

func (m *JobMetrics) JobSubmitted() {
	if m == nil {
		return
	}
	m.jobsSubmittedTotal.Inc()
}

func (m *JobMetrics) Completion(status string) {
	if m == nil {
		return
	}
	m.completionsTotal.WithLabelValues(status).Inc()
}

func (m *JobMetrics) DetectionPage(records int) {
	if m == nil {
		return
	}
	m.detectionPagesTotal.Inc()
	m.detectionsFetchedTotal.Add(float64(records))
}

func (m *JobMetrics) ResultsProcessed(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.resultsProcessedTotal.WithLabelValues(outcome).Inc()
	m.resultsDuration.Observe(elapsed.Seconds())
}
