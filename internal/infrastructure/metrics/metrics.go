// Package metrics exposes pipeline counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"NewsRadar/internal/domain"
)

// Metrics holds the run counters. A nil *Metrics is a no-op so callers do
// not need to guard every increment.
type Metrics struct {
	registry *prometheus.Registry

	fetched     prometheus.Counter
	extracted   prometheus.Counter
	classified  prometheus.Counter
	inserted    prometheus.Counter
	duplicates  prometheus.Counter
	errors      prometheus.Counter
	submissions *prometheus.CounterVec
}

// New registers all counters on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		fetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsradar_pages_fetched_total",
			Help: "Article pages downloaded successfully.",
		}),
		extracted: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsradar_candidates_extracted_total",
			Help: "Candidate articles produced by extraction.",
		}),
		classified: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsradar_articles_classified_total",
			Help: "Candidates accepted by keyword classification.",
		}),
		inserted: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsradar_articles_inserted_total",
			Help: "Articles persisted with a new id.",
		}),
		duplicates: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsradar_duplicates_skipped_total",
			Help: "Ingest calls skipped because the URL was already seen.",
		}),
		errors: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsradar_pipeline_errors_total",
			Help: "Per-source and per-article failures during a run.",
		}),
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "newsradar_crm_submissions_total",
			Help: "CRM submission attempts by outcome.",
		}, []string{"outcome"}),
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSummary adds one run's counters.
func (m *Metrics) ObserveSummary(s domain.Summary) {
	if m == nil {
		return
	}
	m.fetched.Add(float64(s.Fetched))
	m.extracted.Add(float64(s.Extracted))
	m.classified.Add(float64(s.Classified))
	m.inserted.Add(float64(s.Inserted))
	m.duplicates.Add(float64(s.Duplicates))
	m.errors.Add(float64(s.Errors))
}

// ObserveSubmission counts one CRM submission outcome.
func (m *Metrics) ObserveSubmission(state domain.SubmissionState) {
	if m == nil {
		return
	}
	outcome := string(state)
	if outcome == "" {
		outcome = "none"
	}
	m.submissions.WithLabelValues(outcome).Inc()
}
