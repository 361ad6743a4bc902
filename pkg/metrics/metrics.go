// Package metrics exposes Prometheus collectors for the crawl.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the crawl collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	fetchesTotal    *prometheus.CounterVec
	casesSavedTotal *prometheus.CounterVec
	casesSkipped    *prometheus.CounterVec
	monthsTotal     *prometheus.CounterVec
	yearsCompleted  prometheus.Counter
	currentYear     prometheus.Gauge
}

// New creates the collectors on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		fetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "case_scraper_fetches_total",
				Help: "Total number of page fetches, labeled by page kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		casesSavedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "case_scraper_cases_saved_total",
				Help: "Total number of case records persisted, labeled by year.",
			},
			[]string{"year"},
		),
		casesSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "case_scraper_cases_skipped_total",
				Help: "Total number of case pages skipped, labeled by error category.",
			},
			[]string{"error_type"},
		),
		monthsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "case_scraper_months_total",
				Help: "Total number of month units processed, labeled by outcome.",
			},
			[]string{"outcome"},
		),
		yearsCompleted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "case_scraper_years_completed_total",
				Help: "Total number of years marked complete.",
			},
		),
		currentYear: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "case_scraper_current_year",
				Help: "Year currently being crawled.",
			},
		),
	}
}

// Handler returns an http.Handler exposing this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveFetch counts one fetch of a listing or detail page
func (m *Metrics) ObserveFetch(kind string, ok bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.fetchesTotal.WithLabelValues(kind, outcome).Inc()
}

// ObserveCaseSaved counts one persisted record
func (m *Metrics) ObserveCaseSaved(year int) {
	if m == nil {
		return
	}
	m.casesSavedTotal.WithLabelValues(strconv.Itoa(year)).Inc()
}

// ObserveCaseSkipped counts one skipped case page
func (m *Metrics) ObserveCaseSkipped(errorType string) {
	if m == nil {
		return
	}
	m.casesSkipped.WithLabelValues(errorType).Inc()
}

// ObserveMonth counts one month unit; outcome is "completed", "skipped" or "listing_failed"
func (m *Metrics) ObserveMonth(outcome string) {
	if m == nil {
		return
	}
	m.monthsTotal.WithLabelValues(outcome).Inc()
}

// ObserveYearStarted sets the current-year gauge
func (m *Metrics) ObserveYearStarted(year int) {
	if m == nil {
		return
	}
	m.currentYear.Set(float64(year))
}

// ObserveYearCompleted counts one completed year
func (m *Metrics) ObserveYearCompleted() {
	if m == nil {
		return
	}
	m.yearsCompleted.Inc()
}
