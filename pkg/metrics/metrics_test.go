package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveFetch("detail", true)
	m.ObserveFetch("detail", true)
	m.ObserveFetch("listing", false)
	m.ObserveCaseSaved(1901)
	m.ObserveCaseSkipped("HTTP_404")
	m.ObserveMonth("completed")
	m.ObserveYearStarted(1901)
	m.ObserveYearCompleted()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetchesTotal.WithLabelValues("detail", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchesTotal.WithLabelValues("listing", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.casesSavedTotal.WithLabelValues("1901")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.casesSkipped.WithLabelValues("HTTP_404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.monthsTotal.WithLabelValues("completed")))
	assert.Equal(t, 1901.0, testutil.ToFloat64(m.currentYear))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.yearsCompleted))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFetch("detail", true)
		m.ObserveCaseSaved(1901)
		m.ObserveCaseSkipped("x")
		m.ObserveMonth("completed")
		m.ObserveYearStarted(1901)
		m.ObserveYearCompleted()
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveCaseSaved(1950)

	server := httptest.NewServer(m.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `case_scraper_cases_saved_total{year="1950"} 1`)
	// Private registry: no default Go collectors
	assert.NotContains(t, string(body), "go_goroutines")
}
