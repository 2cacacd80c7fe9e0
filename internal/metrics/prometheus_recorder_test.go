package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("render", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("render", ResultSuccess)
	pr.IncBuildOutcome("success")
	pr.AddPagesRendered(3)
	pr.AddLinkIssues("not_found", 2)
	pr.AddLinkIssues("anchor", 0)
	pr.IncReloadBroadcast()

	mfs, err := reg.Gather()
	require.NoError(t, err)
	counters := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				name := mf.GetName()
				for _, l := range m.GetLabel() {
					name += "/" + l.GetName() + "=" + l.GetValue()
				}
				counters[name] = c.GetValue()
			}
		}
	}
	assert.InDelta(t, 3, counters["docsite_pages_rendered_total"], 0)
	assert.InDelta(t, 2, counters["docsite_link_issues_total/kind=not_found"], 0)
	assert.NotContains(t, counters, "docsite_link_issues_total/kind=anchor")
	assert.InDelta(t, 1, counters["docsite_build_outcomes_total/outcome=success"], 0)
	assert.InDelta(t, 1, counters["docsite_livereload_broadcasts_total"], 0)
	assert.InDelta(t, 1, counters["docsite_stage_results_total/result=success/stage=render"], 0)
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncBuildOutcome("failed")

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `docsite_build_outcomes_total{outcome="failed"} 1`)
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.ObserveBuildDuration(time.Second)
		pr.IncReloadBroadcast()
		pr.AddPagesRendered(1)
	})
}
