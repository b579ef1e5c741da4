package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("traverse", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncPageResult("page", PageRendered)
	pr.IncPageResult("page", PageRendered)
	pr.IncPageResult("page", PageSkipped)
	pr.IncBuildOutcome(OutcomeSuccess)
	pr.SetCourses(2)

	require.InDelta(t, 2, testutil.ToFloat64(pr.pageResults.WithLabelValues("page", "rendered")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.pageResults.WithLabelValues("page", "skipped")), 0)
	require.InDelta(t, 2, testutil.ToFloat64(pr.courses), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}

func TestHTTPHandler_ServesRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncBuildOutcome(OutcomeFailed)

	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `courseforge_build_outcomes_total{outcome="failed"} 1`)
}

func TestNewRegistry_IncludesRuntimeCollectors(t *testing.T) {
	reg := NewRegistry()
	NewPrometheusRecorder(reg).SetCourses(2)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["go_goroutines"])
	require.True(t, names["courseforge_courses"])
}
