package converter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erraggy/yw7tools/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	c := New()
	c.Metrics = m

	_, err := c.Import(testutil.SampleYW7Path)
	require.NoError(t, err)
	_, err = c.ImportBytes([]byte("<YWRITER7><PROJECT><Title>x</Title></Desc></PROJECT></YWRITER7>"), "")
	require.NoError(t, err)
	_, err = c.Import("missing.yw7")
	require.Error(t, err)

	c.StrictMode = true
	_, err = c.Import(testutil.SampleYW7Path)
	require.Error(t, err)

	_, err = c.Export(testutil.NewSimpleProject(), "")
	require.NoError(t, err)

	assert.Equal(t, 2.0, promtest.ToFloat64(m.Conversions.WithLabelValues("import", OutcomeSuccess)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Conversions.WithLabelValues("import", OutcomeFailed)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Conversions.WithLabelValues("import", OutcomeRejected)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Conversions.WithLabelValues("export", OutcomeSuccess)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Repairs))
	assert.Equal(t, 2.0, promtest.ToFloat64(m.Issues.WithLabelValues("import", "unsupported-markup", "warning")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Issues.WithLabelValues("import", "repair", "info")))
	assert.Equal(t, 2, promtest.CollectAndCount(m.Duration), "one histogram per direction")
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics(nil)
	m.Conversions.WithLabelValues("import", OutcomeSuccess).Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `yw7tools_conversions_total{direction="import",outcome="success"} 1`)
	assert.NotNil(t, m.Registry())
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observe(DirectionImport, time.Time{}, (*ImportResult)(nil), nil)
	})
}
