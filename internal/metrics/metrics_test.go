package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveFile(t *testing.T) {
	r := New()

	r.ObserveFile("csv", "xlsx", OutcomeOK, 10, 20*time.Millisecond)
	r.ObserveFile("csv", "xlsx", OutcomeOK, 5, time.Millisecond)
	r.ObserveFile("", "", OutcomeRejected, 0, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.files.WithLabelValues("csv", "xlsx", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.files.WithLabelValues("unknown", "none", OutcomeRejected)))
	assert.Equal(t, 15.0, testutil.ToFloat64(r.rows.WithLabelValues("csv")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.duration))
}

func TestRecorder_ObserveRequest(t *testing.T) {
	r := New()
	r.ObserveRequest("/api/preview", http.MethodPost, http.StatusOK)
	r.ObserveRequest("/api/preview", http.MethodPost, http.StatusOK)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.requests.WithLabelValues("/api/preview", "POST", "200")))
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.ObserveFile("xlsx", "csv", OutcomeFailed, 0, time.Millisecond)
	require.NoError(t, r.RegisterGauge("active_conversions", "Files currently being processed.", func() float64 { return 3 }))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	out := string(body)

	assert.True(t, strings.Contains(out, `datasweeper_files_processed_total{outcome="failed",source="xlsx",target="csv"} 1`), out)
	assert.Contains(t, out, "datasweeper_active_conversions 3")
	assert.Contains(t, out, "go_goroutines")
}

func TestRecorder_RegisterGaugeTwice(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterGauge("g", "help", func() float64 { return 1 }))
	assert.Error(t, r.RegisterGauge("g", "help", func() float64 { return 2 }))
}
