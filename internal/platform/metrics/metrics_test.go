package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestObserve_CountsByResult(t *testing.T) {
	m := New()
	m.Observe(context.Background(), "insert", true, 5*time.Millisecond)
	m.Observe(context.Background(), "insert", false, time.Millisecond)
	m.Observe(context.Background(), "", true, time.Millisecond)

	body := scrape(t, m)
	require.Contains(t, body, `catshelter_store_operations_total{operation="insert",result="success"} 1`)
	require.Contains(t, body, `catshelter_store_operations_total{operation="insert",result="error"} 1`)
	require.Contains(t, body, `catshelter_store_operation_duration_seconds_count{operation="insert"} 2`)
}

func TestLiveReadsGauge(t *testing.T) {
	m := New()
	m.LiveReads().Set(3)
	require.Contains(t, scrape(t, m), "catshelter_store_live_reads 3")
}

func TestObserveHTTP(t *testing.T) {
	m := New()
	m.ObserveHTTP("/cats/{catID}", http.MethodGet, 404, time.Millisecond)
	m.ObserveHTTP("", http.MethodGet, 404, time.Millisecond)

	body := scrape(t, m)
	require.Contains(t, body, `catshelter_http_requests_total{method="GET",route="/cats/{catID}",status="404"} 1`)
	require.Contains(t, body, `route="unmatched"`)
}
