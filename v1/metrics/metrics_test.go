package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contextra/ragcore/v1/observability"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	cfg := DefaultConfig()
	cfg.EnableDefaultCollectors = false
	m, err := NewMetrics(cfg)
	require.NoError(t, err)
	return m
}

func TestObserveOperation_CountsByOutcome(t *testing.T) {
	m := newTestMetrics(t)

	m.ObserveOperation(observability.OperationContext{
		Component: "qdrant",
		Operation: "search",
		Duration:  25 * time.Millisecond,
		Size:      3,
	})
	m.ObserveOperation(observability.OperationContext{
		Component: "qdrant",
		Operation: "search",
		Duration:  10 * time.Millisecond,
		Error:     errors.New("unavailable"),
		Size:      -1,
	})

	success := m.operationsTotal.WithLabelValues("qdrant", "search", "success")
	failure := m.operationsTotal.WithLabelValues("qdrant", "search", "error")
	assert.Equal(t, float64(1), testutil.ToFloat64(success))
	assert.Equal(t, float64(1), testutil.ToFloat64(failure))

	// Only the successful search moved items.
	items := m.operationSize.WithLabelValues("qdrant", "search")
	assert.Equal(t, float64(3), testutil.ToFloat64(items))
}

func TestObserveOperation_ServesOverHTTP(t *testing.T) {
	m := newTestMetrics(t)
	m.ObserveOperation(observability.OperationContext{
		Component: "embedding",
		Operation: "embed",
		Duration:  5 * time.Millisecond,
		Size:      16,
	})

	srv := httptest.NewServer(m.Server.Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)

	assert.Contains(t, body, "backend_operations_total")
	assert.Contains(t, body, `component="embedding"`)
	assert.Contains(t, body, `service="ragcore"`)
}

func TestNewMetrics_RejectsInvalidConfig(t *testing.T) {
	_, err := NewMetrics(Config{})
	require.Error(t, err)
}

func TestCreateCustomMetrics(t *testing.T) {
	m := newTestMetrics(t)

	depth := m.CreateGauge("ingest_queue_depth", "Pending ingestion jobs", []string{"queue"})
	depth.WithLabelValues("document-ingest").Set(7)
	assert.Equal(t, float64(7), testutil.ToFloat64(depth.WithLabelValues("document-ingest")))

	turns := m.CreateCounter("chat_turns_total", "Completed chat turns", []string{"state"})
	turns.WithLabelValues("completed").Inc()
	assert.Equal(t, float64(1), testutil.ToFloat64(turns.WithLabelValues("completed")))
}
