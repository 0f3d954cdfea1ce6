package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveProviderRequest(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.ObserveProviderRequest("coingecko", "current_price", "ok", 120*time.Millisecond)
	r.ObserveProviderRequest("coingecko", "current_price", "ok", 80*time.Millisecond)
	r.ObserveProviderRequest("coingecko", "current_price", "http_429", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.requests.WithLabelValues("coingecko", "current_price", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues("coingecko", "current_price", "http_429")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecorder_ObserveCacheLookup(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.ObserveCacheLookup("hit")
	r.ObserveCacheLookup("hit")
	r.ObserveCacheLookup("miss")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("miss")))
}

// TestRecorder_Nil はnilのRecorderでもパニックしないことを検証します。
func TestRecorder_Nil(t *testing.T) {
	t.Parallel()

	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveProviderRequest("coingecko", "x", "ok", time.Second)
		r.ObserveCacheLookup("hit")
	})
	assert.NotNil(t, r.Handler())
}

// TestRecorder_Handler はエクスポジション形式でメトリクスが公開されることを検証します。
func TestRecorder_Handler(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.ObserveCacheLookup("error")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `btcdata_cache_lookups_total{result="error"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
