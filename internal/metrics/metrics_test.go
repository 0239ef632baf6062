package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(CallbacksTotal.WithLabelValues("ok"))
	IncCallback("ok")
	assert.Equal(t, before+1, testutil.ToFloat64(CallbacksTotal.WithLabelValues("ok")))

	before = testutil.ToFloat64(PaymentRequestsTotal.WithLabelValues("error"))
	IncPaymentRequest("error")
	assert.Equal(t, before+1, testutil.ToFloat64(PaymentRequestsTotal.WithLabelValues("error")))

	before = testutil.ToFloat64(CacheRequestsTotal.WithLabelValues("merchant_config", "hit"))
	IncCacheRequest("merchant_config", "hit")
	assert.Equal(t, before+1, testutil.ToFloat64(CacheRequestsTotal.WithLabelValues("merchant_config", "hit")))
}

func TestTimer(t *testing.T) {
	timer := StartTimer()
	time.Sleep(2 * time.Millisecond)
	assert.GreaterOrEqual(t, timer.Duration(), 2*time.Millisecond)

	h := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "test_seconds"})
	timer.ObserveTo(h)
	assert.Equal(t, 1, testutil.CollectAndCount(h))
}
