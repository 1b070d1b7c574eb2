package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPoll(t *testing.T) {
	m := New()

	m.RecordPoll("ok", 120*time.Millisecond, 100, 3)
	m.RecordPoll("error", time.Second, 0, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PollCycles.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PollCycles.WithLabelValues("error")))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.TokensFetched))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.TokensAdmitted))
}

func TestRecordWrite(t *testing.T) {
	m := New()

	m.RecordWrite(8, 2, 0)

	assert.Equal(t, 8.0, testutil.ToFloat64(m.WriterRows.WithLabelValues("inserted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.WriterRows.WithLabelValues("conflict")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordPoll("ok", time.Second, 1, 1)
		m.RecordTracker(1, 1)
		m.RecordHandlerError("feed")
		m.SetFeedSize(1)
		m.SetStreamClients(1)
		m.RecordStreamDrop()
		m.RecordWrite(1, 1, 1)
		m.RecordImageProxy(200)
		m.RecordSolPrice("hit")
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordTracker(42, 1718000000000)
	m.RecordImageProxy(502)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "watchx_tracker_seen_mints 42"))
	assert.True(t, strings.Contains(string(body), `watchx_image_proxy_requests_total{code="502"} 1`))
}
