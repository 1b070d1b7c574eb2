package metrics

import (
	"strconv"
	"time"
)

// The Record helpers accept a nil receiver so components can run without metrics.

// RecordPoll records one poll cycle.
func (m *Metrics) RecordPoll(status string, d time.Duration, fetched, admitted int) {
	if m == nil {
		return
	}
	m.PollCycles.WithLabelValues(status).Inc()
	m.PollDuration.Observe(d.Seconds())
	m.TokensFetched.Add(float64(fetched))
	m.TokensAdmitted.Add(float64(admitted))
}

// RecordTracker updates the tracker gauges.
func (m *Metrics) RecordTracker(seen int, watermark int64) {
	if m == nil {
		return
	}
	m.TrackerSeen.Set(float64(seen))
	m.TrackerWatermark.Set(float64(watermark))
}

// RecordHandlerError counts a failed token handler.
func (m *Metrics) RecordHandlerError(handler string) {
	if m == nil {
		return
	}
	m.HandlerErrors.WithLabelValues(handler).Inc()
}

// SetFeedSize sets the live feed gauge.
func (m *Metrics) SetFeedSize(n int) {
	if m == nil {
		return
	}
	m.FeedSize.Set(float64(n))
}

// SetStreamClients sets the connected clients gauge.
func (m *Metrics) SetStreamClients(n int) {
	if m == nil {
		return
	}
	m.StreamClients.Set(float64(n))
}

// RecordStreamDrop counts a client dropped for falling behind.
func (m *Metrics) RecordStreamDrop() {
	if m == nil {
		return
	}
	m.StreamDropped.Inc()
}

// RecordWrite records the outcome of a writer flush.
func (m *Metrics) RecordWrite(inserted, conflicts, failed int) {
	if m == nil {
		return
	}
	m.WriterRows.WithLabelValues("inserted").Add(float64(inserted))
	m.WriterRows.WithLabelValues("conflict").Add(float64(conflicts))
	m.WriterRows.WithLabelValues("error").Add(float64(failed))
}

// RecordImageProxy counts an image relay response.
func (m *Metrics) RecordImageProxy(code int) {
	if m == nil {
		return
	}
	m.ImageProxyRequests.WithLabelValues(strconv.Itoa(code)).Inc()
}

// RecordSolPrice counts a SOL price lookup result.
func (m *Metrics) RecordSolPrice(result string) {
	if m == nil {
		return
	}
	m.SolPriceLookups.WithLabelValues(result).Inc()
}
