package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsServiceRecommendationTotals(t *testing.T) {
	m := NewMetricsService()
	m.ObserveRecommendation(OutcomeOK, 12, 3, 2*time.Millisecond)
	m.ObserveRecommendation(OutcomeEmpty, 0, 0, time.Millisecond)
	m.ObserveRecommendation(OutcomeInvalid, 0, 0, time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, uint64(3), snap.RecommendationsTotal)
	assert.Equal(t, uint64(3), snap.CandidatesTotal)
	assert.InDelta(t, 4.0/3.0, snap.AverageRecommendationMs, 0.001)
	assert.Equal(t, 3, testutil.CollectAndCount(m.recommendationDuration))
}

func TestMetricsServiceCacheRatio(t *testing.T) {
	m := NewMetricsService()
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)

	assert.InDelta(t, 2.0/3.0, testutil.ToFloat64(m.cacheHitRatio), 0.0001)
	assert.Equal(t, uint64(2), m.Snapshot().CacheHits)
}

func TestMetricsServiceHandler(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/courses", http.StatusOK, 5*time.Millisecond)
	m.ObserveRecommendation(OutcomeOK, 4, 2, time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
	assert.Contains(t, w.Body.String(), "timetable_recommendation_duration_seconds")

	var nilMetrics *MetricsService
	w = httptest.NewRecorder()
	nilMetrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
