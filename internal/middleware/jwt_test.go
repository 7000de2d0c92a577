package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-recommender-api/internal/models"
	"github.com/noah-isme/timetable-recommender-api/internal/service"
)

func newJWTRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", handler, func(c *gin.Context) {
		value, ok := c.Get(ContextUserKey)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, value.(*models.JWTClaims).StudentID)
	})
	return r
}

func call(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTMiddleware(t *testing.T) {
	tokens := service.NewTokenService(service.TokenConfig{Secret: "test-secret", Issuer: "timetable", TTL: time.Hour})
	token, _, err := tokens.Issue("s-1", "CSE", 2)
	require.NoError(t, err)
	r := newJWTRouter(JWT(tokens))

	w := call(r, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s-1", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, call(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "Token "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "Bearer not-a-jwt").Code)
}

func TestOptionalJWTMiddleware(t *testing.T) {
	tokens := service.NewTokenService(service.TokenConfig{Secret: "test-secret", TTL: time.Hour})
	token, _, err := tokens.Issue("s-2", "EE", 1)
	require.NoError(t, err)
	r := newJWTRouter(OptionalJWT(tokens))

	assert.Equal(t, "s-2", call(r, "Bearer "+token).Body.String())
	assert.Equal(t, "anonymous", call(r, "").Body.String())
	assert.Equal(t, "anonymous", call(r, "Bearer garbage").Body.String())
}

func TestMetricsMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/timetables/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/timetables/abc", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, uint64(1), metrics.Snapshot().RequestsTotal)
}

func TestMetricsMiddlewareLabelsUnmatchedAndSkips(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics, "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, uint64(0), metrics.Snapshot().RequestsTotal)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/timetables/5f0c3a52", nil))
	assert.Equal(t, uint64(1), metrics.Snapshot().RequestsTotal)

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	var paths []string
	for _, family := range families {
		if family.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "path" {
					paths = append(paths, label.GetValue())
				}
			}
		}
	}
	assert.Equal(t, []string{"unmatched"}, paths)
}
