package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/netstats/internal/analytics"
	"github.com/nulzo/netstats/internal/server/middleware"
	v1 "github.com/nulzo/netstats/internal/server/v1"
	"github.com/nulzo/netstats/internal/store/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockService is a mock implementation of analytics.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) GetTotals(ctx context.Context, w analytics.Window) (*model.AggregateResult, error) {
	args := m.Called(ctx, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AggregateResult), args.Error(1)
}

func (m *MockService) GetItems(ctx context.Context, w analytics.Window) ([]model.UsageRecord, error) {
	args := m.Called(ctx, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UsageRecord), args.Error(1)
}

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func setupRouter(svc analytics.Service, pinger v1.Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.ErrorHandler(zap.NewNop()))

	h := v1.NewAnalyticsHandler(svc)
	engine.GET("/total", h.GetTotals)
	engine.GET("/items", h.GetItems)

	health := v1.NewHealthHandler(pinger, "v1.0.0")
	engine.GET("/health", health.Health)
	engine.GET("/ready", health.Ready)
	return engine
}

func get(engine *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestGetTotals_Success(t *testing.T) {
	svc := new(MockService)
	since := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.On("GetTotals", mock.Anything, analytics.Days(30)).Return(&model.AggregateResult{
		SinceDate:              &since,
		Items:                  1,
		TotalConnections:       3,
		TotalOnlineTime:        60,
		TotalMegabytesSent:     100,
		TotalMegabytesReceived: 50,
		TotalMegabytes:         150,
	}, nil)

	w := get(setupRouter(svc, stubPinger{}), "/total?days=30")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "2024-06-01T00:00:00Z", body["since_date"])
	assert.Equal(t, float64(1), body["items"])
	assert.Equal(t, float64(3), body["total_connections"])
	assert.Equal(t, float64(60), body["total_online_time"])
	assert.Equal(t, float64(100), body["total_megabytes_sent"])
	assert.Equal(t, float64(50), body["total_megabytes_received"])
	assert.Equal(t, float64(150), body["total_megabytes"])
	svc.AssertExpectations(t)
}

func TestGetTotals_MalformedDaysIsUnbounded(t *testing.T) {
	for _, query := range []string{"", "?days=", "?days=0", "?days=-2", "?days=abc", "?days=7x"} {
		svc := new(MockService)
		svc.On("GetTotals", mock.Anything, analytics.Unbounded()).Return(&model.AggregateResult{}, nil).Once()

		w := get(setupRouter(svc, stubPinger{}), "/total"+query)
		assert.Equal(t, http.StatusOK, w.Code, query)
		svc.AssertExpectations(t)
	}
}

func TestGetTotals_EmptyDatasetHasNullSinceDate(t *testing.T) {
	svc := new(MockService)
	svc.On("GetTotals", mock.Anything, analytics.Unbounded()).Return(&model.AggregateResult{}, nil)

	w := get(setupRouter(svc, stubPinger{}), "/total")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"since_date": null,
		"items": 0,
		"total_connections": 0,
		"total_online_time": 0,
		"total_megabytes_sent": 0,
		"total_megabytes_received": 0,
		"total_megabytes": 0
	}`, w.Body.String())
}

func TestGetTotals_StorageFailureIs500WithoutDetail(t *testing.T) {
	svc := new(MockService)
	svc.On("GetTotals", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp 10.1.2.3:27017: connection refused"))

	w := get(setupRouter(svc, stubPinger{}), "/total?days=7")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.1.2.3")
	assert.Contains(t, w.Body.String(), "Failed to fetch totals")
}

func TestGetItems_Success(t *testing.T) {
	svc := new(MockService)
	day := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	svc.On("GetItems", mock.Anything, analytics.Days(7)).Return([]model.UsageRecord{{
		Date:              day,
		Connections:       2,
		OnlineTime:        1440,
		MegabytesSent:     1.5,
		MegabytesReceived: 2.5,
		MegabytesTotal:    4,
	}}, nil)

	w := get(setupRouter(svc, stubPinger{}), "/items?days=7")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{
		"date": "2024-06-02T00:00:00Z",
		"connections": 2,
		"online_time": 1440,
		"megabytes_sent": 1.5,
		"megabytes_received": 2.5,
		"megabytes_total": 4
	}]`, w.Body.String())
}

func TestGetItems_EmptyIsArray(t *testing.T) {
	svc := new(MockService)
	svc.On("GetItems", mock.Anything, analytics.Unbounded()).Return([]model.UsageRecord{}, nil)

	w := get(setupRouter(svc, stubPinger{}), "/items")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestGetItems_StorageFailure(t *testing.T) {
	svc := new(MockService)
	svc.On("GetItems", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	w := get(setupRouter(svc, stubPinger{}), "/items")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestHealthAndReady(t *testing.T) {
	svc := new(MockService)

	w := get(setupRouter(svc, stubPinger{}), "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"v1.0.0"`)

	w = get(setupRouter(svc, stubPinger{}), "/ready")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(setupRouter(svc, stubPinger{err: errors.New("down")}), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "down")
}
