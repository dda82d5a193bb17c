package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nulzo/netstats/internal/store"
	"github.com/nulzo/netstats/internal/store/cache"
	"github.com/nulzo/netstats/internal/store/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUsageRepository is a mock implementation of store.UsageRepository
type MockUsageRepository struct {
	mock.Mock
}

func (m *MockUsageRepository) Totals(ctx context.Context, since *time.Time) (*model.AggregateResult, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AggregateResult), args.Error(1)
}

func (m *MockUsageRepository) Items(ctx context.Context, since *time.Time) ([]model.UsageRecord, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UsageRecord), args.Error(1)
}

type fakeRepository struct {
	usage *MockUsageRepository
}

func (f *fakeRepository) Usage() store.UsageRepository  { return f.usage }
func (f *fakeRepository) Ping(ctx context.Context) error { return nil }
func (f *fakeRepository) Close() error                   { return nil }

// brokenCache fails every call.
type brokenCache struct{}

func (brokenCache) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("connection refused")
}

func (brokenCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("connection refused")
}

func (brokenCache) Delete(ctx context.Context, key string) error {
	return errors.New("connection refused")
}

var fixedNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func newTestService(opts ...Option) (Service, *MockUsageRepository) {
	usage := new(MockUsageRepository)
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(&fakeRepository{usage: usage}, opts...), usage
}

func sinceEquals(want time.Time) interface{} {
	return mock.MatchedBy(func(since *time.Time) bool {
		return since != nil && since.Equal(want)
	})
}

func TestGetTotals_BoundedWindowAnchorsToNow(t *testing.T) {
	svc, usage := newTestService()
	expected := &model.AggregateResult{Items: 2, TotalConnections: 7}

	usage.On("Totals", mock.Anything, sinceEquals(fixedNow.AddDate(0, 0, -30))).Return(expected, nil)

	got, err := svc.GetTotals(context.Background(), Days(30))
	require.NoError(t, err)
	assert.Equal(t, expected, got)
	usage.AssertExpectations(t)
}

func TestGetTotals_UnboundedPassesNilSince(t *testing.T) {
	for _, raw := range []string{"", "0", "-3", "abc"} {
		svc, usage := newTestService()
		usage.On("Totals", mock.Anything, (*time.Time)(nil)).Return(&model.AggregateResult{}, nil).Once()

		_, err := svc.GetTotals(context.Background(), ParseWindow(raw))
		require.NoError(t, err, raw)
		usage.AssertExpectations(t)
	}
}

func TestGetTotals_StorageErrorIsWrapped(t *testing.T) {
	svc, usage := newTestService()
	dbErr := errors.New("disk I/O error")
	usage.On("Totals", mock.Anything, mock.Anything).Return(nil, dbErr)

	got, err := svc.GetTotals(context.Background(), Days(7))
	assert.Nil(t, got)
	assert.ErrorIs(t, err, dbErr)
}

func TestGetItems_NilBecomesEmpty(t *testing.T) {
	svc, usage := newTestService()
	usage.On("Items", mock.Anything, (*time.Time)(nil)).Return([]model.UsageRecord(nil), nil)

	items, err := svc.GetItems(context.Background(), Unbounded())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestGetItems_StorageErrorIsWrapped(t *testing.T) {
	svc, usage := newTestService()
	dbErr := errors.New("cursor killed")
	usage.On("Items", mock.Anything, mock.Anything).Return(nil, dbErr)

	items, err := svc.GetItems(context.Background(), Days(1))
	assert.Nil(t, items)
	assert.ErrorIs(t, err, dbErr)
}

func TestGetTotals_CacheHitSkipsStorage(t *testing.T) {
	svc, usage := newTestService(WithCache(cache.NewMemoryCache(16, time.Minute), time.Minute))
	since := fixedNow.AddDate(0, 0, -10)
	expected := &model.AggregateResult{SinceDate: &since, Items: 1, TotalMegabytes: 12.5}

	usage.On("Totals", mock.Anything, mock.Anything).Return(expected, nil).Once()

	first, err := svc.GetTotals(context.Background(), Days(10))
	require.NoError(t, err)
	second, err := svc.GetTotals(context.Background(), Days(10))
	require.NoError(t, err)

	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, first.TotalMegabytes, second.TotalMegabytes)
	require.NotNil(t, second.SinceDate)
	assert.True(t, since.Equal(*second.SinceDate))
	usage.AssertNumberOfCalls(t, "Totals", 1)
}

func TestGetItems_CacheKeyedByWindow(t *testing.T) {
	svc, usage := newTestService(WithCache(cache.NewMemoryCache(16, time.Minute), time.Minute))
	usage.On("Items", mock.Anything, mock.Anything).Return([]model.UsageRecord{{Connections: 1}}, nil)

	_, err := svc.GetItems(context.Background(), Days(10))
	require.NoError(t, err)
	_, err = svc.GetItems(context.Background(), Days(20))
	require.NoError(t, err)
	_, err = svc.GetItems(context.Background(), Days(10))
	require.NoError(t, err)

	usage.AssertNumberOfCalls(t, "Items", 2)
}

func TestGetTotals_BrokenCacheFallsThrough(t *testing.T) {
	svc, usage := newTestService(WithCache(brokenCache{}, time.Minute))
	usage.On("Totals", mock.Anything, mock.Anything).Return(&model.AggregateResult{Items: 4}, nil)

	got, err := svc.GetTotals(context.Background(), Unbounded())
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Items)
}
