package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nulzo/netstats/internal/platform/metrics"
	"github.com/nulzo/netstats/internal/store"
	"github.com/nulzo/netstats/internal/store/cache"
	"github.com/nulzo/netstats/internal/store/model"
	"go.uber.org/zap"
)

// Service answers the dashboard's two read-only questions.
type Service interface {
	// GetTotals sums every record inside the window.
	GetTotals(ctx context.Context, w Window) (*model.AggregateResult, error)
	// GetItems lists every record inside the window, oldest first.
	GetItems(ctx context.Context, w Window) ([]model.UsageRecord, error)
}

type Option func(*service)

// WithCache caches results per operation and window for ttl.
func WithCache(c cache.CacheService, ttl time.Duration) Option {
	return func(s *service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithClock overrides the time source windows are anchored to.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

type service struct {
	repo     store.Repository
	cache    cache.CacheService
	cacheTTL time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(repo store.Repository, opts ...Option) Service {
	s := &service{
		repo:   repo,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) GetTotals(ctx context.Context, w Window) (*model.AggregateResult, error) {
	key := "totals:" + w.String()

	var cached model.AggregateResult
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	totals, err := s.repo.Usage().Totals(ctx, s.since(w))
	if err != nil {
		metrics.StorageErrors.WithLabelValues("totals").Inc()
		return nil, fmt.Errorf("fetch totals for window %s: %w", w, err)
	}

	s.store(ctx, key, totals)
	return totals, nil
}

func (s *service) GetItems(ctx context.Context, w Window) ([]model.UsageRecord, error) {
	key := "items:" + w.String()

	var cached []model.UsageRecord
	if s.lookup(ctx, key, &cached) {
		if cached == nil {
			cached = []model.UsageRecord{}
		}
		return cached, nil
	}

	items, err := s.repo.Usage().Items(ctx, s.since(w))
	if err != nil {
		metrics.StorageErrors.WithLabelValues("items").Inc()
		return nil, fmt.Errorf("fetch items for window %s: %w", w, err)
	}
	if items == nil {
		items = []model.UsageRecord{}
	}

	s.store(ctx, key, items)
	return items, nil
}

func (s *service) since(w Window) *time.Time {
	t, ok := w.Since(s.now())
	if !ok {
		return nil
	}
	return &t
}

// lookup reports a hit. Cache failures are logged and treated as misses.
func (s *service) lookup(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}

	err := s.cache.Get(ctx, key, dest)
	switch {
	case err == nil:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return true
	case errors.Is(err, cache.ErrCacheMiss):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("Cache lookup failed", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (s *service) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("Cache store failed", zap.String("key", key), zap.Error(err))
	}
}
