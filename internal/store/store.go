package store

import (
	"context"
	"time"

	"github.com/nulzo/netstats/internal/store/model"
)

// Repository is the main contract for the data layer.
type Repository interface {
	Usage() UsageRepository

	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// UsageRepository reads daily usage records. A nil since means no lower bound.
type UsageRepository interface {
	// Totals reduces every record with date >= since to a single aggregate.
	// The reduction runs inside the store.
	Totals(ctx context.Context, since *time.Time) (*model.AggregateResult, error)
	// Items returns every record with date >= since, oldest first.
	Items(ctx context.Context, since *time.Time) ([]model.UsageRecord, error)
}
