package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/nulzo/netstats/internal/store"
	"github.com/nulzo/netstats/internal/store/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoRepository implements store.Repository on a single collection.
type MongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStorage connects and pings the deployment before returning.
func NewMongoStorage(ctx context.Context, uri, database, collection string, logger *zap.Logger) (*MongoRepository, error) {
	logger.Info("Connecting to mongodb",
		zap.String("database", database),
		zap.String("collection", collection),
	)

	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1).
			SetStrict(true).
			SetDeprecationErrors(true))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	repo := &MongoRepository{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}

	if err := repo.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("Connected to mongodb")
	return repo, nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

func (r *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

func (r *MongoRepository) Usage() store.UsageRepository {
	return &usageRepo{collection: r.collection}
}

type usageRepo struct {
	collection *mongo.Collection
}

func (r *usageRepo) Totals(ctx context.Context, since *time.Time) (*model.AggregateResult, error) {
	cursor, err := r.collection.Aggregate(ctx, totalsPipeline(since))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var result model.AggregateResult
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return nil, err
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *usageRepo) Items(ctx context.Context, since *time.Time) ([]model.UsageRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.collection.Find(ctx, dateFilter(since), opts)
	if err != nil {
		return nil, err
	}

	records := make([]model.UsageRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
