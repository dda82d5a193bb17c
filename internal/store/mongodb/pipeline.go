package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// dateFilter matches every document when since is nil.
func dateFilter(since *time.Time) bson.D {
	if since == nil {
		return bson.D{}
	}
	return bson.D{{Key: "date", Value: bson.D{{Key: "$gte", Value: since.UTC()}}}}
}

// totalsPipeline reduces the matched documents to one document shaped like
// model.AggregateResult. No output document means nothing matched.
func totalsPipeline(since *time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: dateFilter(since)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "since_date", Value: bson.D{{Key: "$min", Value: "$date"}}},
			{Key: "items", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "total_connections", Value: bson.D{{Key: "$sum", Value: "$connections"}}},
			{Key: "total_online_time", Value: bson.D{{Key: "$sum", Value: "$online_time"}}},
			{Key: "total_megabytes_sent", Value: bson.D{{Key: "$sum", Value: "$megabytes_sent"}}},
			{Key: "total_megabytes_received", Value: bson.D{{Key: "$sum", Value: "$megabytes_received"}}},
			{Key: "total_megabytes", Value: bson.D{{Key: "$sum", Value: "$megabytes_total"}}},
		}}},
	}
}
