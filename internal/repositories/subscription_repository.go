package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SubscriptionRepository defines the interface for subscription data
// operations.
type SubscriptionRepository interface {
	Toggle(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error)
	GetChannelSubscribers(ctx context.Context, channel primitive.ObjectID) (bson.M, error)
	GetSubscribedChannels(ctx context.Context, subscriber primitive.ObjectID) (bson.M, error)
}

// MongoSubscriptionRepository implements SubscriptionRepository for MongoDB.
type MongoSubscriptionRepository struct {
	collection *mongo.Collection
}

func NewMongoSubscriptionRepository(db *mongo.Database) *MongoSubscriptionRepository {
	return &MongoSubscriptionRepository{collection: db.Collection("subscriptions")}
}

// Toggle flips the subscription state for (subscriber, channel) with the
// same conditional delete-or-insert as the like toggle. Returns the
// resulting state.
func (r *MongoSubscriptionRepository) Toggle(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"subscriber": subscriber,
		"channel":    channel,
	}

	err := r.collection.FindOneAndDelete(ctx, filter).Err()
	if err == nil {
		return false, nil
	}
	if err != mongo.ErrNoDocuments {
		return false, err
	}

	subscription := bson.M{
		"subscriber": subscriber,
		"channel":    channel,
		"createdAt":  time.Now(),
	}
	if _, err := r.collection.InsertOne(ctx, subscription); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// GetChannelSubscribers returns the subscriber profiles of a channel plus the
// total count in a single $facet round trip.
func (r *MongoSubscriptionRepository) GetChannelSubscribers(ctx context.Context, channel primitive.ObjectID) (bson.M, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"channel": channel}}},
		bson.D{{Key: "$facet", Value: bson.M{
			"subscribers": []bson.M{
				{"$lookup": bson.M{
					"from":         "users",
					"localField":   "subscriber",
					"foreignField": "_id",
					"as":           "subscriber",
					"pipeline": []bson.M{
						{"$project": ownerProjection},
					},
				}},
				{"$addFields": bson.M{
					"subscriber": bson.M{"$first": "$subscriber"},
				}},
			},
			"subscribersCount": []bson.M{
				{"$count": "subscribers"},
			},
		}}},
	}

	return r.runFacet(ctx, pipeline)
}

// GetSubscribedChannels returns the channels a user subscribes to plus the
// total count.
func (r *MongoSubscriptionRepository) GetSubscribedChannels(ctx context.Context, subscriber primitive.ObjectID) (bson.M, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"subscriber": subscriber}}},
		bson.D{{Key: "$facet", Value: bson.M{
			"channels": []bson.M{
				{"$lookup": bson.M{
					"from":         "users",
					"localField":   "channel",
					"foreignField": "_id",
					"as":           "channel",
					"pipeline": []bson.M{
						{"$project": ownerProjection},
					},
				}},
				{"$addFields": bson.M{
					"channel": bson.M{"$first": "$channel"},
				}},
			},
			"channelsCount": []bson.M{
				{"$count": "channels"},
			},
		}}},
	}

	return r.runFacet(ctx, pipeline)
}

func (r *MongoSubscriptionRepository) runFacet(ctx context.Context, pipeline mongo.Pipeline) (bson.M, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []bson.M
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return bson.M{}, nil
	}
	return results[0], nil
}
