package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique indexes the handlers rely on: unique
// usernames/emails for registration conflicts, a unique (subscriber, channel)
// pair, and partial unique (likedBy, target) pairs that make the like toggle
// a race-free conditional write.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return err
	}

	likeTargets := []string{"video", "comment", "tweet"}
	likeIndexes := make([]mongo.IndexModel, 0, len(likeTargets))
	for _, target := range likeTargets {
		likeIndexes = append(likeIndexes, mongo.IndexModel{
			Keys: bson.D{{Key: "likedBy", Value: 1}, {Key: target, Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{target: bson.M{"$exists": true}}),
		})
	}
	if _, err := db.Collection("likes").Indexes().CreateMany(ctx, likeIndexes); err != nil {
		return err
	}

	_, err = db.Collection("subscriptions").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
