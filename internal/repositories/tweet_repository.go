package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/streamtube/backend/internal/models"
)

// TweetRepository defines the interface for tweet data operations.
type TweetRepository interface {
	CreateTweet(ctx context.Context, tweet *models.Tweet) error
	GetTweetByID(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error)
	UpdateTweetContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Tweet, error)
	DeleteTweet(ctx context.Context, id primitive.ObjectID) error
	ListTweetsByOwner(ctx context.Context, owner primitive.ObjectID) ([]bson.M, error)
}

// MongoTweetRepository implements TweetRepository for MongoDB.
type MongoTweetRepository struct {
	collection *mongo.Collection
}

func NewMongoTweetRepository(db *mongo.Database) *MongoTweetRepository {
	return &MongoTweetRepository{collection: db.Collection("tweets")}
}

func (r *MongoTweetRepository) CreateTweet(ctx context.Context, tweet *models.Tweet) error {
	tweet.ID = primitive.NewObjectID()
	tweet.CreatedAt = time.Now()
	tweet.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, tweet)
	return err
}

func (r *MongoTweetRepository) GetTweetByID(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	var tweet models.Tweet
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tweet)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tweet, nil
}

// UpdateTweetContent sets the new content and returns the post-update
// document.
func (r *MongoTweetRepository) UpdateTweetContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Tweet, error) {
	update := bson.M{"$set": bson.M{
		"content":   content,
		"updatedAt": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var tweet models.Tweet
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&tweet)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tweet, nil
}

func (r *MongoTweetRepository) DeleteTweet(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTweetsByOwner returns a user's tweets with owner details and like
// counts, newest first.
func (r *MongoTweetRepository) ListTweetsByOwner(ctx context.Context, owner primitive.ObjectID) ([]bson.M, error) {
	pipeline := newPipeline().
		Match(bson.M{"owner": owner}).
		LookupOwner("owner", "ownerDetails").
		Build()

	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "likes",
			"localField":   "_id",
			"foreignField": "tweet",
			"as":           "likeDetails",
			"pipeline": []bson.M{
				{"$project": bson.M{"likedBy": 1}},
			},
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"likesCount":   bson.M{"$size": "$likeDetails"},
			"ownerDetails": bson.M{"$first": "$ownerDetails"},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		bson.D{{Key: "$project", Value: bson.M{
			"content":      1,
			"ownerDetails": 1,
			"likesCount":   1,
			"createdAt":    1,
		}}},
	)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tweets []bson.M
	if err = cursor.All(ctx, &tweets); err != nil {
		return nil, err
	}
	if tweets == nil {
		tweets = []bson.M{}
	}
	return tweets, nil
}
