package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/streamtube/backend/internal/models"
)

// LikeRepository defines the interface for like data operations.
type LikeRepository interface {
	Toggle(ctx context.Context, target models.LikeTarget, targetID, actor primitive.ObjectID) (bool, error)
	DeleteLikesByVideo(ctx context.Context, videoID primitive.ObjectID) error
	DeleteOwnLikeOnComment(ctx context.Context, commentID, actor primitive.ObjectID) error
	ListLikedVideos(ctx context.Context, actor primitive.ObjectID) ([]bson.M, error)
}

// MongoLikeRepository implements LikeRepository for MongoDB.
type MongoLikeRepository struct {
	collection *mongo.Collection
}

func NewMongoLikeRepository(db *mongo.Database) *MongoLikeRepository {
	return &MongoLikeRepository{collection: db.Collection("likes")}
}

// Toggle flips the like state for (actor, target) with a conditional write:
// delete-if-exists, insert-on-absence. The partial unique index on
// (likedBy, target) turns a lost insert race into a duplicate-key error,
// which reads as "already present". Returns the resulting state.
func (r *MongoLikeRepository) Toggle(ctx context.Context, target models.LikeTarget, targetID, actor primitive.ObjectID) (bool, error) {
	filter := bson.M{
		string(target): targetID,
		"likedBy":      actor,
	}

	err := r.collection.FindOneAndDelete(ctx, filter).Err()
	if err == nil {
		return false, nil
	}
	if err != mongo.ErrNoDocuments {
		return false, err
	}

	like := bson.M{
		string(target): targetID,
		"likedBy":      actor,
		"createdAt":    time.Now(),
	}
	if _, err := r.collection.InsertOne(ctx, like); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// DeleteLikesByVideo removes all likes of a video, part of the video delete
// cascade.
func (r *MongoLikeRepository) DeleteLikesByVideo(ctx context.Context, videoID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"video": videoID})
	return err
}

// DeleteOwnLikeOnComment removes only the actor's like on a deleted comment.
func (r *MongoLikeRepository) DeleteOwnLikeOnComment(ctx context.Context, commentID, actor primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{
		"comment": commentID,
		"likedBy": actor,
	})
	return err
}

// ListLikedVideos returns the videos the actor has liked, newest like first,
// with the video owner joined in.
func (r *MongoLikeRepository) ListLikedVideos(ctx context.Context, actor primitive.ObjectID) ([]bson.M, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"likedBy": actor,
			"video":   bson.M{"$exists": true},
		}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "videos",
			"localField":   "video",
			"foreignField": "_id",
			"as":           "likedVideo",
			"pipeline": []bson.M{
				{"$lookup": bson.M{
					"from":         "users",
					"localField":   "owner",
					"foreignField": "_id",
					"as":           "ownerDetails",
					"pipeline": []bson.M{
						{"$project": ownerProjection},
					},
				}},
				{"$unwind": "$ownerDetails"},
			},
		}}},
		bson.D{{Key: "$unwind", Value: "$likedVideo"}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		bson.D{{Key: "$project", Value: bson.M{
			"_id": 0,
			"likedVideo": bson.M{
				"_id":          1,
				"title":        1,
				"description":  1,
				"videoFile":    1,
				"thumbnail":    1,
				"duration":     1,
				"views":        1,
				"isPublished":  1,
				"createdAt":    1,
				"ownerDetails": 1,
			},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var likes []bson.M
	if err = cursor.All(ctx, &likes); err != nil {
		return nil, err
	}
	if likes == nil {
		likes = []bson.M{}
	}
	return likes, nil
}
