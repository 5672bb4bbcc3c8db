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

// CommentRepository defines the interface for comment data operations.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	UpdateCommentContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
	DeleteCommentsByVideo(ctx context.Context, videoID primitive.ObjectID) error
	ListCommentsByVideo(ctx context.Context, videoID, viewer primitive.ObjectID, page, limit int64) (*Page, error)
}

// MongoCommentRepository implements CommentRepository for MongoDB.
type MongoCommentRepository struct {
	collection *mongo.Collection
}

func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateCommentContent sets the new content and returns the post-update
// document.
func (r *MongoCommentRepository) UpdateCommentContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	update := bson.M{"$set": bson.M{
		"content":   content,
		"updatedAt": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var comment models.Comment
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&comment)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *MongoCommentRepository) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCommentsByVideo removes all comments of a video, part of the video
// delete cascade.
func (r *MongoCommentRepository) DeleteCommentsByVideo(ctx context.Context, videoID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"video": videoID})
	return err
}

// ListCommentsByVideo returns the paginated comments of a video with owner
// details, like counts and whether the viewer liked each comment.
func (r *MongoCommentRepository) ListCommentsByVideo(ctx context.Context, videoID, viewer primitive.ObjectID, page, limit int64) (*Page, error) {
	pipeline := newPipeline().
		Match(bson.M{"video": videoID}).
		Sort(nil, "", false). // createdAt descending
		LookupOwner("owner", "owner").
		Build()

	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "likes",
			"localField":   "_id",
			"foreignField": "comment",
			"as":           "likes",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"likesCount": bson.M{"$size": "$likes"},
			"owner":      bson.M{"$first": "$owner"},
			"isLiked": bson.M{"$cond": bson.M{
				"if":   bson.M{"$in": []interface{}{viewer, "$likes.likedBy"}},
				"then": true,
				"else": false,
			}},
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"content":    1,
			"createdAt":  1,
			"likesCount": 1,
			"owner":      1,
			"isLiked":    1,
		}}},
	)

	return paginate(ctx, r.collection, pipeline, page, limit)
}
