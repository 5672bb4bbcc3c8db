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

// videoSortFields is the allow-list of client-selectable sort fields.
var videoSortFields = map[string]bool{
	"title":     true,
	"duration":  true,
	"views":     true,
	"createdAt": true,
	"updatedAt": true,
}

// ListVideosOptions are the caller-controlled knobs of the video listing.
type ListVideosOptions struct {
	Query     string
	Owner     *primitive.ObjectID
	SortBy    string
	Ascending bool
	Page      int64
	Limit     int64
}

// VideoRepository defines the interface for video data operations.
type VideoRepository interface {
	CreateVideo(ctx context.Context, video *models.Video) error
	GetVideoByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	GetVideoWithOwner(ctx context.Context, id primitive.ObjectID) (bson.M, error)
	ListVideos(ctx context.Context, opts ListVideosOptions) (*Page, error)
	UpdateVideoFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Video, error)
	DeleteVideo(ctx context.Context, id primitive.ObjectID) error
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
}

// MongoVideoRepository implements VideoRepository for MongoDB.
type MongoVideoRepository struct {
	collection *mongo.Collection
}

func NewMongoVideoRepository(db *mongo.Database) *MongoVideoRepository {
	return &MongoVideoRepository{collection: db.Collection("videos")}
}

func (r *MongoVideoRepository) CreateVideo(ctx context.Context, video *models.Video) error {
	video.ID = primitive.NewObjectID()
	video.CreatedAt = time.Now()
	video.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, video)
	return err
}

func (r *MongoVideoRepository) GetVideoByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	var video models.Video
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&video)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// GetVideoWithOwner returns the detailed video view with the owner profile
// joined in.
func (r *MongoVideoRepository) GetVideoWithOwner(ctx context.Context, id primitive.ObjectID) (bson.M, error) {
	pipeline := newPipeline().
		Match(bson.M{"_id": id}).
		LookupOwner("owner", "owner").
		AddFields(bson.M{"owner": bson.M{"$first": "$owner"}}).
		Build()

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var videos []bson.M
	if err = cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, ErrNotFound
	}
	return videos[0], nil
}

// ListVideos runs the fixed listing pipeline: optional text search, optional
// owner filter, published-only, allow-listed sort, owner lookup, pagination.
func (r *MongoVideoRepository) ListVideos(ctx context.Context, opts ListVideosOptions) (*Page, error) {
	pipeline := newPipeline().
		Search("video-search", opts.Query, "title", "description").
		MatchOwner("owner", opts.Owner).
		Match(bson.M{"isPublished": true}).
		Sort(videoSortFields, opts.SortBy, opts.Ascending).
		LookupOwner("owner", "ownerDetails").
		Unwind("$ownerDetails").
		Project(bson.M{
			"title":        1,
			"description":  1,
			"videoFile":    1,
			"thumbnail":    1,
			"duration":     1,
			"views":        1,
			"isPublished":  1,
			"createdAt":    1,
			"ownerDetails": 1,
		}).
		Build()

	return paginate(ctx, r.collection, pipeline, opts.Page, opts.Limit)
}

// UpdateVideoFields applies a $set and returns the post-update document.
func (r *MongoVideoRepository) UpdateVideoFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Video, error) {
	fields["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var video models.Video
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&video)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *MongoVideoRepository) DeleteVideo(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoVideoRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
