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

// PlaylistRepository defines the interface for playlist data operations.
type PlaylistRepository interface {
	CreatePlaylist(ctx context.Context, playlist *models.Playlist) error
	GetPlaylistByID(ctx context.Context, id primitive.ObjectID) (*models.Playlist, error)
	GetPlaylistDetailed(ctx context.Context, id primitive.ObjectID) (bson.M, error)
	ListPlaylistsByOwner(ctx context.Context, owner primitive.ObjectID) ([]bson.M, error)
	AddVideo(ctx context.Context, playlistID, videoID primitive.ObjectID) (*models.Playlist, error)
	RemoveVideo(ctx context.Context, playlistID, videoID primitive.ObjectID) (*models.Playlist, error)
	UpdatePlaylist(ctx context.Context, id primitive.ObjectID, name, description string) (*models.Playlist, error)
	DeletePlaylist(ctx context.Context, id primitive.ObjectID) error
}

// MongoPlaylistRepository implements PlaylistRepository for MongoDB.
type MongoPlaylistRepository struct {
	collection *mongo.Collection
}

func NewMongoPlaylistRepository(db *mongo.Database) *MongoPlaylistRepository {
	return &MongoPlaylistRepository{collection: db.Collection("playlists")}
}

func (r *MongoPlaylistRepository) CreatePlaylist(ctx context.Context, playlist *models.Playlist) error {
	playlist.ID = primitive.NewObjectID()
	if playlist.Videos == nil {
		playlist.Videos = []primitive.ObjectID{}
	}
	playlist.CreatedAt = time.Now()
	playlist.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, playlist)
	return err
}

func (r *MongoPlaylistRepository) GetPlaylistByID(ctx context.Context, id primitive.ObjectID) (*models.Playlist, error) {
	var playlist models.Playlist
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&playlist)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}

// GetPlaylistDetailed returns the playlist with its owner profile and its
// videos joined, each video carrying its own owner profile.
func (r *MongoPlaylistRepository) GetPlaylistDetailed(ctx context.Context, id primitive.ObjectID) (bson.M, error) {
	pipeline := newPipeline().
		Match(bson.M{"_id": id}).
		LookupOwner("owner", "owner").
		AddFields(bson.M{"owner": bson.M{"$first": "$owner"}}).
		Build()

	pipeline = append(pipeline, bson.D{{Key: "$lookup", Value: bson.M{
		"from":         "videos",
		"localField":   "videos",
		"foreignField": "_id",
		"as":           "videos",
		"pipeline": []bson.M{
			{"$lookup": bson.M{
				"from":         "users",
				"localField":   "owner",
				"foreignField": "_id",
				"as":           "owner",
				"pipeline": []bson.M{
					{"$project": ownerProjection},
				},
			}},
			{"$addFields": bson.M{
				"owner": bson.M{"$first": "$owner"},
			}},
		},
	}}})

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var playlists []bson.M
	if err = cursor.All(ctx, &playlists); err != nil {
		return nil, err
	}
	if len(playlists) == 0 {
		return nil, ErrNotFound
	}
	return playlists[0], nil
}

// ListPlaylistsByOwner returns a user's playlists with their video counts.
func (r *MongoPlaylistRepository) ListPlaylistsByOwner(ctx context.Context, owner primitive.ObjectID) ([]bson.M, error) {
	pipeline := newPipeline().
		Match(bson.M{"owner": owner}).
		Build()

	pipeline = append(pipeline,
		bson.D{{Key: "$addFields", Value: bson.M{
			"totalVideos": bson.M{"$size": "$videos"},
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"name":        1,
			"description": 1,
			"totalVideos": 1,
			"createdAt":   1,
		}}},
	)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var playlists []bson.M
	if err = cursor.All(ctx, &playlists); err != nil {
		return nil, err
	}
	if playlists == nil {
		playlists = []bson.M{}
	}
	return playlists, nil
}

// AddVideo appends the video id unless it is already present and returns the
// post-update playlist.
func (r *MongoPlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID primitive.ObjectID) (*models.Playlist, error) {
	update := bson.M{
		"$addToSet": bson.M{"videos": videoID},
		"$set":      bson.M{"updatedAt": time.Now()},
	}
	return r.findOneAndUpdate(ctx, playlistID, update)
}

// RemoveVideo pulls the video id, preserving the order of the remaining
// entries, and returns the post-update playlist.
func (r *MongoPlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID primitive.ObjectID) (*models.Playlist, error) {
	update := bson.M{
		"$pull": bson.M{"videos": videoID},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	return r.findOneAndUpdate(ctx, playlistID, update)
}

func (r *MongoPlaylistRepository) UpdatePlaylist(ctx context.Context, id primitive.ObjectID, name, description string) (*models.Playlist, error) {
	update := bson.M{"$set": bson.M{
		"name":        name,
		"description": description,
		"updatedAt":   time.Now(),
	}}
	return r.findOneAndUpdate(ctx, id, update)
}

func (r *MongoPlaylistRepository) DeletePlaylist(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoPlaylistRepository) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Playlist, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var playlist models.Playlist
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&playlist)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}
