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

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	UpdateUserFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error)
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error
	AddToWatchHistory(ctx context.Context, userID, videoID primitive.ObjectID) error
	GetChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (bson.M, error)
	GetWatchHistory(ctx context.Context, userID primitive.ObjectID) ([]bson.M, error)
}

// MongoUserRepository implements UserRepository for MongoDB.
type MongoUserRepository struct {
	collection *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsernameOrEmail matches either credential; empty strings never
// match because both fields are required and non-empty at registration.
func (r *MongoUserRepository) GetUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	filter := bson.M{"$or": []bson.M{
		{"username": username},
		{"email": email},
	}}
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserFields applies a $set and returns the post-update document.
func (r *MongoUserRepository) UpdateUserFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error) {
	fields["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"refreshToken": token}})
	return err
}

func (r *MongoUserRepository) ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$unset": bson.M{"refreshToken": 1}})
	return err
}

// AddToWatchHistory appends the video id, deduplicated.
func (r *MongoUserRepository) AddToWatchHistory(ctx context.Context, userID, videoID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$addToSet": bson.M{"watchHistory": videoID}})
	return err
}

// GetChannelProfile returns the channel view of a user: subscriber counts in
// both directions and whether the viewer is subscribed.
func (r *MongoUserRepository) GetChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (bson.M, error) {
	pipeline := newPipeline().
		Match(bson.M{"username": username}).
		Build()

	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "subscriptions",
			"localField":   "_id",
			"foreignField": "channel",
			"as":           "subscribers",
		}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "subscriptions",
			"localField":   "_id",
			"foreignField": "subscriber",
			"as":           "subscribedTo",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"subscribersCount":        bson.M{"$size": "$subscribers"},
			"channelsSubscribedCount": bson.M{"$size": "$subscribedTo"},
			"isSubscribed": bson.M{"$cond": bson.M{
				"if":   bson.M{"$in": []interface{}{viewer, "$subscribers.subscriber"}},
				"then": true,
				"else": false,
			}},
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"username":                1,
			"fullName":                1,
			"email":                   1,
			"avatar":                  1,
			"coverImage":              1,
			"subscribersCount":        1,
			"channelsSubscribedCount": 1,
			"isSubscribed":            1,
			"createdAt":               1,
		}}},
	)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var channels []bson.M
	if err = cursor.All(ctx, &channels); err != nil {
		return nil, err
	}
	if len(channels) == 0 {
		return nil, ErrNotFound
	}
	return channels[0], nil
}

// GetWatchHistory returns the user's watched videos with their owners joined.
func (r *MongoUserRepository) GetWatchHistory(ctx context.Context, userID primitive.ObjectID) ([]bson.M, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"_id": userID}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "videos",
			"localField":   "watchHistory",
			"foreignField": "_id",
			"as":           "watchHistory",
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
		}}},
		bson.D{{Key: "$project", Value: bson.M{"watchHistory": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []struct {
		WatchHistory []bson.M `bson:"watchHistory"`
	}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	if users[0].WatchHistory == nil {
		return []bson.M{}, nil
	}
	return users[0].WatchHistory, nil
}
