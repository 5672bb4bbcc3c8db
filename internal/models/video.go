package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Video represents an uploaded video document stored in MongoDB.
type Video struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	VideoFile   MediaAsset         `json:"videoFile" bson:"videoFile"`
	Thumbnail   MediaAsset         `json:"thumbnail" bson:"thumbnail"`
	Duration    float64            `json:"duration" bson:"duration"` // seconds, reported by the media service
	Views       int64              `json:"views" bson:"views"`
	IsPublished bool               `json:"isPublished" bson:"isPublished"`
	Owner       primitive.ObjectID `json:"owner" bson:"owner"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// PublishVideoRequest defines the multipart form fields for publishing a
// video. The video file and thumbnail are staged by the upload middleware.
type PublishVideoRequest struct {
	Title       string `json:"title" form:"title" validate:"required,min=1,max=120"`
	Description string `json:"description" form:"description" validate:"required,min=1,max=2000"`
}

// UpdateVideoRequest defines the fields for updating video details. A new
// thumbnail file is optional and staged separately.
type UpdateVideoRequest struct {
	Title       string `json:"title" form:"title" validate:"required,min=1,max=120"`
	Description string `json:"description" form:"description" validate:"required,min=1,max=2000"`
}
