package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LikeTarget names the kind of entity a like points at. A like document
// carries exactly one of the three target references.
type LikeTarget string

const (
	LikeTargetVideo   LikeTarget = "video"
	LikeTargetComment LikeTarget = "comment"
	LikeTargetTweet   LikeTarget = "tweet"
)

// Like represents a like document. Exactly one of Video, Comment or Tweet is
// set; partial unique indexes on (likedBy, target) keep the toggle race-safe.
type Like struct {
	ID        primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Video     *primitive.ObjectID `json:"video,omitempty" bson:"video,omitempty"`
	Comment   *primitive.ObjectID `json:"comment,omitempty" bson:"comment,omitempty"`
	Tweet     *primitive.ObjectID `json:"tweet,omitempty" bson:"tweet,omitempty"`
	LikedBy   primitive.ObjectID  `json:"likedBy" bson:"likedBy"`
	CreatedAt time.Time           `json:"createdAt" bson:"createdAt"`
}
